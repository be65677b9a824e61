// Package types define las entidades del dominio. Son structs planos sin
// lógica de persistencia; los repositorios los mapean a/desde la base.
package types

import "time"

// User es un usuario del sistema (mozo, cajero, admin).
// PasswordHash es opaco y nunca se serializa hacia afuera.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Drink es un ítem de la carta de bebidas.
type Drink struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Table es una mesa del salón.
type Table struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Seats     int       `json:"seats"`
	Occupied  bool      `json:"occupied"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderStatus es el estado de una orden. Las transiciones válidas son
// lineales (pending -> preparing -> delivered -> paid) más cancelled desde
// cualquier estado no terminal.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderDelivered OrderStatus = "delivered"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// ValidTransition indica si el cambio de estado está permitido.
func ValidTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	switch to {
	case OrderPreparing:
		return from == OrderPending
	case OrderDelivered:
		return from == OrderPreparing
	case OrderPaid:
		return from == OrderDelivered
	case OrderCancelled:
		return from == OrderPending || from == OrderPreparing
	}
	return false
}

// Terminal indica si el estado no admite más transiciones.
func (s OrderStatus) Terminal() bool {
	return s == OrderPaid || s == OrderCancelled
}

// Order es un pedido asociado a una mesa, creado por un usuario autenticado.
type Order struct {
	ID         string      `json:"id"`
	TableID    string      `json:"table_id"`
	UserEmail  string      `json:"user_email"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
	TotalCents int64       `json:"total_cents"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderItem es una línea del pedido.
type OrderItem struct {
	ID             string `json:"id"`
	DrinkID        string `json:"drink_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Notes          string `json:"notes,omitempty"`
}
