package dto

import "github.com/dropDatabas3/comandero/internal/domain/types"

// OrderItemRequest es una línea del pedido entrante.
type OrderItemRequest struct {
	DrinkID  string `json:"drink_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// CreateOrderRequest crea una orden para una mesa.
// El usuario dueño sale del token, nunca del body.
type CreateOrderRequest struct {
	TableID string             `json:"table_id"`
	Items   []OrderItemRequest `json:"items"`
}

// UpdateOrderStatusRequest mueve la orden de estado.
type UpdateOrderStatusRequest struct {
	Status types.OrderStatus `json:"status"`
}

// OrderListResponse pagina órdenes.
type OrderListResponse struct {
	Orders []types.Order `json:"orders"`
	Count  int           `json:"count"`
}
