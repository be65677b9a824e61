// Package repository define los contratos de persistencia del dominio.
// Los services dependen de estas interfaces; el adapter concreto (pg) las
// implementa.
package repository

import (
	"context"
	"errors"

	"github.com/dropDatabas3/comandero/internal/domain/types"
)

// ErrNotFound lo retornan los repositorios cuando la entidad no existe.
var ErrNotFound = errors.New("not found")

// Page pagina listados. Limit<=0 usa el default del adapter.
type Page struct {
	Limit  int
	Offset int
}

// UserRepository es el Identity Store: resuelve credenciales y roles por
// email, más el CRUD de usuarios. La capa de auth sólo usa GetByEmail.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	GetByID(ctx context.Context, id string) (*types.User, error)
	List(ctx context.Context, page Page) ([]types.User, error)
	Create(ctx context.Context, u *types.User) error
	Update(ctx context.Context, u *types.User) error
	Delete(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// DrinkFilter filtra el listado de bebidas. Campos vacíos no filtran.
type DrinkFilter struct {
	Category      string
	NameContains  string
	OnlyAvailable bool
}

type DrinkRepository interface {
	List(ctx context.Context, f DrinkFilter, page Page) ([]types.Drink, error)
	Get(ctx context.Context, id string) (*types.Drink, error)
	Create(ctx context.Context, d *types.Drink) error
	Update(ctx context.Context, d *types.Drink) error
	Delete(ctx context.Context, id string) error
}

type TableRepository interface {
	List(ctx context.Context, page Page) ([]types.Table, error)
	Get(ctx context.Context, id string) (*types.Table, error)
	Create(ctx context.Context, t *types.Table) error
	Delete(ctx context.Context, id string) error
	SetOccupied(ctx context.Context, id string, occupied bool) error
}

// OrderFilter filtra listados de órdenes. UserEmail restringe a las órdenes
// propias (para usuarios no-admin).
type OrderFilter struct {
	UserEmail string
	TableID   string
	Status    types.OrderStatus
}

type OrderRepository interface {
	Create(ctx context.Context, o *types.Order) error
	Get(ctx context.Context, id string) (*types.Order, error)
	List(ctx context.Context, f OrderFilter, page Page) ([]types.Order, error)
	UpdateStatus(ctx context.Context, id string, status types.OrderStatus) error
}
