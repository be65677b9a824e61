package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dropDatabas3/comandero/internal/auth"
	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/domain/types"
	"github.com/dropDatabas3/comandero/internal/http/dto"
	"github.com/dropDatabas3/comandero/internal/observability/logger"
)

// =================================================================================
// ORDERS SERVICE
// =================================================================================

var (
	ErrOrderNotFound     = fmt.Errorf("order not found")
	ErrOrderEmpty        = fmt.Errorf("order needs at least one item")
	ErrDrinkUnavailable  = fmt.Errorf("drink not available")
	ErrInvalidTransition = fmt.Errorf("invalid status transition")
	ErrNotOrderOwner     = fmt.Errorf("order belongs to another user")
)

// OrderNotifier publica eventos de órdenes hacia los suscriptores STOMP.
// Lo implementa el hub de websockets; nil desactiva las notificaciones.
type OrderNotifier interface {
	OrderCreated(o *types.Order)
	OrderStatusChanged(o *types.Order)
}

// OrdersService maneja el ciclo de vida de los pedidos. El dueño de la
// orden sale SIEMPRE del Principal del request, nunca del body. Los
// no-admin sólo ven y mueven sus propias órdenes.
type OrdersService interface {
	Create(ctx context.Context, p auth.Principal, in dto.CreateOrderRequest) (*types.Order, error)
	Get(ctx context.Context, p auth.Principal, id string) (*types.Order, error)
	List(ctx context.Context, p auth.Principal, f repository.OrderFilter, page repository.Page) ([]types.Order, error)
	UpdateStatus(ctx context.Context, p auth.Principal, id string, status types.OrderStatus) (*types.Order, error)
}

type OrdersDeps struct {
	Orders   repository.OrderRepository
	Drinks   repository.DrinkRepository
	Tables   repository.TableRepository
	Notifier OrderNotifier // opcional
}

type ordersService struct {
	deps OrdersDeps
}

func NewOrdersService(deps OrdersDeps) OrdersService {
	return &ordersService{deps: deps}
}

func (s *ordersService) Create(ctx context.Context, p auth.Principal, in dto.CreateOrderRequest) (*types.Order, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("orders"),
		logger.Op("Create"),
		logger.UserEmail(p.Email),
	)

	if in.TableID == "" {
		return nil, ErrMissingFields
	}
	if len(in.Items) == 0 {
		return nil, ErrOrderEmpty
	}

	// Paso 1: La mesa tiene que existir
	table, err := s.deps.Tables.Get(ctx, in.TableID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}

	// Paso 2: Resolver cada línea contra la carta. El precio se congela
	// al momento del pedido; cambios de carta posteriores no lo afectan.
	items := make([]types.OrderItem, 0, len(in.Items))
	var total int64
	for _, it := range in.Items {
		if it.DrinkID == "" || it.Quantity <= 0 {
			return nil, ErrOrderEmpty
		}
		drink, err := s.deps.Drinks.Get(ctx, it.DrinkID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrDrinkNotFound
			}
			return nil, err
		}
		if !drink.Available {
			return nil, ErrDrinkUnavailable
		}
		items = append(items, types.OrderItem{
			ID:             uuid.NewString(),
			DrinkID:        drink.ID,
			Quantity:       it.Quantity,
			UnitPriceCents: drink.PriceCents,
			Notes:          it.Notes,
		})
		total += drink.PriceCents * int64(it.Quantity)
	}

	// Paso 3: Persistir la orden (header + items en una transacción)
	o := &types.Order{
		ID:         uuid.NewString(),
		TableID:    table.ID,
		UserEmail:  p.Email,
		Status:     types.OrderPending,
		Items:      items,
		TotalCents: total,
	}
	if err := s.deps.Orders.Create(ctx, o); err != nil {
		log.Error("order create failed", logger.Err(err))
		return nil, err
	}

	// Paso 4: La mesa queda ocupada mientras tenga órdenes vivas
	if !table.Occupied {
		if err := s.deps.Tables.SetOccupied(ctx, table.ID, true); err != nil {
			log.Warn("table occupy failed", logger.TableID(table.ID), logger.Err(err))
		}
	}

	// Paso 5: Avisar a los suscriptores en vivo
	if s.deps.Notifier != nil {
		s.deps.Notifier.OrderCreated(o)
	}

	log.Info("order created", logger.OrderID(o.ID), logger.TableID(o.TableID))
	return o, nil
}

func (s *ordersService) Get(ctx context.Context, p auth.Principal, id string) (*types.Order, error) {
	o, err := s.deps.Orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !p.IsAdmin() && o.UserEmail != p.Email {
		return nil, ErrNotOrderOwner
	}
	return o, nil
}

func (s *ordersService) List(ctx context.Context, p auth.Principal, f repository.OrderFilter, page repository.Page) ([]types.Order, error) {
	// Los no-admin sólo listan lo propio, pidan lo que pidan
	if !p.IsAdmin() {
		f.UserEmail = p.Email
	}
	return s.deps.Orders.List(ctx, f, page)
}

func (s *ordersService) UpdateStatus(ctx context.Context, p auth.Principal, id string, status types.OrderStatus) (*types.Order, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("orders"),
		logger.Op("UpdateStatus"),
		logger.OrderID(id),
	)

	o, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if !types.ValidTransition(o.Status, status) {
		log.Debug("transition rejected",
			logger.String("from", string(o.Status)),
			logger.String("to", string(status)),
		)
		return nil, ErrInvalidTransition
	}

	if err := s.deps.Orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	o.Status = status

	// Al cerrar la orden, liberar la mesa si no quedan órdenes vivas
	if status.Terminal() {
		s.maybeFreeTable(ctx, o.TableID)
	}

	if s.deps.Notifier != nil {
		s.deps.Notifier.OrderStatusChanged(o)
	}

	log.Info("order status changed", logger.String("status", string(status)))
	return o, nil
}

// maybeFreeTable libera la mesa si ya no tiene órdenes abiertas.
// Best-effort: un fallo acá no rompe el cambio de estado.
func (s *ordersService) maybeFreeTable(ctx context.Context, tableID string) {
	open := 0
	for _, st := range []types.OrderStatus{types.OrderPending, types.OrderPreparing, types.OrderDelivered} {
		orders, err := s.deps.Orders.List(ctx, repository.OrderFilter{TableID: tableID, Status: st}, repository.Page{Limit: 1})
		if err != nil {
			return
		}
		open += len(orders)
	}
	if open == 0 {
		_ = s.deps.Tables.SetOccupied(ctx, tableID, false)
	}
}
