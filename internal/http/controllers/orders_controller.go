package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/domain/types"
	"github.com/dropDatabas3/comandero/internal/http/dto"
	httperrors "github.com/dropDatabas3/comandero/internal/http/errors"
	"github.com/dropDatabas3/comandero/internal/http/middlewares"
	"github.com/dropDatabas3/comandero/internal/http/services"
)

// OrdersController maneja los pedidos. Todas las rutas requieren auth;
// el Principal del contexto define qué puede ver cada uno.
type OrdersController struct {
	orders services.OrdersService
}

func NewOrdersController(orders services.OrdersService) *OrdersController {
	return &OrdersController{orders: orders}
}

// Create maneja POST /api/orders.
func (c *OrdersController) Create(w http.ResponseWriter, r *http.Request) {
	p := middlewares.MustGetPrincipal(r.Context())

	var req dto.CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	o, err := c.orders.Create(r.Context(), p, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// List maneja GET /api/orders?table_id=&status=.
func (c *OrdersController) List(w http.ResponseWriter, r *http.Request) {
	p := middlewares.MustGetPrincipal(r.Context())

	q := r.URL.Query()
	f := repository.OrderFilter{
		TableID: q.Get("table_id"),
		Status:  types.OrderStatus(q.Get("status")),
	}

	os, err := c.orders.List(r.Context(), p, f, pageFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.OrderListResponse{Orders: os, Count: len(os)})
}

// Get maneja GET /api/orders/{id}.
func (c *OrdersController) Get(w http.ResponseWriter, r *http.Request) {
	p := middlewares.MustGetPrincipal(r.Context())

	o, err := c.orders.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// UpdateStatus maneja PUT /api/orders/{id}/status.
func (c *OrdersController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p := middlewares.MustGetPrincipal(r.Context())

	var req dto.UpdateOrderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	o, err := c.orders.UpdateStatus(r.Context(), p, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
