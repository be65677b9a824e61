package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/comandero/internal/http/dto"
	httperrors "github.com/dropDatabas3/comandero/internal/http/errors"
	"github.com/dropDatabas3/comandero/internal/http/services"
)

// TablesController administra las mesas del salón.
type TablesController struct {
	tables services.TablesService
}

func NewTablesController(tables services.TablesService) *TablesController {
	return &TablesController{tables: tables}
}

// List maneja GET /api/tables.
func (c *TablesController) List(w http.ResponseWriter, r *http.Request) {
	ts, err := c.tables.List(r.Context(), pageFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TableListResponse{Tables: ts, Count: len(ts)})
}

// Get maneja GET /api/tables/{id}.
func (c *TablesController) Get(w http.ResponseWriter, r *http.Request) {
	t, err := c.tables.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Create maneja POST /api/tables.
func (c *TablesController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTableRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	t, err := c.tables.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// SetOccupied maneja PUT /api/tables/{id}/occupied.
func (c *TablesController) SetOccupied(w http.ResponseWriter, r *http.Request) {
	var req dto.SetTableOccupiedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	if err := c.tables.SetOccupied(r.Context(), chi.URLParam(r, "id"), req.Occupied); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete maneja DELETE /api/tables/{id}.
func (c *TablesController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.tables.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
