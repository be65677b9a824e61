package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/http/dto"
	httperrors "github.com/dropDatabas3/comandero/internal/http/errors"
	"github.com/dropDatabas3/comandero/internal/http/services"
)

// DrinksController expone la carta. Lectura pública, escritura admin.
type DrinksController struct {
	drinks services.DrinksService
}

func NewDrinksController(drinks services.DrinksService) *DrinksController {
	return &DrinksController{drinks: drinks}
}

// List maneja GET /api/drinks?category=&q=&available=true.
func (c *DrinksController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.DrinkFilter{
		Category:      q.Get("category"),
		NameContains:  q.Get("q"),
		OnlyAvailable: q.Get("available") == "true",
	}

	ds, err := c.drinks.List(r.Context(), f, pageFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DrinkListResponse{Drinks: ds, Count: len(ds)})
}

// Get maneja GET /api/drinks/{id}.
func (c *DrinksController) Get(w http.ResponseWriter, r *http.Request) {
	d, err := c.drinks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Create maneja POST /api/drinks.
func (c *DrinksController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDrinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	d, err := c.drinks.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// Update maneja PATCH /api/drinks/{id}.
func (c *DrinksController) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateDrinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	d, err := c.drinks.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Delete maneja DELETE /api/drinks/{id}.
func (c *DrinksController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.drinks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
