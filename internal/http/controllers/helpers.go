// Package controllers implementa los handlers HTTP. Son finitos: decodifican
// el request, llaman al service y escriben la respuesta. Nada de lógica de
// negocio acá.
package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dropDatabas3/comandero/internal/domain/repository"
	httperrors "github.com/dropDatabas3/comandero/internal/http/errors"
	"github.com/dropDatabas3/comandero/internal/http/services"
)

// maxBodyBytes limita el tamaño de los bodies JSON aceptados.
const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON lee y decodifica el body. Rechaza campos desconocidos.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Un solo objeto JSON por request
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected trailing data")
	}
	return nil
}

// writeJSON serializa la respuesta con los headers estándar.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// pageFromQuery arma la paginación desde ?limit=&offset=.
func pageFromQuery(r *http.Request) repository.Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

// writeServiceError traduce los errores de services al contrato HTTP.
// Lo que no matchea cae en 500 sin filtrar detalles internos.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrInvalidTable),
		errors.Is(err, services.ErrOrderEmpty),
		errors.Is(err, services.ErrDrinkUnavailable):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case errors.Is(err, services.ErrResetTokenInvalid):
		httperrors.WriteError(w, httperrors.ErrResetTokenInvalid)
	case errors.Is(err, services.ErrEmailTaken):
		httperrors.WriteError(w, httperrors.ErrEmailAlreadyInUse)
	case errors.Is(err, services.ErrInvalidTransition):
		httperrors.WriteError(w, httperrors.ErrInvalidOrderState)
	case errors.Is(err, services.ErrNotOrderOwner):
		httperrors.WriteError(w, httperrors.ErrForbidden)
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrDrinkNotFound),
		errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail(err.Error()))
	default:
		httperrors.WriteError(w, httperrors.FromError(err))
	}
}
