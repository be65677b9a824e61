package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/comandero/internal/http/dto"
	httperrors "github.com/dropDatabas3/comandero/internal/http/errors"
	"github.com/dropDatabas3/comandero/internal/http/middlewares"
	"github.com/dropDatabas3/comandero/internal/http/services"
)

// UsersController expone el CRUD de usuarios. Listar, crear y borrar son
// operaciones de admin; ver y editar un usuario puntual también las puede
// hacer el propio dueño de la cuenta.
type UsersController struct {
	users services.UsersService
}

func NewUsersController(users services.UsersService) *UsersController {
	return &UsersController{users: users}
}

// List maneja GET /api/users.
func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	us, err := c.users.List(r.Context(), pageFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]dto.UserResponse, 0, len(us))
	for i := range us {
		out = append(out, dto.NewUserResponse(&us[i]))
	}
	writeJSON(w, http.StatusOK, dto.UserListResponse{Users: out, Count: len(out)})
}

// Get maneja GET /api/users/{id}. Dueño o admin.
func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	u, err := c.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	p := middlewares.MustGetPrincipal(r.Context())
	if !p.IsAdmin() && !strings.EqualFold(u.Email, p.Email) {
		httperrors.WriteError(w, httperrors.ErrForbidden)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(u))
}

// Create maneja POST /api/users.
func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	u, err := c.users.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewUserResponse(u))
}

// Update maneja PATCH /api/users/{id}. Dueño o admin; cambiar roles sigue
// siendo exclusivo de admin.
func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	id := chi.URLParam(r, "id")
	p := middlewares.MustGetPrincipal(r.Context())
	if !p.IsAdmin() {
		cur, err := c.users.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !strings.EqualFold(cur.Email, p.Email) || req.Roles != nil {
			httperrors.WriteError(w, httperrors.ErrForbidden)
			return
		}
	}

	u, err := c.users.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(u))
}

// Delete maneja DELETE /api/users/{id}.
func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
