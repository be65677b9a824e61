package dto

import "github.com/dropDatabas3/comandero/internal/domain/types"

// CreateUserRequest crea un usuario. Roles vacío asigna USER.
type CreateUserRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

// UpdateUserRequest actualiza nombre y/o roles. Punteros nil = sin cambio.
type UpdateUserRequest struct {
	Name  *string   `json:"name,omitempty"`
	Roles *[]string `json:"roles,omitempty"`
}

// UserResponse es la vista pública de un usuario (sin hash).
type UserResponse struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// NewUserResponse mapea la entidad a su vista pública.
func NewUserResponse(u *types.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Roles: u.Roles,
	}
}

// UserListResponse pagina usuarios.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Count int            `json:"count"`
}
