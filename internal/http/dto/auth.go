// Package dto contiene los request/response de la API HTTP.
// Son structs planos: la validación semántica vive en los services.
package dto

// LoginRequest representa la solicitud de login por password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse es el body de un login exitoso. El token viaja en el
// header Authorization; el body sólo repite la identidad para el cliente.
type LoginResponse struct {
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Roles     []string `json:"roles"`
	ExpiresIn int64    `json:"expires_in"` // segundos
}

// ForgotPasswordRequest pide un link de recuperación por email.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordResponse siempre es 200 aunque el email no exista,
// para no revelar qué cuentas están registradas.
type ForgotPasswordResponse struct {
	Message string `json:"message"`
	// DebugLink sólo se rellena con email.debug_echo_links activado (dev).
	DebugLink string `json:"debug_link,omitempty"`
}

// ResetPasswordRequest consume el token de recuperación.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// MeResponse describe al usuario autenticado del request.
type MeResponse struct {
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Authorities []string `json:"authorities"`
}
