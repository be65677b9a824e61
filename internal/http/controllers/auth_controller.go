package controllers

import (
	"net/http"

	"github.com/dropDatabas3/comandero/internal/http/dto"
	httperrors "github.com/dropDatabas3/comandero/internal/http/errors"
	"github.com/dropDatabas3/comandero/internal/http/middlewares"
	"github.com/dropDatabas3/comandero/internal/http/services"
	"github.com/dropDatabas3/comandero/internal/observability/logger"
)

// AuthController maneja login, recuperación de contraseña y /me.
type AuthController struct {
	login services.LoginService
	reset services.ResetService
	// tokenHeader y tokenPrefix tienen que coincidir con lo que configura el
	// filtro de autorización: el login deja el token exactamente donde el
	// filtro lo va a leer en los requests siguientes.
	tokenHeader string
	tokenPrefix string
}

// NewAuthController crea el controller de autenticación.
func NewAuthController(login services.LoginService, reset services.ResetService, tokenHeader, tokenPrefix string) *AuthController {
	if tokenHeader == "" {
		tokenHeader = "Authorization"
	}
	if tokenPrefix == "" {
		tokenPrefix = "Bearer "
	}
	return &AuthController{login: login, reset: reset, tokenHeader: tokenHeader, tokenPrefix: tokenPrefix}
}

// Login maneja POST /api/auth/login.
// El token de sesión sale por el header configurado, no por el body.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.Login"))

	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	res, err := c.login.Login(ctx, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set(c.tokenHeader, c.tokenPrefix+res.Token)
	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Email:     res.Email,
		Name:      res.Name,
		Roles:     res.Roles,
		ExpiresIn: res.ExpiresIn,
	})

	log.Debug("login response sent")
}

// Forgot maneja POST /api/auth/forgot-password.
func (c *AuthController) Forgot(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	res, err := c.reset.Forgot(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ForgotPasswordResponse{
		Message:   "Si el email está registrado, vas a recibir un link de recuperación.",
		DebugLink: res.Link,
	})
}

// Reset maneja POST /api/auth/reset-password.
func (c *AuthController) Reset(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	if err := c.reset.Reset(r.Context(), req); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me maneja GET /api/auth/me. Requiere RequireAuth en el router.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	p := middlewares.MustGetPrincipal(r.Context())
	writeJSON(w, http.StatusOK, dto.MeResponse{
		Email:       p.Email,
		Roles:       p.Roles,
		Authorities: p.Authorities,
	})
}
