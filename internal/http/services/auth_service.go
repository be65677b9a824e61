package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/http/dto"
	"github.com/dropDatabas3/comandero/internal/metrics"
	"github.com/dropDatabas3/comandero/internal/observability/logger"
	"github.com/dropDatabas3/comandero/internal/security/envelope"
	"github.com/dropDatabas3/comandero/internal/security/password"
)

// =================================================================================
// LOGIN SERVICE
// =================================================================================

// Errores de login
var (
	ErrMissingFields      = fmt.Errorf("missing required fields")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrTokenIssueFailed   = fmt.Errorf("failed to issue token")
)

// LoginResult es el resultado interno del service: el token firmado+cifrado
// más los datos del usuario para el body de la respuesta.
type LoginResult struct {
	Token     string
	Email     string
	Name      string
	Roles     []string
	ExpiresIn int64 // segundos
}

// LoginService autentica credenciales contra el Identity Store y emite
// el token de sesión.
type LoginService interface {
	Login(ctx context.Context, in dto.LoginRequest) (*LoginResult, error)
}

// LoginDeps contiene las dependencias del login service.
type LoginDeps struct {
	Users  repository.UserRepository
	Issuer *envelope.Issuer
}

type loginService struct {
	deps LoginDeps
}

// NewLoginService crea un nuevo servicio de login.
func NewLoginService(deps LoginDeps) LoginService {
	return &loginService{deps: deps}
}

func (s *loginService) Login(ctx context.Context, in dto.LoginRequest) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)

	// Paso 0: Normalización
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	// Validación mínima
	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	// Paso 1: Buscar usuario por email.
	// Usuario inexistente y password incorrecto devuelven el mismo error:
	// no filtramos qué cuentas existen.
	user, err := s.deps.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Debug("user not found")
		metrics.AuthFailuresTotal.WithLabelValues("credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	log = log.With(logger.UserEmail(user.Email))

	// Paso 2: Verificar password contra el hash bcrypt
	if !password.Verify(in.Password, user.PasswordHash) {
		log.Debug("password check failed")
		metrics.AuthFailuresTotal.WithLabelValues("credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	// Paso 3: Emitir el token de sesión (JWS dentro de JWE)
	token, err := s.deps.Issuer.Issue(user.Email, user.Roles)
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		return nil, ErrTokenIssueFailed
	}
	metrics.TokensIssuedTotal.Inc()

	log.Info("login ok", logger.Roles(user.Roles))

	return &LoginResult{
		Token:     token,
		Email:     user.Email,
		Name:      user.Name,
		Roles:     user.Roles,
		ExpiresIn: int64(s.deps.Issuer.TTL().Seconds()),
	}, nil
}
