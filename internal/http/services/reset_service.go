package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/http/dto"
	"github.com/dropDatabas3/comandero/internal/observability/logger"
	"github.com/dropDatabas3/comandero/internal/security/password"
)

// =================================================================================
// PASSWORD RESET SERVICE
// =================================================================================

// Errores de reset
var (
	ErrResetTokenInvalid = fmt.Errorf("reset token invalid")
	ErrWeakPassword      = fmt.Errorf("password too short")
	// ErrResetNotConfigured corta el flujo si falta el secreto HS256: con la
	// clave vacía cualquiera puede forjar tokens de recuperación.
	ErrResetNotConfigured = fmt.Errorf("reset secret not configured")
)

// minPasswordLen es el mínimo aceptado para la nueva contraseña.
const minPasswordLen = 8

// resetPurpose distingue los tokens de recuperación de cualquier otro JWT
// firmado con el mismo secreto.
const resetPurpose = "password_reset"

// ResetMailer envía el link de recuperación. Lo implementa internal/email.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// ForgotResult indica el resultado de un forgot. Link sólo se rellena en
// modo debug para entornos sin SMTP.
type ForgotResult struct {
	Link string
}

// ResetService maneja el ciclo forgot/reset de contraseñas. Los tokens de
// recuperación son JWT HS256 comunes (no el envelope de sesión): viajan por
// email, son de un solo uso y tienen un propósito explícito en las claims.
type ResetService interface {
	Forgot(ctx context.Context, in dto.ForgotPasswordRequest) (*ForgotResult, error)
	Reset(ctx context.Context, in dto.ResetPasswordRequest) error
}

// ResetDeps contiene las dependencias del reset service.
type ResetDeps struct {
	Users   repository.UserRepository
	Secret  string
	TTL     time.Duration
	Mailer  ResetMailer // nil = no envía (modo debug)
	BaseURL string      // ej: https://comandero.bar
	// DebugEchoLinks devuelve el link en la respuesta en vez de (o además de)
	// mandarlo por email. Sólo para dev.
	DebugEchoLinks bool
	Clock          func() time.Time
}

type resetService struct {
	deps ResetDeps
	// used registra los jti ya consumidos hasta que expiren. Un token de
	// reset vale exactamente una vez.
	used *gocache.Cache
}

// NewResetService crea el servicio de recuperación de contraseña.
func NewResetService(deps ResetDeps) ResetService {
	if deps.TTL <= 0 {
		deps.TTL = 30 * time.Minute
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &resetService{
		deps: deps,
		used: gocache.New(deps.TTL, 2*deps.TTL),
	}
}

func (s *resetService) Forgot(ctx context.Context, in dto.ForgotPasswordRequest) (*ForgotResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.reset"),
		logger.Op("Forgot"),
	)

	if s.deps.Secret == "" {
		return nil, ErrResetNotConfigured
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, ErrMissingFields
	}

	// Paso 1: Buscar el usuario. Si no existe respondemos igual que si
	// existiera; el 200 es idéntico en ambos casos.
	user, err := s.deps.Users.GetByEmail(ctx, email)
	if err != nil {
		log.Debug("forgot for unknown email")
		return &ForgotResult{}, nil
	}

	// Paso 2: Emitir el token de recuperación (HS256, un solo uso)
	now := s.deps.Clock()
	claims := jwtv5.MapClaims{
		"sub":     user.Email,
		"purpose": resetPurpose,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.deps.TTL).Unix(),
	}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(s.deps.Secret))
	if err != nil {
		log.Error("reset token sign failed", logger.Err(err))
		return nil, fmt.Errorf("sign reset token: %w", err)
	}

	link := s.deps.BaseURL + "/reset-password?token=" + url.QueryEscape(token)

	// Paso 3: Mandar el email (si hay mailer configurado)
	if s.deps.Mailer != nil {
		if err := s.deps.Mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
			log.Error("reset mail failed", logger.Err(err))
			return nil, fmt.Errorf("send reset mail: %w", err)
		}
	}

	log.Info("reset link issued", logger.UserEmail(user.Email))

	res := &ForgotResult{}
	if s.deps.DebugEchoLinks {
		res.Link = link
	}
	return res, nil
}

func (s *resetService) Reset(ctx context.Context, in dto.ResetPasswordRequest) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.reset"),
		logger.Op("Reset"),
	)

	if s.deps.Secret == "" {
		return ErrResetNotConfigured
	}
	if in.Token == "" {
		return ErrResetTokenInvalid
	}
	if len(in.NewPassword) < minPasswordLen {
		return ErrWeakPassword
	}

	// Paso 1: Validar firma y expiración
	parsed, err := jwtv5.Parse(in.Token, func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.deps.Secret), nil
	}, jwtv5.WithTimeFunc(s.deps.Clock))
	if err != nil || !parsed.Valid {
		log.Debug("reset token rejected", logger.Err(err))
		return ErrResetTokenInvalid
	}

	claims, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return ErrResetTokenInvalid
	}

	// Paso 2: Verificar propósito y jti
	if purpose, _ := claims["purpose"].(string); purpose != resetPurpose {
		log.Debug("wrong token purpose")
		return ErrResetTokenInvalid
	}
	jti, _ := claims["jti"].(string)
	email, _ := claims["sub"].(string)
	if jti == "" || email == "" {
		return ErrResetTokenInvalid
	}

	// Paso 3: Un solo uso. Add falla si la clave ya existe.
	if err := s.used.Add(jti, struct{}{}, gocache.DefaultExpiration); err != nil {
		log.Warn("reset token replay", logger.UserEmail(email))
		return ErrResetTokenInvalid
	}

	// Paso 4: Hashear y persistir la nueva contraseña
	hash, err := password.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.deps.Users.UpdatePassword(ctx, email, hash); err != nil {
		log.Error("password update failed", logger.Err(err))
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("update password: %w", err)
	}

	log.Info("password reset ok", logger.UserEmail(email))
	return nil
}
