package services

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/comandero/internal/http/dto"
	"github.com/dropDatabas3/comandero/internal/security/password"
)

func resetDeps(users *fakeUsers) ResetDeps {
	return ResetDeps{
		Users:          users,
		Secret:         "reset-secret-para-tests",
		TTL:            30 * time.Minute,
		BaseURL:        "https://comandero.test",
		DebugEchoLinks: true,
	}
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestReset_FullCycle(t *testing.T) {
	users := newFakeUsers(seedUser(t, "mesero@bar.test", "vieja1234"))
	svc := NewResetService(resetDeps(users))

	res, err := svc.Forgot(context.Background(), dto.ForgotPasswordRequest{Email: "mesero@bar.test"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Link)

	tok := tokenFromLink(t, res.Link)
	require.NotEmpty(t, tok)

	err = svc.Reset(context.Background(), dto.ResetPasswordRequest{Token: tok, NewPassword: "nueva-pass-9"})
	require.NoError(t, err)

	u, err := users.GetByEmail(context.Background(), "mesero@bar.test")
	require.NoError(t, err)
	assert.True(t, password.Verify("nueva-pass-9", u.PasswordHash))
	assert.False(t, password.Verify("vieja1234", u.PasswordHash))
}

func TestReset_TokenSingleUse(t *testing.T) {
	users := newFakeUsers(seedUser(t, "mesero@bar.test", "vieja1234"))
	svc := NewResetService(resetDeps(users))

	res, err := svc.Forgot(context.Background(), dto.ForgotPasswordRequest{Email: "mesero@bar.test"})
	require.NoError(t, err)
	tok := tokenFromLink(t, res.Link)

	require.NoError(t, svc.Reset(context.Background(), dto.ResetPasswordRequest{Token: tok, NewPassword: "nueva-pass-9"}))

	// Replay: el mismo token no puede volver a usarse
	err = svc.Reset(context.Background(), dto.ResetPasswordRequest{Token: tok, NewPassword: "otra-pass-99"})
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestForgot_UnknownEmailLooksIdentical(t *testing.T) {
	svc := NewResetService(resetDeps(newFakeUsers()))

	res, err := svc.Forgot(context.Background(), dto.ForgotPasswordRequest{Email: "nadie@bar.test"})
	require.NoError(t, err)
	// Sin link y sin error: indistinguible desde afuera
	assert.Empty(t, res.Link)
}

func TestReset_ExpiredToken(t *testing.T) {
	users := newFakeUsers(seedUser(t, "mesero@bar.test", "vieja1234"))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deps := resetDeps(users)
	deps.Clock = func() time.Time { return base }
	svc := NewResetService(deps)

	res, err := svc.Forgot(context.Background(), dto.ForgotPasswordRequest{Email: "mesero@bar.test"})
	require.NoError(t, err)
	tok := tokenFromLink(t, res.Link)

	// Avanzar el reloj más allá del TTL
	deps2 := resetDeps(users)
	deps2.Clock = func() time.Time { return base.Add(time.Hour) }
	svc2 := NewResetService(deps2)

	err = svc2.Reset(context.Background(), dto.ResetPasswordRequest{Token: tok, NewPassword: "nueva-pass-9"})
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestReset_EmptySecretRefused(t *testing.T) {
	users := newFakeUsers(seedUser(t, "admin@bar.test", "vieja1234"))

	deps := resetDeps(users)
	deps.Secret = ""
	svc := NewResetService(deps)

	// Un token HS256 firmado con la clave vacía es forjable por cualquiera:
	// el service tiene que negarse a operar, no aceptar la firma.
	now := time.Now()
	forged, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"sub":     "admin@bar.test",
		"purpose": "password_reset",
		"jti":     "forjado-1",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	}).SignedString([]byte(""))
	require.NoError(t, err)

	err = svc.Reset(context.Background(), dto.ResetPasswordRequest{Token: forged, NewPassword: "nueva-pass-9"})
	assert.ErrorIs(t, err, ErrResetNotConfigured)

	_, err = svc.Forgot(context.Background(), dto.ForgotPasswordRequest{Email: "admin@bar.test"})
	assert.ErrorIs(t, err, ErrResetNotConfigured)

	// La contraseña original sigue intacta
	u, err := users.GetByEmail(context.Background(), "admin@bar.test")
	require.NoError(t, err)
	assert.True(t, password.Verify("vieja1234", u.PasswordHash))
}

func TestReset_RejectsGarbageAndWeakPassword(t *testing.T) {
	svc := NewResetService(resetDeps(newFakeUsers()))

	err := svc.Reset(context.Background(), dto.ResetPasswordRequest{Token: "no-es-un-jwt", NewPassword: "nueva-pass-9"})
	assert.ErrorIs(t, err, ErrResetTokenInvalid)

	err = svc.Reset(context.Background(), dto.ResetPasswordRequest{Token: strings.Repeat("x", 40), NewPassword: "corta"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}
