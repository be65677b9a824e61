package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/comandero/internal/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withTestPrincipal(p auth.Principal) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func TestRequireAuth_Anonymous(t *testing.T) {
	h := Chain(okHandler(), RequireAuth())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
}

func TestRequireAuth_Authenticated(t *testing.T) {
	p := auth.NewPrincipal("mesero@bar.test", []string{auth.RoleUser})
	h := Chain(okHandler(), withTestPrincipal(p), RequireAuth())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_Insufficient(t *testing.T) {
	p := auth.NewPrincipal("mesero@bar.test", []string{auth.RoleUser})
	h := Chain(okHandler(), withTestPrincipal(p), RequireAdmin())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/1", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INSUFFICIENT_ROLE", body["error"])
}

func TestRequireRole_AdminAllowed(t *testing.T) {
	p := auth.NewPrincipal("admin@bar.test", []string{auth.RoleAdmin})
	h := Chain(okHandler(), withTestPrincipal(p), RequireAdmin())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_AnyOfSeveral(t *testing.T) {
	p := auth.NewPrincipal("mesero@bar.test", []string{auth.RoleUser})
	h := Chain(okHandler(), withTestPrincipal(p), RequireRole(auth.RoleAdmin, auth.RoleUser))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
