package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/comandero/internal/auth"
	"github.com/dropDatabas3/comandero/internal/http/errors"
)

// =================================================================================
// RBAC MIDDLEWARES
// =================================================================================

// RequireAuth rechaza con 401 todo request que llegue sin Principal.
// Debe aplicarse después de WithAuthorize.
func RequireAuth() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetPrincipal(r.Context()); !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole verifica que el Principal tenga al menos uno de los roles dados.
// Sin principal responde 401; con principal pero sin rol, 403.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}
			if !p.HasAnyRole(roles...) {
				errors.WriteError(w, errors.ErrInsufficientRole)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin es un atajo para las rutas de administración.
func RequireAdmin() Middleware {
	return RequireRole(auth.RoleAdmin)
}
