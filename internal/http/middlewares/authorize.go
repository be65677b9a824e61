package middlewares

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/comandero/internal/auth"
	"github.com/dropDatabas3/comandero/internal/http/errors"
	"github.com/dropDatabas3/comandero/internal/metrics"
	"github.com/dropDatabas3/comandero/internal/observability/logger"
	"github.com/dropDatabas3/comandero/internal/security/envelope"
)

// =================================================================================
// AUTHORIZATION FILTER
// =================================================================================

// AuthorizeConfig configura el filtro de autorización.
type AuthorizeConfig struct {
	Verifier *envelope.Verifier
	// Header donde viaja el token. Default: Authorization.
	Header string
	// Prefix que debe anteceder al token, comparación exacta. Default: "Bearer ".
	Prefix string
}

// WithAuthorize valida el token del envelope en cada request y, si es válido,
// inyecta el Principal en el contexto. La política es deliberadamente asimétrica:
//
//   - Sin header, o header sin el prefix exacto: el request sigue ANÓNIMO.
//     La decisión de rechazar queda en RequireAuth/RequireRole por ruta.
//   - Con token presente pero inválido o vencido: 401 inmediato, con un código
//     distinto por caso para que el cliente sepa si debe re-loguear.
//
// Nota: el prefix se compara tal cual ("Bearer " ≠ "bearer "). Un prefix en
// minúsculas hace que el token se ignore, no que se rechace.
func WithAuthorize(cfg AuthorizeConfig) Middleware {
	header := cfg.Header
	if header == "" {
		header = "Authorization"
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "Bearer "
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(header)
			if raw == "" || !strings.HasPrefix(raw, prefix) {
				// Anónimo: seguimos sin principal
				next.ServeHTTP(w, r)
				return
			}
			token := raw[len(prefix):]

			claims, err := cfg.Verifier.Verify(token)
			if err != nil {
				log := logger.From(r.Context())
				if stderrors.Is(err, envelope.ErrTokenExpired) {
					metrics.AuthFailuresTotal.WithLabelValues("expired").Inc()
					log.Warn("token expired",
						logger.Path(r.URL.Path),
						logger.ClientIP(clientIP(r)),
					)
					errors.WriteError(w, errors.ErrTokenExpired)
					return
				}
				metrics.AuthFailuresTotal.WithLabelValues("invalid").Inc()
				log.Warn("token rejected",
					logger.Path(r.URL.Path),
					logger.ClientIP(clientIP(r)),
					logger.Err(err),
				)
				errors.WriteError(w, errors.ErrTokenInvalid)
				return
			}

			principal := auth.NewPrincipal(claims.Subject, claims.Roles)
			ctx := WithPrincipal(r.Context(), principal)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
