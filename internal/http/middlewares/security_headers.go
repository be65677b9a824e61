package middlewares

import (
	"net/http"
	"strings"
)

// hstsValue son 180 días; suficiente para un backend que siempre corre
// detrás de TLS en prod.
const hstsValue = "max-age=15552000; includeSubDomains"

// WithSecurityHeaders fija las cabeceras defensivas de un backend JSON puro:
// acá no se sirve HTML, así que la CSP puede ser totalmente cerrada.
func WithSecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")

			if requestOverTLS(r) {
				h.Set("Strict-Transport-Security", hstsValue)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestOverTLS cubre tanto TLS directo como el proxy que termina TLS
// adelante y reenvía por HTTP plano.
func requestOverTLS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
