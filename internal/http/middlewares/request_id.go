package middlewares

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// requestIDHeader viaja en ambas direcciones: el cliente puede traer el suyo
// para correlacionar, y la respuesta siempre lo devuelve.
const requestIDHeader = "X-Request-ID"

// maxRequestIDLen corta IDs de cliente absurdamente largos antes de que
// terminen en los logs.
const maxRequestIDLen = 64

// WithRequestID asegura que todo request tenga un ID de correlación: respeta
// el que trae el cliente o genera un uuid nuevo, lo devuelve por header y lo
// deja en el contexto para los logs.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if len(rid) > maxRequestIDLen {
				rid = rid[:maxRequestIDLen]
			}
			if rid == "" {
				rid = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, rid)
			next.ServeHTTP(w, r.WithContext(setRequestID(r.Context(), rid)))
		})
	}
}
