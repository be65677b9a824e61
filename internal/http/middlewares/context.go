package middlewares

import (
	"context"

	"github.com/dropDatabas3/comandero/internal/auth"
)

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	// ctxPrincipalKey guarda el Principal autenticado
	ctxPrincipalKey ctxKey = "principal"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// =================================================================================
// CONTEXT SETTERS (Internos, usados por middlewares)
// =================================================================================

// WithPrincipal inyecta el Principal autenticado en el contexto.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// =================================================================================
// CONTEXT GETTERS (Públicos, usados por handlers/services)
// =================================================================================

// GetPrincipal obtiene el Principal del contexto.
// Retorna (zero, false) si el request es anónimo (sin token o filtro no aplicado).
func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	if v := ctx.Value(ctxPrincipalKey); v != nil {
		if p, ok := v.(auth.Principal); ok {
			return p, true
		}
	}
	return auth.Principal{}, false
}

// MustGetPrincipal obtiene el Principal o hace panic.
// Usar solo en rutas donde RequireAuth SIEMPRE se aplica antes.
func MustGetPrincipal(ctx context.Context) auth.Principal {
	p, ok := GetPrincipal(ctx)
	if !ok {
		panic("middlewares: no principal in context")
	}
	return p
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
