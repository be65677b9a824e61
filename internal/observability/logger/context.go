package logger

import (
	"context"

	"go.uber.org/zap"
)

// ctxKey es privada: el logger entra y sale del contexto sólo por estas dos
// funciones.
type ctxKey struct{}

// ToContext guarda un logger ya enriquecido (request id, email, etc.) para
// que las capas de abajo logueen con esos campos sin conocer el middleware.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From devuelve el logger del contexto, o el global si nadie inyectó uno.
// Siempre devuelve un logger usable; nunca nil.
func From(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return L()
}
