package middlewares

import "net/http"

// Middleware envuelve un http.Handler con comportamiento extra.
type Middleware func(http.Handler) http.Handler

// Chain arma la cadena completa alrededor de h. El primer middleware de la
// lista queda más afuera: ve el request antes que los demás y la respuesta
// después que todos.
//
//	Chain(h, WithRequestID(), WithAuthorize(cfg)) // request-id corre primero
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
