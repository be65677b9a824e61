// Package router arma el árbol de rutas HTTP y decide qué middleware
// protege cada grupo. Es el único lugar donde vive la política de acceso:
// qué es público, qué pide login y qué pide ADMIN.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/comandero/internal/http/controllers"
	httperrors "github.com/dropDatabas3/comandero/internal/http/errors"
	"github.com/dropDatabas3/comandero/internal/http/middlewares"
	"github.com/dropDatabas3/comandero/internal/rate"
	"github.com/dropDatabas3/comandero/internal/security/envelope"
	"github.com/dropDatabas3/comandero/internal/ws"
)

// Deps son las dependencias ya construidas que el router sólo conecta.
type Deps struct {
	Auth   *controllers.AuthController
	Users  *controllers.UsersController
	Drinks *controllers.DrinksController
	Tables *controllers.TablesController
	Orders *controllers.OrdersController

	Verifier    *envelope.Verifier
	TokenHeader string
	TokenPrefix string

	// Limiters por endpoint sensible. nil = sin límite.
	LoginLimiter  rate.Limiter
	ForgotLimiter rate.Limiter

	WSHandler *ws.Handler // nil desactiva /ws

	CORSAllowedOrigins []string
	MetricsEnabled     bool

	// Ping chequea las dependencias para el healthcheck. nil = siempre ok.
	Ping func(r *http.Request) error
}

// New construye el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Cadena global. El filtro de autorización corre para TODO request:
	// token malo = 401 acá mismo; token ausente = sigue anónimo y decide
	// cada grupo de rutas. Logging va después para loguear con email.
	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.WithRecover())
	r.Use(middlewares.WithMetrics())
	r.Use(middlewares.WithSecurityHeaders())
	r.Use(middlewares.WithCORS(d.CORSAllowedOrigins, d.TokenHeader))
	r.Use(middlewares.WithAuthorize(middlewares.AuthorizeConfig{
		Verifier: d.Verifier,
		Header:   d.TokenHeader,
		Prefix:   d.TokenPrefix,
	}))
	r.Use(middlewares.WithLogging())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// Infra
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if d.Ping != nil {
			if err := d.Ping(req); err != nil {
				httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if d.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	// Auth
	r.Route("/api/auth", func(r chi.Router) {
		r.With(middlewares.WithRateLimit(d.LoginLimiter, middlewares.IPRateKey)).
			Post("/login", d.Auth.Login)
		r.With(middlewares.WithRateLimit(d.ForgotLimiter, middlewares.IPRateKey)).
			Post("/forgot-password", d.Auth.Forgot)
		r.Post("/reset-password", d.Auth.Reset)
		r.With(middlewares.RequireAuth()).Get("/me", d.Auth.Me)
	})

	// Usuarios: listar/crear/borrar es de ADMIN; ver y editar un usuario
	// puntual lo puede hacer el propio dueño (el controller chequea).
	r.Route("/api/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireAdmin())
			r.Get("/", d.Users.List)
			r.Post("/", d.Users.Create)
			r.Delete("/{id}", d.Users.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireAuth())
			r.Get("/{id}", d.Users.Get)
			r.Patch("/{id}", d.Users.Update)
		})
	})

	// Carta: lectura pública, escritura ADMIN
	r.Route("/api/drinks", func(r chi.Router) {
		r.Get("/", d.Drinks.List)
		r.Get("/{id}", d.Drinks.Get)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireAdmin())
			r.Post("/", d.Drinks.Create)
			r.Patch("/{id}", d.Drinks.Update)
			r.Delete("/{id}", d.Drinks.Delete)
		})
	})

	// Mesas: ver con login; crear/borrar es de ADMIN
	r.Route("/api/tables", func(r chi.Router) {
		r.Use(middlewares.RequireAuth())
		r.Get("/", d.Tables.List)
		r.Get("/{id}", d.Tables.Get)
		r.Put("/{id}/occupied", d.Tables.SetOccupied)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireAdmin())
			r.Post("/", d.Tables.Create)
			r.Delete("/{id}", d.Tables.Delete)
		})
	})

	// Órdenes: siempre con login; la propiedad se resuelve en el service
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middlewares.RequireAuth())
		r.Post("/", d.Orders.Create)
		r.Get("/", d.Orders.List)
		r.Get("/{id}", d.Orders.Get)
		r.With(middlewares.RequireAdmin()).Put("/{id}/status", d.Orders.UpdateStatus)
	})

	// WebSocket/STOMP: la auth va dentro del frame CONNECT
	if d.WSHandler != nil {
		r.Method(http.MethodGet, "/ws", d.WSHandler)
	}

	return r
}
