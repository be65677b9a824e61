package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP/WS Prometheus metrics. Viven en un package propio para evitar ciclos
// de import entre middlewares y ws.

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comandero_http_requests_total",
		Help: "Requests HTTP por método, ruta y status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "comandero_http_request_duration_ms",
		Help:    "Duración del request HTTP en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"method", "path"})

	AuthFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comandero_auth_failures_total",
		Help: "Fallas de autenticación por motivo (invalid|expired|credentials)",
	}, []string{"reason"})

	TokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comandero_tokens_issued_total",
		Help: "Tokens de sesión emitidos",
	})

	WSSessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "comandero_ws_sessions_active",
		Help: "Sesiones STOMP activas",
	})
)

// Register registra las métricas en el registry dado (o el default si es nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AuthFailuresTotal,
		TokensIssuedTotal,
		WSSessionsActive,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
