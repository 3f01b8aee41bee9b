// Kunhua Huang 2026

package tcp

import "github.com/prometheus/client_golang/prometheus"

var (
	connectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cipherecho_connections_total",
			Help: "Total number of accepted connections",
		},
	)
	connectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cipherecho_connections_active",
			Help: "Number of sessions currently being served",
		},
	)
	acceptErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cipherecho_accept_errors_total",
			Help: "Total number of failed accept calls",
		},
	)
	sessionEndsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cipherecho_session_ends_total",
			Help: "Sessions ended, by reason",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(connectionsTotal)
	prometheus.MustRegister(connectionsActive)
	prometheus.MustRegister(acceptErrorsTotal)
	prometheus.MustRegister(sessionEndsTotal)
}
