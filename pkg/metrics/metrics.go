package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mindmap", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mindmap", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// Operations counts store operations by name (get, save, list, delete, socket)
	// and outcome (ok, not_found, invalid, unauthenticated, error).
	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mindmap", Name: "operations_total", Help: "Mind map operations by operation and result."},
		[]string{"operation", "result"},
	)
	SocketTokensIssued = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "mindmap", Name: "socket_tokens_issued_total", Help: "Number of realtime socket tokens issued."},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "mindmap", Name: "http_request_duration_seconds", Help: "HTTP request latency by route and status.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route", "status"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(Operations)
	reg.MustRegister(SocketTokensIssued)
	reg.MustRegister(RequestDuration)
}
