package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_verifications_total",
			Help: "Password verifications by outcome and failure reason.",
		},
		[]string{"service", "result", "reason"},
	)

	RecoveryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_recovery_attempts_total",
			Help: "Recovery strategy attempts by strategy and outcome.",
		},
		[]string{"service", "strategy", "result"},
	)

	HashRepairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_hash_repairs_total",
			Help: "Hash repair operations by outcome.",
		},
		[]string{"service", "result"},
	)

	IntegrityScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_integrity_scans_total",
			Help: "Integrity scans by overall status.",
		},
		[]string{"service", "status"},
	)

	EventLogFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_event_log_failures_total",
			Help: "Auth events that could not be persisted.",
		},
		[]string{"event_type"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName}).(*prometheus.HistogramVec)
	VerificationsTotal = VerificationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	RecoveryAttemptsTotal = RecoveryAttemptsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HashRepairsTotal = HashRepairsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	IntegrityScansTotal = IntegrityScansTotal.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		VerificationsTotal,
		RecoveryAttemptsTotal,
		HashRepairsTotal,
		IntegrityScansTotal,
		EventLogFailuresTotal,
	)
}
