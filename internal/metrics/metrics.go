package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TotalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "angle_http_requests_total",
			Help: "Total number of HTTP requests handled by the API",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "angle_http_request_duration_seconds",
			Help:    "Histogram of API response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "angle_submissions_total",
			Help: "Form submissions durably stored, by type",
		},
		[]string{"type"},
	)

	NotificationAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "angle_notification_attempts_total",
			Help: "Individual email send attempts, by result (ok, error)",
		},
		[]string{"result"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "angle_notifications_total",
			Help: "Finished notification jobs, by outcome (sent, failed)",
		},
		[]string{"outcome"},
	)
)

// Register adds every collector to the default registry. Call once at startup.
func Register() {
	prometheus.MustRegister(TotalRequests, RequestDuration, SubmissionsTotal, NotificationAttempts, NotificationsTotal)
}
