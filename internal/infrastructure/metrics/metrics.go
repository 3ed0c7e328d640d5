package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LeaderboardQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_queries_total",
			Help: "Leaderboard queries served, by period filter",
		},
		[]string{"filter"},
	)

	ValidationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_validation_errors_total",
			Help: "Rejected leaderboard requests, by parameter",
		},
		[]string{"parameter"},
	)

	UsersRegistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_users_registered_total",
			Help: "Users added after startup, by source",
		},
		[]string{"source"},
	)

	QueueMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_queue_messages_total",
			Help: "Registration messages consumed, by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	SeededUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaderboard_seeded_users",
			Help: "Users loaded from the seed source at startup",
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_http_requests_total",
			Help: "HTTP requests, by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leaderboard_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			LeaderboardQueries,
			ValidationErrors,
			UsersRegistered,
			QueueMessages,
			SeededUsers,
			HTTPRequests,
			HTTPDuration,
		)
	})
}

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
