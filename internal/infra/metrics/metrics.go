// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usersvc_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usersvc_auth_attempts_total",
			Help: "Total authentication attempts by event and outcome",
		},
		[]string{"event", "success"},
	)
	accountEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usersvc_account_events_total",
			Help: "Account lifecycle transitions",
		},
		[]string{"event"},
	)
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route, status string, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// RecordAuthAttempt records a login or credential check outcome.
func RecordAuthAttempt(event string, success bool) {
	authAttempts.WithLabelValues(event, strconv.FormatBool(success)).Inc()
}

// RecordAccountEvent counts registrations, deactivations and similar transitions.
func RecordAccountEvent(event string) {
	accountEvents.WithLabelValues(event).Inc()
}
