package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AuditEntries counts activity log entries by outcome: written, dropped, failed, skipped.
	AuditEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_audit_entries_total",
			Help: "Activity log entries by outcome",
		},
		[]string{"outcome"},
	)

	// AppointmentTransitions counts accepted appointment status changes.
	AppointmentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_appointment_transitions_total",
			Help: "Appointment status transitions",
		},
		[]string{"from", "to"},
	)

	// BookingConflicts counts rejected double bookings, split by the layer that caught them.
	BookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_booking_conflicts_total",
			Help: "Double booking attempts rejected",
		},
		[]string{"layer"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinic_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(
		AuditEntries,
		AppointmentTransitions,
		BookingConflicts,
		httpRequestsTotal,
		httpRequestDuration,
	)
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route, statusCode string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
