package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Booking outcomes recorded by ObserveBooking
const (
	BookingBooked          = "booked"
	BookingRejected        = "rejected"
	BookingConflict        = "conflict"
	BookingTooManyPending  = "too_many_pending"
	BookingSlotUnavailable = "slot_unavailable"
)

type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	BookingsTotal        *prometheus.CounterVec
	AppointmentsTotal    *prometheus.CounterVec
	PrescriptionsIssued  prometheus.Counter
	NotificationsSent    *prometheus.CounterVec
	NotificationsDropped prometheus.Counter
}

// NewCollector registers every clinic metric on a fresh registry together with
// the Go runtime and process collectors.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		BookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by outcome.",
		}, []string{"outcome"}),

		AppointmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "appointments_total",
			Help:      "Appointment lifecycle transitions by resulting status.",
		}, []string{"status"}),

		PrescriptionsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "prescriptions_issued_total",
			Help:      "Total prescriptions issued.",
		}),

		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "sent_total",
			Help:      "Confirmation messages handed to the outbox by result.",
		}, []string{"result"}),

		NotificationsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "buffer_dropped_total",
			Help:      "Confirmation messages dropped due to full buffer. Alert if non-zero.",
		}),
	}
}

// ObserveBooking is safe on a nil collector
func (c *Collector) ObserveBooking(outcome string) {
	if c == nil {
		return
	}
	c.BookingsTotal.WithLabelValues(outcome).Inc()
}

// ObserveAppointment is safe on a nil collector
func (c *Collector) ObserveAppointment(status string) {
	if c == nil {
		return
	}
	c.AppointmentsTotal.WithLabelValues(status).Inc()
}

// ObservePrescription is safe on a nil collector
func (c *Collector) ObservePrescription() {
	if c == nil {
		return
	}
	c.PrescriptionsIssued.Inc()
}

// ObserveNotification is safe on a nil collector
func (c *Collector) ObserveNotification(result string) {
	if c == nil {
		return
	}
	c.NotificationsSent.WithLabelValues(result).Inc()
}

// ObserveNotificationDropped is safe on a nil collector
func (c *Collector) ObserveNotificationDropped() {
	if c == nil {
		return
	}
	c.NotificationsDropped.Inc()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
