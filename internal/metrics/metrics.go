package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scheduling"

// BookingMetrics exposes counters/histograms for appointment flows.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	completionsTotal   *prometheus.CounterVec
	bookingLatency     *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "cancellations_total",
			Help:      "Cancellation attempts by outcome",
		}, []string{"outcome"}),
		completionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "completions_total",
			Help:      "Completion attempts by outcome",
		}, []string{"outcome"}),
		bookingLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "booking_latency_seconds",
			Help:      "Latency of booking requests including lock wait",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.cancellationsTotal, m.completionsTotal, m.bookingLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
	m.bookingLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *BookingMetrics) ObserveCancellation(outcome string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveCompletion(outcome string) {
	if m == nil {
		return
	}
	m.completionsTotal.WithLabelValues(outcome).Inc()
}

// MessagingMetrics counts in-app messages.
type MessagingMetrics struct {
	sentTotal *prometheus.CounterVec
}

func NewMessagingMetrics(reg prometheus.Registerer) *MessagingMetrics {
	m := &MessagingMetrics{
		sentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messaging",
			Name:      "sent_total",
			Help:      "Messages sent by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sentTotal)
	return m
}

func (m *MessagingMetrics) ObserveSent(outcome string) {
	if m == nil {
		return
	}
	m.sentTotal.WithLabelValues(outcome).Inc()
}
