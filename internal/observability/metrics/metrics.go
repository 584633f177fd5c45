package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for scheduling flows.
type BookingMetrics struct {
	availabilityTotal *prometheus.CounterVec
	bookingTotal      *prometheus.CounterVec
	bookingLatency    *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reservly",
			Subsystem: "scheduling",
			Name:      "availability_requests_total",
			Help:      "Total availability computations",
		}, []string{"status"}),
		bookingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reservly",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Total booking attempts",
		}, []string{"outcome"}),
		bookingLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reservly",
			Subsystem: "booking",
			Name:      "booking_latency_seconds",
			Help:      "Latency of booking transactions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityTotal, m.bookingTotal, m.bookingLatency)
	return m
}

func (m *BookingMetrics) ObserveAvailability(status string) {
	if m == nil {
		return
	}
	m.availabilityTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveBooking(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingTotal.WithLabelValues(outcome).Inc()
	m.bookingLatency.WithLabelValues(outcome).Observe(seconds)
}
