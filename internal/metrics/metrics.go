package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the checkout and invoice flows.
type BookingMetrics struct {
	paymentAttempts *prometheus.CounterVec
	paymentLatency  prometheus.Histogram
	bookingsCreated prometheus.Counter
	invoicesSent    *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		paymentAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparkleclean",
			Subsystem: "checkout",
			Name:      "payment_attempts_total",
			Help:      "Payment attempts by outcome",
		}, []string{"outcome"}),
		paymentLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sparkleclean",
			Subsystem: "checkout",
			Name:      "payment_latency_seconds",
			Help:      "Time from submitting a card to the authorization result",
			Buckets:   prometheus.DefBuckets,
		}),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sparkleclean",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Bookings promoted from a paid draft",
		}),
		invoicesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparkleclean",
			Subsystem: "invoices",
			Name:      "sent_total",
			Help:      "Invoices handed to the accounting publisher",
		}, []string{"mode", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.paymentAttempts, m.paymentLatency, m.bookingsCreated, m.invoicesSent)
	return m
}

// ObservePayment records one attempt; outcome is "authorized", "declined", "invalid" or "error".
func (m *BookingMetrics) ObservePayment(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.paymentAttempts.WithLabelValues(outcome).Inc()
	if seconds > 0 {
		m.paymentLatency.Observe(seconds)
	}
}

func (m *BookingMetrics) ObserveBookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

// ObserveInvoices counts n invoices sent in mode "single" or "batch".
func (m *BookingMetrics) ObserveInvoices(mode, status string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.invoicesSent.WithLabelValues(mode, status).Add(float64(n))
}
