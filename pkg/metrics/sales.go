package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// SalesMetrics tracks sale mutations and stock rejections.
type SalesMetrics struct {
	mutations       *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	stockRejections prometheus.Counter
}

// NewSalesMetrics registers the sale engine metrics on the provided registerer.
func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_mutations_total",
		Help: "Sale create/update/delete attempts by outcome.",
	}, []string{"op", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sale_mutation_duration_seconds",
		Help:    "Duration of sale mutation transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	stockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_rejections_total",
		Help: "Availability checks rejected for insufficient stock.",
	})
	reg.MustRegister(mutations, duration, stockRejections)
	return &SalesMetrics{
		mutations:       mutations,
		duration:        duration,
		stockRejections: stockRejections,
	}
}

// ObserveMutation records the outcome and latency of one sale mutation.
func (s *SalesMetrics) ObserveMutation(op, result string, elapsed time.Duration) {
	if s == nil || s.mutations == nil {
		return
	}
	op = normalizeLabel(op)
	s.mutations.WithLabelValues(op, normalizeLabel(result)).Inc()
	s.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// IncStockRejection counts one failed availability check.
func (s *SalesMetrics) IncStockRejection() {
	if s == nil || s.stockRejections == nil {
		return
	}
	s.stockRejections.Inc()
}
