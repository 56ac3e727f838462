package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for lead capture.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	storeCallsTotal  *prometheus.CounterVec
	storeLatency     *prometheus.HistogramVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seo",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total lead submissions by outcome",
		}, []string{"outcome"}),
		storeCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seo",
			Subsystem: "docstore",
			Name:      "calls_total",
			Help:      "Total document store calls",
		}, []string{"operation", "status"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "seo",
			Subsystem: "docstore",
			Name:      "call_latency_seconds",
			Help:      "Latency of document store calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.storeCallsTotal, m.storeLatency)
	return m
}

// ObserveSubmission counts one lead submission outcome.
func (m *LeadMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStoreCall records one document store round trip.
func (m *LeadMetrics) ObserveStoreCall(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.storeCallsTotal.WithLabelValues(operation, status).Inc()
	m.storeLatency.WithLabelValues(operation).Observe(seconds)
}
