package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts quote evaluations by result status.
	QuoteTotal *prometheus.CounterVec
	// QuoteDuration records end-to-end quote latency in milliseconds.
	QuoteDuration prometheus.Histogram
	// BelowCostTotal counts quotes whose final price landed below cost.
	BelowCostTotal *prometheus.CounterVec
	// AuditEnqueueTotal counts order line audit enqueue outcomes.
	AuditEnqueueTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_total",
			Help:      "Count of quote evaluations by result status.",
		}, []string{"status"})
		QuoteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_duration_ms",
			Help:      "End-to-end quote latency in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		})
		BelowCostTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_below_cost_total",
			Help:      "Count of quotes priced below cost by authorization verdict.",
		}, []string{"verdict"})
		AuditEnqueueTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_enqueue_total",
			Help:      "Count of order line audit enqueue outcomes.",
		}, []string{"result"})
		mustRegisterCollector(reg, QuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteDuration = v
			}
		})
		mustRegisterCollector(reg, BelowCostTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BelowCostTotal = v
			}
		})
		mustRegisterCollector(reg, AuditEnqueueTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				AuditEnqueueTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
