package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kaupa"

// QuoteMetrics records delivery quote and optimization activity.
type QuoteMetrics struct {
	duration    *prometheus.HistogramVec
	suggestions *prometheus.CounterVec
	warnings    *prometheus.CounterVec
	cache       *prometheus.CounterVec
	rejected    prometheus.Counter
}

// NewQuoteMetrics registers the quote metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "quote_duration_seconds",
		Help:      "Duration of delivery quote operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "outcome"})
	suggestions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optimizer_suggestions_total",
		Help:      "Suggestions emitted by the order optimizer.",
	}, []string{"type"})
	warnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optimizer_warnings_total",
		Help:      "Warnings emitted by the order optimizer.",
	}, []string{"type"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by cache name and result.",
	}, []string{"cache", "result"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_rules_rejected_total",
		Help:      "Stored delivery rules that failed validation and were ignored.",
	})
	reg.MustRegister(duration, suggestions, warnings, cache, rejected)
	return &QuoteMetrics{
		duration:    duration,
		suggestions: suggestions,
		warnings:    warnings,
		cache:       cache,
		rejected:    rejected,
	}
}

// ObserveDuration records how long an operation took and whether it failed.
func (m *QuoteMetrics) ObserveDuration(operation string, err error, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.duration.WithLabelValues(normalizeLabel(operation), outcome).Observe(duration.Seconds())
}

func (m *QuoteMetrics) IncSuggestion(kind string) {
	if m == nil || m.suggestions == nil {
		return
	}
	m.suggestions.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *QuoteMetrics) IncWarning(kind string) {
	if m == nil || m.warnings == nil {
		return
	}
	m.warnings.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveCache counts a hit or miss for the named cache.
func (m *QuoteMetrics) ObserveCache(cache string, hit bool) {
	if m == nil || m.cache == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(normalizeLabel(cache), result).Inc()
}

func (m *QuoteMetrics) AddRejectedRules(n int) {
	if m == nil || m.rejected == nil || n <= 0 {
		return
	}
	m.rejected.Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
