package metrics

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-repository-audit/audit"
	"github.com/goliatone/go-repository-audit/cache"
	"github.com/goliatone/go-repository-audit/repositoryaudit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeStamped      = "stamped"
	OutcomeNotAuditable = "not_auditable"
	OutcomeFailed       = "failed"

	PatternNarrow = "narrow"
	PatternBroad  = "broad"
)

// Metrics exposes counters fed by the stamping and invalidation hooks.
type Metrics struct {
	gatherer           prometheus.Gatherer
	stamps             *prometheus.CounterVec
	invalidatedKeys    *prometheus.CounterVec
	invalidationErrors *prometheus.CounterVec
}

// New registers the counters on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		gatherer: registry,
		stamps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_stamps_total",
			Help: "Audit stamping attempts by operation and outcome",
		}, []string{"operation", "outcome"}),
		invalidatedKeys: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_invalidated_keys_total",
			Help: "Cache keys removed by invalidation pattern kind",
		}, []string{"pattern_kind"}),
		invalidationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_invalidation_errors_total",
			Help: "Failed cache invalidations by pattern kind",
		}, []string{"pattern_kind"}),
	}
}

// StampHook counts every stamping attempt reported by the interceptor.
func (m *Metrics) StampHook() repositoryaudit.Hook {
	return func(_ context.Context, _ string, result audit.Result) {
		m.stamps.WithLabelValues(result.Operation.String(), outcome(result)).Inc()
	}
}

// InvalidationHook counts removed keys and failures per pattern kind.
func (m *Metrics) InvalidationHook() cache.InvalidationHook {
	return func(_ context.Context, pattern string, deleted int, err error) {
		kind := PatternKind(pattern)
		if err != nil {
			m.invalidationErrors.WithLabelValues(kind).Inc()
			return
		}
		m.invalidatedKeys.WithLabelValues(kind).Add(float64(deleted))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(result audit.Result) string {
	switch {
	case result.Err != nil:
		return OutcomeFailed
	case !result.Auditable():
		return OutcomeNotAuditable
	default:
		return OutcomeStamped
	}
}

// PatternKind reports whether pattern holds an unescaped wildcard.
func PatternKind(pattern string) string {
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case strings.ContainsRune("*?[", r):
			return PatternBroad
		}
	}
	return PatternNarrow
}
