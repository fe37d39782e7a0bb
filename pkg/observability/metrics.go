package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "colloquy"

// Metrics groups all Prometheus instruments fed by the engine.
type Metrics struct {
	Turns        *prometheus.CounterVec
	TurnErrors   prometheus.Counter
	TurnDuration prometheus.Histogram
	SlotsWritten prometheus.Counter
	SlotsExpired prometheus.Counter
	SlotsSkipped prometheus.Counter
	Navigations  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the instruments on reg. A nil reg uses a fresh private registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Processed turns by decision kind.",
		}, []string{"action"}),
		TurnErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_errors_total",
			Help:      "Turns that ended with an error.",
		}),
		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time spent processing a turn.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		SlotsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_written_total",
			Help:      "Slots written by the merge step.",
		}),
		SlotsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_expired_total",
			Help:      "Slots removed after reaching their turn limit.",
		}),
		SlotsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_skipped_total",
			Help:      "Candidates rejected because the slot is not overwritable.",
		}),
		Navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Resolved destinations by target flow.",
		}, []string{"flow"}),
		gatherer: reg,
	}
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			if e.Err != nil {
				m.TurnErrors.Inc()
				return
			}
			m.Turns.WithLabelValues(e.Action).Inc()
			m.TurnDuration.Observe(e.Duration.Seconds())
		},
		OnSlotsMerged: func(_ context.Context, e *domain.SlotEvent) {
			m.SlotsWritten.Add(float64(len(e.Written)))
			m.SlotsExpired.Add(float64(len(e.Expired)))
			m.SlotsSkipped.Add(float64(len(e.Skipped)))
		},
		OnNavigate: func(_ context.Context, e *domain.NavigationEvent) {
			m.Navigations.WithLabelValues(e.To.FlowName).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Chain fans every event out to each set of hooks in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnTurnStart = chain(out.OnTurnStart, h.OnTurnStart)
		out.OnTurnEnd = chain(out.OnTurnEnd, h.OnTurnEnd)
		out.OnSlotsMerged = chain(out.OnSlotsMerged, h.OnSlotsMerged)
		out.OnNavigate = chain(out.OnNavigate, h.OnNavigate)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
