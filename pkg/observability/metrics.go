package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tracery/pkg/domain"
)

// Metrics holds the engine collectors.
type Metrics struct {
	Flattens  prometheus.Counter
	Errors    *prometheus.CounterVec
	Durations prometheus.Histogram
	Symbols   *prometheus.CounterVec
	Actions   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Flattens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracery_flatten_total",
			Help: "Total number of completed Flatten calls",
		}),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracery_flatten_errors_total",
				Help: "Total number of Flatten calls that failed, by reason",
			},
			[]string{"reason"},
		),
		Durations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracery_flatten_duration_seconds",
			Help:    "Duration of Flatten calls",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		Symbols: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracery_symbols_total",
				Help: "Symbols resolved, by source",
			},
			[]string{"source"},
		),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracery_actions_total",
				Help: "Actions evaluated, by operation",
			},
			[]string{"op"},
		),
	}

	for _, c := range []prometheus.Collector{m.Flattens, m.Errors, m.Durations, m.Symbols, m.Actions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks feeds the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFlattenEnd: func(_ context.Context, e *domain.FlattenEvent) {
			m.Flattens.Inc()
			m.Durations.Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.Errors.WithLabelValues(errorReason(e.Err)).Inc()
			}
		},
		OnSymbol: func(_ context.Context, e *domain.SymbolEvent) {
			m.Symbols.WithLabelValues(string(e.Source)).Inc()
		},
		OnAction: func(_ context.Context, e *domain.ActionEvent) {
			m.Actions.WithLabelValues(string(e.Op)).Inc()
		},
	}
}

func errorReason(err error) string {
	if errors.Is(err, domain.ErrRecursionLimit) {
		return "recursion_limit"
	}
	return "other"
}
