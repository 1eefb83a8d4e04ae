package store

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/next-trace/scg-service-state/contract/action"
	"github.com/next-trace/scg-service-state/promise"
)

// Metrics counts dispatched actions and times asynchronous operations.
type Metrics struct {
	actions  *prometheus.CounterVec
	settled  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_dispatched_total",
			Help:      "Actions dispatched, by type.",
		}, []string{"type"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "async_settled_total",
			Help:      "Asynchronous operations settled, by type and outcome.",
		}, []string{"type", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "async_duration_seconds",
			Help:      "Time from dispatch to settle of asynchronous operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.actions, m.settled, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("register store metrics: %w", err)
			}
		}
	}

	return m, nil
}

// Middleware records metrics for every action passing through.
func (m *Metrics) Middleware() Middleware {
	return func(_ API) func(next action.Dispatch) action.Dispatch {
		return func(next action.Dispatch) action.Dispatch {
			return func(a action.Action) *promise.Promise {
				m.actions.WithLabelValues(a.Type).Inc()

				if _, ok := asyncPayload(a.Payload); !ok {
					return next(a)
				}

				start := time.Now()

				return next(a).Then(func(v any, err error) (any, error) {
					outcome := "fulfilled"
					if err != nil {
						outcome = "rejected"
					}

					m.settled.WithLabelValues(a.Type, outcome).Inc()
					m.duration.WithLabelValues(a.Type).Observe(time.Since(start).Seconds())

					return v, err
				})
			}
		}
	}
}
