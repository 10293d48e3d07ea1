package observability

import (
	"context"
	"errors"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors fed by engine lifecycle events.
type Metrics struct {
	// DispatchTotal counts dispatches by machine, source state and outcome.
	DispatchTotal *prometheus.CounterVec
	// TransitionsTotal counts committed transitions by machine and edge.
	TransitionsTotal *prometheus.CounterVec
	// HookErrorsTotal counts hook faults by machine and phase.
	HookErrorsTotal *prometheus.CounterVec
	// DispatchDuration observes time spent running the hook sequence.
	DispatchDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg registers on the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		DispatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_dispatch_total",
			Help: "Total number of dispatched messages by machine, state and outcome (committed, refused, unhandled or error)",
		}, []string{"machine", "state", "outcome"}),

		TransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_transitions_total",
			Help: "Total number of committed transitions by machine, from_state and to_state",
		}, []string{"machine", "from_state", "to_state"}),

		HookErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_hook_errors_total",
			Help: "Total number of hook faults by machine and phase",
		}, []string{"machine", "phase"}),

		DispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "waypoint_dispatch_duration_seconds",
			Help:    "Duration of the hook sequence of one dispatch by machine and outcome",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"machine", "outcome"}),
	}
}

// Hooks returns lifecycle hooks recording into m under the given machine label.
func (m *Metrics) Hooks(machine string) domain.LifecycleHooks {
	machine = sanitizeMachine(machine)

	return domain.LifecycleHooks{
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			outcome := outcomeLabel(e)
			m.DispatchTotal.WithLabelValues(machine, string(e.Result.From), outcome).Inc()
			if !e.Result.Found() {
				return
			}
			m.DispatchDuration.WithLabelValues(machine, outcome).Observe(e.Duration.Seconds())

			// A fault after the commit does not undo the transition.
			if e.Result.Committed() {
				m.TransitionsTotal.WithLabelValues(machine, string(e.Result.From), string(e.Result.Next)).Inc()
			}

			var hookErr *domain.HookError
			if errors.As(e.Err, &hookErr) {
				m.HookErrorsTotal.WithLabelValues(machine, string(hookErr.Phase)).Inc()
			}
		},
	}
}

func outcomeLabel(e *domain.DispatchEvent) string {
	if e.Err != nil {
		return "error"
	}
	return string(e.Result.Outcome)
}

func sanitizeMachine(machine string) string {
	if machine == "" {
		return "unknown"
	}
	return machine
}
