package observability

import (
	"context"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of one cadence process.
type Metrics struct {
	Triggers    *prometheus.CounterVec
	Phases      *prometheus.CounterVec
	Fixation    prometheus.Histogram
	Sessions    *prometheus.CounterVec
	CurrentTask prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Triggers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadence_triggers_total",
				Help: "Trigger deliveries by kind and final result",
			},
			[]string{"kind", "result"},
		),
		Phases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadence_phase_transitions_total",
				Help: "Entries into each session phase",
			},
			[]string{"phase"},
		),
		Fixation: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cadence_fixation_interval_seconds",
				Help:    "Randomized fixation intervals drawn by the session",
				Buckets: prometheus.LinearBuckets(4.0, 0.1, 10),
			},
		),
		Sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadence_sessions_total",
				Help: "Finished runs by outcome",
			},
			[]string{"outcome"},
		),
		CurrentTask: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cadence_current_task_index",
				Help: "Index of the trial being presented, -1 when idle",
			},
		),
	}
	m.CurrentTask.Set(-1)

	if reg != nil {
		reg.MustRegister(m.Triggers, m.Phases, m.Fixation, m.Sessions, m.CurrentTask)
	}
	return m
}

// ObserveOutcome counts a final trigger outcome.
// Queued outcomes are not final and are ignored.
func (m *Metrics) ObserveOutcome(o domain.Outcome) {
	if o.Result == domain.OutcomeQueued {
		return
	}
	m.Triggers.WithLabelValues(string(o.Kind), string(o.Result)).Inc()
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(_ context.Context, e *domain.PhaseChanged) {
			m.Phases.WithLabelValues(string(e.Phase)).Inc()
			m.CurrentTask.Set(float64(e.Index))

			switch e.Phase {
			case domain.PhaseFixation:
				m.Fixation.Observe(e.Interval.Seconds())
			case domain.PhaseAborted:
				m.Sessions.WithLabelValues("aborted").Inc()
			}
		},
		OnComplete: func(context.Context, *domain.PhaseChanged) {
			m.Sessions.WithLabelValues("completed").Inc()
		},
	}
}
