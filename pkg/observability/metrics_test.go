package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/cadence/internal/testutils"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/observability"
	"github.com/aretw0/cadence/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trials = []domain.Trial{{ID: "1", Description: "Right hand"}, {ID: "2", Description: "Left hand"}}

func TestMetrics_SessionHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	sched := testutils.NewManualScheduler()
	m := session.New(sched, &testutils.RecordingEmitter{}, session.WithLifecycleHooks(metrics.Hooks()))

	require.True(t, m.Start(trials))
	sched.RunAll(100)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Phases.WithLabelValues("fixation")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Phases.WithLabelValues("execute")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Phases.WithLabelValues("ended")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Sessions.WithLabelValues("completed")))
	assert.Equal(t, -1.0, testutil.ToFloat64(metrics.CurrentTask))

	require.True(t, m.Start(trials))
	require.True(t, m.Abort())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Sessions.WithLabelValues("aborted")))

	n, err := testutil.GatherAndCount(reg, "cadence_fixation_interval_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_ObserveOutcome(t *testing.T) {
	metrics := observability.NewMetrics(nil)

	metrics.ObserveOutcome(domain.Outcome{Kind: domain.TriggerTaskStart, Result: domain.OutcomeQueued})
	metrics.ObserveOutcome(domain.Outcome{Kind: domain.TriggerTaskStart, Result: domain.OutcomeSent})
	metrics.ObserveOutcome(domain.Outcome{Kind: domain.TriggerTaskStart, Result: domain.OutcomeSent})
	metrics.ObserveOutcome(domain.Outcome{Kind: domain.TriggerTaskEnd, Result: domain.OutcomeFailed})

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Triggers.WithLabelValues("task_start", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Triggers.WithLabelValues("task_end", "failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Triggers.WithLabelValues("task_start", "queued")))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	hooks := observability.LogHooks(logger)

	hooks.OnPhaseEnter(context.Background(), &domain.PhaseChanged{
		EventBase: domain.EventBase{RunID: "r1"},
		Phase:     domain.PhaseFixation,
		Index:     0,
		Trial:     &trials[0],
		Interval:  4200 * time.Millisecond,
	})
	hooks.OnTrigger(context.Background(), &domain.TriggerEvent{Kind: domain.TriggerTaskStart, Code: "5", Result: domain.OutcomeQueued})

	out := buf.String()
	assert.Contains(t, out, "phase=fixation")
	assert.Contains(t, out, "trial_id=1")
	assert.Contains(t, out, "interval_ms=4200")
	assert.Contains(t, out, "code=5")
}
