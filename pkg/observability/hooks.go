package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cadence/pkg/domain"
)

// LogHooks returns lifecycle hooks that write every phase entry and trigger
// to logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *domain.PhaseChanged) {
			attrs := []any{
				"run_id", e.RunID,
				"phase", e.Phase,
				"previous", e.Previous,
				"index", e.Index,
			}
			if e.Trial != nil {
				attrs = append(attrs, "trial_id", e.Trial.ID)
			}
			if e.Interval > 0 {
				attrs = append(attrs, "interval_ms", e.Interval.Milliseconds())
			}
			logger.InfoContext(ctx, "phase_enter", attrs...)
		},
		OnTrigger: func(ctx context.Context, e *domain.TriggerEvent) {
			logger.InfoContext(ctx, "trigger",
				"run_id", e.RunID,
				"kind", e.Kind,
				"trial_id", e.TrialID,
				"code", e.Code,
				"result", e.Result,
			)
		},
		OnComplete: func(ctx context.Context, e *domain.PhaseChanged) {
			logger.InfoContext(ctx, "session_complete",
				"run_id", e.RunID,
				"completed", e.Completed,
				"total", e.Total,
			)
		},
	}
}
