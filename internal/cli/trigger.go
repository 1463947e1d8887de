package cli

import (
	"fmt"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/trigger"
)

// SendTrigger emits a single marker and waits for its delivery outcome.
// It backs the manual trigger tester.
func SendTrigger(emitter *trigger.Emitter, kind domain.TriggerKind, trialID string) (domain.Outcome, error) {
	queued := emitter.Emit(kind, trialID, map[string]any{"source": "manual"})
	if err := emitter.Close(); err != nil {
		return queued, fmt.Errorf("failed to close trigger transport: %w", err)
	}
	if queued.Result != domain.OutcomeQueued {
		return queued, queued.Err
	}

	final, ok := emitter.LastOutcome()
	if !ok {
		return queued, nil
	}
	return final, final.Err
}
