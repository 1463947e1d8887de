package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPhaseEnter EventType = "phase_enter"
	EventPhaseLeave EventType = "phase_leave"
	EventTrigger    EventType = "trigger"
	EventComplete   EventType = "complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
}

// PhaseChanged is published once per externally visible phase transition.
// Presentation layers redraw only on receipt of this event.
type PhaseChanged struct {
	EventBase
	Phase     Phase         `json:"phase"`
	Previous  Phase         `json:"previous"`
	Index     int           `json:"index"`
	Trial     *Trial        `json:"trial,omitempty"`
	Interval  time.Duration `json:"interval,omitempty"`
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
}

// TriggerEvent records one trigger handed to the emitter.
type TriggerEvent struct {
	EventBase
	Kind    TriggerKind    `json:"kind"`
	TrialID string         `json:"trial_id,omitempty"`
	Code    string         `json:"code,omitempty"`
	Result  OutcomeResult  `json:"result"`
	Context map[string]any `json:"context,omitempty"`
}

// LifecycleHooks defines callbacks for session observability.
// Hooks run on the session's goroutine and must not block.
type LifecycleHooks struct {
	OnPhaseEnter func(context.Context, *PhaseChanged)
	OnPhaseLeave func(context.Context, *PhaseChanged)
	OnTrigger    func(context.Context, *TriggerEvent)
	OnComplete   func(context.Context, *PhaseChanged)
}

// MergeHooks returns hooks that call every non-nil hook of each set in order.
func MergeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range sets {
		merged.OnPhaseEnter = chain(merged.OnPhaseEnter, h.OnPhaseEnter)
		merged.OnPhaseLeave = chain(merged.OnPhaseLeave, h.OnPhaseLeave)
		merged.OnTrigger = chain(merged.OnTrigger, h.OnTrigger)
		merged.OnComplete = chain(merged.OnComplete, h.OnComplete)
	}
	return merged
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
