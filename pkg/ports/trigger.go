package ports

import (
	"context"

	"github.com/aretw0/cadence/pkg/domain"
)

// Transport delivers one encoded marker to the recording apparatus.
type Transport interface {
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// Emitter turns semantic trigger events into markers.
// Emit must never block on delivery and must never panic into the caller.
type Emitter interface {
	Emit(kind domain.TriggerKind, trialID string, info map[string]any) domain.Outcome
}
