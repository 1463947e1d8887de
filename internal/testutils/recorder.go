package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
)

// Emitted is one call captured by RecordingEmitter.
type Emitted struct {
	Kind    domain.TriggerKind
	TrialID string
	Context map[string]any
}

// RecordingEmitter is a ports.Emitter that keeps every call in memory.
type RecordingEmitter struct {
	mu    sync.Mutex
	calls []Emitted
}

var _ ports.Emitter = (*RecordingEmitter)(nil)

// Emit records the call and reports it as queued.
func (r *RecordingEmitter) Emit(kind domain.TriggerKind, trialID string, ctx map[string]any) domain.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Emitted{Kind: kind, TrialID: trialID, Context: ctx})
	return domain.Outcome{Timestamp: time.Now(), Kind: kind, TrialID: trialID, Result: domain.OutcomeQueued}
}

// Calls returns a copy of every recorded call.
func (r *RecordingEmitter) Calls() []Emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Emitted, len(r.calls))
	copy(out, r.calls)
	return out
}

// Kinds returns the recorded kinds in call order.
func (r *RecordingEmitter) Kinds() []domain.TriggerKind {
	calls := r.Calls()
	kinds := make([]domain.TriggerKind, len(calls))
	for i, c := range calls {
		kinds[i] = c.Kind
	}
	return kinds
}

// Reset clears recorded calls.
func (r *RecordingEmitter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// ErrTransportDown is returned by a failing RecordingTransport.
var ErrTransportDown = errors.New("transport down")

// RecordingTransport is a ports.Transport that keeps every payload in memory.
// When Fail is set, Send returns ErrTransportDown without recording.
type RecordingTransport struct {
	mu       sync.Mutex
	payloads []string
	Fail     bool
	Closed   bool
	sent     chan struct{}
}

// NewRecordingTransport creates a transport that signals every Send on Sent.
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{sent: make(chan struct{}, 1024)}
}

var _ ports.Transport = (*RecordingTransport)(nil)

func (t *RecordingTransport) Send(ctx context.Context, payload []byte) error {
	t.mu.Lock()
	defer func() {
		t.mu.Unlock()
		select {
		case t.sent <- struct{}{}:
		default:
		}
	}()
	if t.Fail {
		return ErrTransportDown
	}
	t.payloads = append(t.payloads, string(payload))
	return nil
}

func (t *RecordingTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Closed = true
	return nil
}

// SetFail toggles failure mode.
func (t *RecordingTransport) SetFail(fail bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Fail = fail
}

// Payloads returns every delivered payload in order.
func (t *RecordingTransport) Payloads() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.payloads))
	copy(out, t.payloads)
	return out
}

// IsClosed reports whether Close was called.
func (t *RecordingTransport) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Closed
}

// Sent is signalled after each Send attempt.
func (t *RecordingTransport) Sent() <-chan struct{} {
	return t.sent
}
