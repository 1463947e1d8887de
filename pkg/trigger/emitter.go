package trigger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
)

// DefaultQueueSize is the number of markers buffered for the sender goroutine.
const DefaultQueueSize = 32

// DefaultSendTimeout bounds a single transport write.
const DefaultSendTimeout = 500 * time.Millisecond

// Emitter is the process-wide trigger emitter.
// It is constructed once at startup around an already opened Transport.
type Emitter struct {
	codebook    Codebook
	transport   ports.Transport
	logger      *slog.Logger
	observer    func(domain.Outcome)
	sendTimeout time.Duration
	now         func() time.Time

	mu     sync.RWMutex
	queue  chan job
	closed bool
	done   chan struct{}

	lastMu sync.Mutex
	last   domain.Outcome
	hasRun bool
}

type job struct {
	outcome domain.Outcome
	payload []byte
}

// Option configures the Emitter.
type Option func(*Emitter)

// WithCodebook sets the encoding table.
func WithCodebook(c Codebook) Option {
	return func(e *Emitter) {
		e.codebook = c
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// WithQueueSize sets the sender buffer.
func WithQueueSize(n int) Option {
	return func(e *Emitter) {
		if n > 0 {
			e.queue = make(chan job, n)
		}
	}
}

// WithSendTimeout bounds each transport write.
func WithSendTimeout(d time.Duration) Option {
	return func(e *Emitter) {
		if d > 0 {
			e.sendTimeout = d
		}
	}
}

// WithObserver receives every final outcome (metrics, advisory banners).
// It runs on the sender goroutine for delivered markers and on the caller's
// goroutine for markers that never reach the transport.
func WithObserver(fn func(domain.Outcome)) Option {
	return func(e *Emitter) {
		e.observer = fn
	}
}

// NewEmitter starts the sender goroutine for transport.
func NewEmitter(transport ports.Transport, opts ...Option) *Emitter {
	e := &Emitter{
		codebook:    DefaultCodebook(),
		transport:   transport,
		logger:      logging.NewNop(),
		sendTimeout: DefaultSendTimeout,
		now:         time.Now,
		queue:       make(chan job, DefaultQueueSize),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	go e.run()
	return e
}

var _ ports.Emitter = (*Emitter)(nil)

// Emit encodes the event and queues it for delivery without waiting.
// The returned outcome is Queued, Dropped or Rejected; delivery results are
// reported through LastOutcome and the observer.
func (e *Emitter) Emit(kind domain.TriggerKind, trialID string, info map[string]any) domain.Outcome {
	outcome := domain.Outcome{
		Timestamp: e.now(),
		Kind:      kind,
		TrialID:   trialID,
	}

	code, ok, err := e.codebook.Encode(kind, trialID)
	if err != nil {
		outcome.Result = domain.OutcomeRejected
		outcome.Err = err
		e.logger.Error("trigger rejected", "kind", kind, "trial_id", trialID, "err", err)
		return e.finish(outcome)
	}
	if !ok {
		outcome.Result = domain.OutcomeDropped
		e.logger.Info("trigger has no code, nothing sent", "kind", kind, "trial_id", trialID)
		return e.finish(outcome)
	}
	outcome.Code = code

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		outcome.Result = domain.OutcomeDropped
		outcome.Err = domain.ErrEmitterClosed
		return e.finish(outcome)
	}

	outcome.Result = domain.OutcomeQueued
	select {
	case e.queue <- job{outcome: outcome, payload: []byte(code)}:
		e.logger.Info("trigger", "kind", kind, "trial_id", trialID, "code", code, "context", info)
		return outcome
	default:
		outcome.Result = domain.OutcomeDropped
		e.logger.Warn("trigger queue full, marker dropped", "kind", kind, "trial_id", trialID, "code", code)
		return e.finish(outcome)
	}
}

// LastOutcome returns the most recent final outcome for diagnostics.
func (e *Emitter) LastOutcome() (domain.Outcome, bool) {
	e.lastMu.Lock()
	defer e.lastMu.Unlock()
	return e.last, e.hasRun
}

// Close stops accepting markers, drains the queue and closes the transport.
func (e *Emitter) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return nil
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	<-e.done
	return e.transport.Close()
}

func (e *Emitter) run() {
	defer close(e.done)

	for j := range e.queue {
		ctx, cancel := context.WithTimeout(context.Background(), e.sendTimeout)
		err := e.transport.Send(ctx, j.payload)
		cancel()

		outcome := j.outcome
		if err != nil {
			outcome.Result = domain.OutcomeFailed
			outcome.Err = err
			e.logger.Warn("trigger send failed", "kind", outcome.Kind, "code", outcome.Code, "err", err)
		} else {
			outcome.Result = domain.OutcomeSent
			e.logger.Debug("trigger sent", "kind", outcome.Kind, "code", outcome.Code)
		}
		e.finish(outcome)
	}
}

func (e *Emitter) finish(outcome domain.Outcome) domain.Outcome {
	e.lastMu.Lock()
	e.last = outcome
	e.hasRun = true
	e.lastMu.Unlock()

	if e.observer != nil {
		e.observer(outcome)
	}
	return outcome
}
