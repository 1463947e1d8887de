package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/ports"
)

// DefaultQueueSize is the number of callbacks buffered before Post blocks.
const DefaultQueueSize = 64

// ErrStopped is returned when posting to a loop that has stopped running.
var ErrStopped = errors.New("loop stopped")

// Loop serializes callbacks onto a single goroutine.
type Loop struct {
	queue   chan func()
	stopped chan struct{}
	stop    sync.Once
	running atomic.Bool
	logger  *slog.Logger
}

// Option configures the Loop.
type Option func(*Loop)

// WithQueueSize sets the callback buffer size.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queue = make(chan func(), n)
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New creates a loop. Callbacks posted before Run are buffered.
func New(opts ...Option) *Loop {
	l := &Loop{
		queue:   make(chan func(), DefaultQueueSize),
		stopped: make(chan struct{}),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Ensure Loop implements the Scheduler port.
var _ ports.Scheduler = (*Loop)(nil)

// Run executes posted callbacks until ctx is cancelled.
// A loop runs at most once; after Run returns every Post fails.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("loop already running")
	}
	defer l.stop.Do(func() { close(l.stopped) })

	l.logger.Debug("loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("loop stopped", "err", ctx.Err())
			return ctx.Err()
		case fn := <-l.queue:
			fn()
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}

// Post queues fn to run on the loop goroutine.
// It returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}

	select {
	case l.queue <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// Do posts fn and waits until it has run.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-done:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ScheduleOnce runs fn on the loop goroutine after delay.
func (l *Loop) ScheduleOnce(delay time.Duration, fn func()) ports.CancelFunc {
	var cancelled atomic.Bool

	timer := time.AfterFunc(delay, func() {
		l.Post(func() {
			if cancelled.Load() {
				return
			}
			fn()
		})
	})

	return func() {
		cancelled.Store(true)
		timer.Stop()
	}
}
