package cadence

import (
	"context"
	"log/slog"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/loop"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/session"
)

// Version is the release of the cadence module.
const Version = "0.3.0"

// Station is the high-level entry point: a session machine running on its
// own event loop.
type Station struct {
	loop    *loop.Loop
	machine *session.Machine
	logger  *slog.Logger
	info    Info
}

type stationConfig struct {
	logger      *slog.Logger
	hooks       []domain.LifecycleHooks
	sessionOpts []session.Option
	loopOpts    []loop.Option
}

// Option defines a functional option for configuring the Station.
type Option func(*stationConfig)

// WithLogger sets the structured logger shared by the loop and the machine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *stationConfig) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls add hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *stationConfig) {
		c.hooks = append(c.hooks, hooks)
	}
}

// WithSessionOptions passes options to the session machine.
func WithSessionOptions(opts ...session.Option) Option {
	return func(c *stationConfig) {
		c.sessionOpts = append(c.sessionOpts, opts...)
	}
}

// WithLoopOptions passes options to the event loop.
func WithLoopOptions(opts ...loop.Option) Option {
	return func(c *stationConfig) {
		c.loopOpts = append(c.loopOpts, opts...)
	}
}

// New creates a station that emits through emitter.
// Nothing happens until Run is called.
func New(emitter ports.Emitter, opts ...Option) *Station {
	cfg := &stationConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	l := loop.New(append([]loop.Option{loop.WithLogger(cfg.logger)}, cfg.loopOpts...)...)

	sessionOpts := append([]session.Option{}, cfg.sessionOpts...)
	sessionOpts = append(sessionOpts,
		session.WithLogger(cfg.logger),
		session.WithLifecycleHooks(domain.MergeHooks(cfg.hooks...)),
	)

	m := session.New(l, emitter, sessionOpts...)
	return &Station{
		loop:    l,
		machine: m,
		logger:  cfg.logger,
		info: Info{
			Cycle:       m.Cycle(),
			TaskStartAt: m.TaskStartAt(),
			Timing:      m.Timing(),
		},
	}
}

// Run drives the loop until ctx is done.
func (s *Station) Run(ctx context.Context) error {
	return s.loop.Run(ctx)
}

// Start begins a run over trials. See session.Machine.Start.
func (s *Station) Start(ctx context.Context, trials []domain.Trial) (bool, error) {
	var started bool
	err := s.loop.Do(ctx, func() {
		started = s.machine.Start(trials)
	})
	return started, err
}

// StartWithTiming replaces the phase durations and begins a run in one step.
// Session parameters prepared by the operator carry their own durations.
func (s *Station) StartWithTiming(ctx context.Context, trials []domain.Trial, timing session.Timing) (bool, error) {
	var started bool
	err := s.loop.Do(ctx, func() {
		if len(trials) == 0 || !s.machine.SetTiming(timing) {
			started = false
			return
		}
		started = s.machine.Start(trials)
	})
	return started, err
}

// Abort cancels the current run. See session.Machine.Abort.
func (s *Station) Abort(ctx context.Context) (bool, error) {
	var aborted bool
	err := s.loop.Do(ctx, func() {
		aborted = s.machine.Abort()
	})
	return aborted, err
}

// Snapshot returns the current session state.
func (s *Station) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.loop.Do(ctx, func() {
		snap = s.machine.Snapshot()
	})
	return snap, err
}

// Subscribe registers fn for every phase change. fn runs on the loop
// goroutine and must not block.
func (s *Station) Subscribe(ctx context.Context, fn func(domain.PhaseChanged)) (unsubscribe func(), err error) {
	var unsub func()
	if err := s.loop.Do(ctx, func() {
		unsub = s.machine.Subscribe(fn)
	}); err != nil {
		return nil, err
	}
	return func() {
		s.loop.Post(unsub)
	}, nil
}

// Info describes the static shape of the station's sessions.
type Info struct {
	Cycle       session.Cycle
	TaskStartAt session.Boundary
	Timing      session.Timing
}

// Info returns the cycle and the timing the station was built with.
func (s *Station) Info() Info {
	return s.info
}
