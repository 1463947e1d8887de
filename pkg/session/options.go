package session

import (
	"log/slog"
	"math/rand/v2"

	"github.com/aretw0/cadence/pkg/domain"
)

// Cycle selects the per-trial phase sequence.
type Cycle string

const (
	// ThreePhase shows fixation, instruction and an explicit execute cue.
	ThreePhase Cycle = "three-phase"
	// TwoPhase shows fixation and instruction only.
	TwoPhase Cycle = "two-phase"
)

// Boundary selects which transition carries the task_start trigger.
type Boundary string

const (
	// BoundaryExecute emits task_start on Instruction -> Execute.
	BoundaryExecute Boundary = "execute"
	// BoundaryInstruction emits task_start on Fixation -> Instruction.
	BoundaryInstruction Boundary = "instruction"
)

// Option configures the Machine.
type Option func(*Machine)

// WithTiming sets the phase durations.
func WithTiming(t Timing) Option {
	return func(m *Machine) {
		m.timing = t.Normalize()
	}
}

// WithCycle selects the phase sequence.
func WithCycle(c Cycle) Option {
	return func(m *Machine) {
		m.cycle = c
	}
}

// WithTaskStartAt selects the task_start boundary for the three-phase cycle.
// The two-phase cycle always uses BoundaryInstruction.
func WithTaskStartAt(b Boundary) Option {
	return func(m *Machine) {
		m.boundary = b
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithRand sets the source of fixation intervals.
func WithRand(rng *rand.Rand) Option {
	return func(m *Machine) {
		m.rng = rng
	}
}

// WithRunIDGenerator overrides how run ids are minted.
func WithRunIDGenerator(fn func() string) Option {
	return func(m *Machine) {
		m.newRunID = fn
	}
}
