package session

import (
	"math/rand/v2"
	"time"
)

// Timing holds the phase durations of a deployment.
type Timing struct {
	FixationMin time.Duration `yaml:"fixation_min" mapstructure:"fixation_min"`
	FixationMax time.Duration `yaml:"fixation_max" mapstructure:"fixation_max"`

	// Instruction is the instruction display time in the three-phase cycle.
	Instruction time.Duration `yaml:"instruction" mapstructure:"instruction"`

	// Execute is the task period: the execute cue in the three-phase cycle,
	// the instruction display in the two-phase cycle.
	Execute time.Duration `yaml:"execute" mapstructure:"execute"`

	// Grace is the wait between Ended and Idle.
	Grace time.Duration `yaml:"grace" mapstructure:"grace"`
}

// DefaultTiming returns the reference deployment durations.
func DefaultTiming() Timing {
	return Timing{
		FixationMin: 4100 * time.Millisecond,
		FixationMax: 4800 * time.Millisecond,
		Instruction: 2000 * time.Millisecond,
		Execute:     3000 * time.Millisecond,
		Grace:       2000 * time.Millisecond,
	}
}

// Normalize swaps reversed fixation bounds and clamps negative durations to zero.
func (t Timing) Normalize() Timing {
	clamp := func(d time.Duration) time.Duration {
		if d < 0 {
			return 0
		}
		return d
	}
	t.FixationMin = clamp(t.FixationMin)
	t.FixationMax = clamp(t.FixationMax)
	t.Instruction = clamp(t.Instruction)
	t.Execute = clamp(t.Execute)
	t.Grace = clamp(t.Grace)
	if t.FixationMin > t.FixationMax {
		t.FixationMin, t.FixationMax = t.FixationMax, t.FixationMin
	}
	return t
}

// DrawFixation returns a whole-millisecond interval drawn uniformly from
// [FixationMin, FixationMax], both ends included.
func (t Timing) DrawFixation(rng *rand.Rand) time.Duration {
	t = t.Normalize()
	lo := t.FixationMin.Milliseconds()
	hi := t.FixationMax.Milliseconds()
	return time.Duration(lo+rng.Int64N(hi-lo+1)) * time.Millisecond
}
