package domain

import "time"

// Snapshot represents the observable state of a session.
type Snapshot struct {
	// RunID identifies the current (or last) run. Empty before the first start.
	RunID string `json:"run_id,omitempty"`

	// Trials is the ordered trial list being played.
	Trials []Trial `json:"trials"`

	// CurrentIndex is the active trial, -1 when idle.
	CurrentIndex int `json:"current_index"`

	Phase   Phase `json:"phase"`
	Running bool  `json:"running"`

	// CurrentInterval is the duration drawn for the current phase instance.
	CurrentInterval time.Duration `json:"current_interval"`

	// Completed counts trials whose task_end has been emitted in the current
	// or last run.
	Completed int `json:"completed"`
}

// NewIdleSnapshot returns the snapshot of a session that never started.
func NewIdleSnapshot() Snapshot {
	return Snapshot{
		CurrentIndex: -1,
		Phase:        PhaseIdle,
	}
}

// CurrentTrial returns the active trial, if any.
func (s Snapshot) CurrentTrial() (Trial, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Trials) {
		return Trial{}, false
	}
	return s.Trials[s.CurrentIndex], true
}
