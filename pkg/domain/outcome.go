package domain

import "time"

// OutcomeResult classifies a trigger attempt.
type OutcomeResult string

const (
	// OutcomeQueued means the marker was handed to the transport worker.
	OutcomeQueued OutcomeResult = "queued"
	// OutcomeSent means the transport accepted the datagram.
	OutcomeSent OutcomeResult = "sent"
	// OutcomeFailed means the transport reported an error.
	OutcomeFailed OutcomeResult = "failed"
	// OutcomeDropped means nothing was sent (no code under the drop policy, or a full queue).
	OutcomeDropped OutcomeResult = "dropped"
	// OutcomeRejected means the trigger kind is unknown.
	OutcomeRejected OutcomeResult = "rejected"
)

// Outcome is the non-fatal result of one trigger emission.
type Outcome struct {
	Timestamp time.Time     `json:"timestamp"`
	Kind      TriggerKind   `json:"kind"`
	TrialID   string        `json:"trial_id,omitempty"`
	Code      string        `json:"code,omitempty"`
	Result    OutcomeResult `json:"result"`
	Err       error         `json:"-"`
}

// OK reports whether the marker was (or is being) delivered.
func (o Outcome) OK() bool {
	return o.Result == OutcomeQueued || o.Result == OutcomeSent
}
