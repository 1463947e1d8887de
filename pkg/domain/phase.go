package domain

// Phase is one stage of the session cycle.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseFixation    Phase = "fixation"
	PhaseInstruction Phase = "instruction"
	PhaseExecute     Phase = "execute"
	PhaseEnded       Phase = "ended"
	PhaseAborted     Phase = "aborted"
)

// IsTrialPhase reports whether the phase belongs to a trial's display cycle.
func (p Phase) IsTrialPhase() bool {
	switch p {
	case PhaseFixation, PhaseInstruction, PhaseExecute:
		return true
	}
	return false
}

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseIdle, PhaseFixation, PhaseInstruction, PhaseExecute, PhaseEnded, PhaseAborted:
		return true
	}
	return false
}

func (p Phase) String() string {
	return string(p)
}
