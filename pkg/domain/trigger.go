package domain

// TriggerKind is the semantic event encoded into a synchronization marker.
type TriggerKind string

const (
	TriggerExperimentStart TriggerKind = "experiment_start"
	TriggerExperimentEnd   TriggerKind = "experiment_end"
	TriggerExperimentAbort TriggerKind = "experiment_abort"
	TriggerTaskStart       TriggerKind = "task_start"
	TriggerTaskEnd         TriggerKind = "task_end"
)

// TriggerKinds lists every known kind in protocol order.
func TriggerKinds() []TriggerKind {
	return []TriggerKind{
		TriggerExperimentStart,
		TriggerExperimentEnd,
		TriggerExperimentAbort,
		TriggerTaskStart,
		TriggerTaskEnd,
	}
}

// Valid reports whether k is a known trigger kind.
func (k TriggerKind) Valid() bool {
	for _, known := range TriggerKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// PerTrial reports whether the kind is bound to a specific trial.
func (k TriggerKind) PerTrial() bool {
	return k == TriggerTaskStart || k == TriggerTaskEnd
}
