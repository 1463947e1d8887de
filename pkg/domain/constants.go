package domain

// Session parameter keys shared between the setup step and the session surface.
const (
	KeyOrderedTasks        = "orderedTasks"
	KeyFixationDurationMin = "fixationDurationMin"
	KeyFixationDurationMax = "fixationDurationMax"
	KeyTaskDuration        = "taskDuration"
)

// ParamKeys lists every session parameter key.
func ParamKeys() []string {
	return []string{
		KeyOrderedTasks,
		KeyFixationDurationMin,
		KeyFixationDurationMax,
		KeyTaskDuration,
	}
}
