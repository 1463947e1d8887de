package domain

// Trial is one unit of task stimulus shown to the subject.
// Identity is ID, unique within a catalog.
type Trial struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
}

// SequenceEntry is one row of the task order table.
// Order need not be contiguous.
type SequenceEntry struct {
	Order  int    `json:"order" yaml:"order"`
	TaskID string `json:"task_id" yaml:"task_id"`
}
