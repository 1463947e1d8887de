package ports

import "time"

// CancelFunc cancels a scheduled callback. Calling it more than once is safe.
type CancelFunc func()

// Scheduler runs callbacks after a delay on the session's goroutine.
type Scheduler interface {
	// ScheduleOnce arranges for fn to run once after delay.
	// After the returned CancelFunc is called, fn never runs.
	ScheduleOnce(delay time.Duration, fn func()) CancelFunc
}
