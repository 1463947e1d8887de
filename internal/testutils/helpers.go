package testutils

import (
	"sort"
	"sync"
	"time"

	"github.com/aretw0/cadence/pkg/ports"
)

// ManualScheduler is a deterministic ports.Scheduler for tests.
// Time only moves when Advance or RunNext is called, and callbacks run on the
// caller's goroutine in due-time order (ties in scheduling order).
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	due       time.Duration
	seq       int
	delay     time.Duration
	fn        func()
	cancelled bool
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

var _ ports.Scheduler = (*ManualScheduler)(nil)

// ScheduleOnce registers fn to run once virtual time reaches now+delay.
func (s *ManualScheduler) ScheduleOnce(delay time.Duration, fn func()) ports.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	task := &manualTask{due: s.now + delay, seq: s.seq, delay: delay, fn: fn}
	s.tasks = append(s.tasks, task)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		task.cancelled = true
	}
}

// Now returns the current virtual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of live (not cancelled, not fired) callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// NextDelay returns the delay the next live callback was scheduled with.
func (s *ManualScheduler) NextDelay() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.next()
	if t == nil {
		return 0, false
	}
	return t.delay, true
}

// Advance moves virtual time forward by d, running every callback that falls due.
// Callbacks scheduled while advancing run too if they fall due within d.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		t := s.next()
		if t == nil || t.due > target {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.fire(t)
		s.mu.Unlock()
		t.fn()
	}
}

// RunNext jumps to the next live callback and runs it.
// It returns false when nothing is pending.
func (s *ManualScheduler) RunNext() bool {
	s.mu.Lock()
	t := s.next()
	if t == nil {
		s.mu.Unlock()
		return false
	}
	s.fire(t)
	s.mu.Unlock()
	t.fn()
	return true
}

// RunAll runs callbacks until none are pending or limit callbacks have run.
// It returns the number of callbacks run.
func (s *ManualScheduler) RunAll(limit int) int {
	n := 0
	for n < limit && s.RunNext() {
		n++
	}
	return n
}

// next returns the earliest live task. Caller holds mu.
func (s *ManualScheduler) next() *manualTask {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	s.tasks = live
	if len(s.tasks) == 0 {
		return nil
	}
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due != s.tasks[j].due {
			return s.tasks[i].due < s.tasks[j].due
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
	return s.tasks[0]
}

// fire removes t from the queue and moves time to its due point. Caller holds mu.
func (s *ManualScheduler) fire(t *manualTask) {
	if t.due > s.now {
		s.now = t.due
	}
	t.cancelled = true
	s.tasks = s.tasks[1:]
}
