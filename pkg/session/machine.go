package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/google/uuid"
)

// Machine is the session state machine.
// It is not safe for concurrent use: all methods and scheduler callbacks
// must run on the same goroutine.
type Machine struct {
	scheduler ports.Scheduler
	emitter   ports.Emitter

	timing   Timing
	cycle    Cycle
	boundary Boundary
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	rng      *rand.Rand
	newRunID func() string

	runID     string
	trials    []domain.Trial
	index     int
	phase     domain.Phase
	running   bool
	interval  time.Duration
	completed int

	cancel     ports.CancelFunc
	generation uint64

	subscribers map[int]func(domain.PhaseChanged)
	nextSub     int
}

// New creates an idle machine driven by scheduler that emits through emitter.
func New(scheduler ports.Scheduler, emitter ports.Emitter, opts ...Option) *Machine {
	m := &Machine{
		scheduler:   scheduler,
		emitter:     emitter,
		timing:      DefaultTiming(),
		cycle:       ThreePhase,
		boundary:    BoundaryExecute,
		logger:      logging.NewNop(),
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		newRunID:    uuid.NewString,
		index:       -1,
		phase:       domain.PhaseIdle,
		subscribers: make(map[int]func(domain.PhaseChanged)),
	}
	for _, opt := range opts {
		opt(m)
	}
	switch {
	case m.cycle == TwoPhase:
		m.boundary = BoundaryInstruction
	case m.boundary != BoundaryInstruction:
		m.cycle = ThreePhase
		m.boundary = BoundaryExecute
	default:
		m.cycle = ThreePhase
	}
	return m
}

// Cycle returns the configured phase sequence.
func (m *Machine) Cycle() Cycle { return m.cycle }

// TaskStartAt returns the transition that carries task_start.
func (m *Machine) TaskStartAt() Boundary { return m.boundary }

// Timing returns the configured durations.
func (m *Machine) Timing() Timing { return m.timing }

// SetTiming replaces the durations used from the next run on.
// It is refused while a run or its grace period is in progress.
func (m *Machine) SetTiming(t Timing) bool {
	if m.phase != domain.PhaseIdle {
		return false
	}
	m.timing = t.Normalize()
	return true
}

// Subscribe registers fn for every PhaseChanged event.
// fn runs on the machine's goroutine and must not block.
func (m *Machine) Subscribe(fn func(domain.PhaseChanged)) (unsubscribe func()) {
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	return func() {
		delete(m.subscribers, id)
	}
}

// Snapshot returns a copy of the observable session state.
func (m *Machine) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		RunID:           m.runID,
		Trials:          slices.Clone(m.trials),
		CurrentIndex:    m.index,
		Phase:           m.phase,
		Running:         m.running,
		CurrentInterval: m.interval,
		Completed:       m.completed,
	}
}

// Start begins a run over trials.
// It is a no-op returning false when trials is empty or a run is in progress
// (including the grace period after Ended).
func (m *Machine) Start(trials []domain.Trial) bool {
	if len(trials) == 0 {
		m.logger.Warn("start ignored: empty trial list")
		return false
	}
	if m.phase != domain.PhaseIdle {
		m.logger.Warn("start ignored: session not idle", "phase", m.phase)
		return false
	}

	m.runID = m.newRunID()
	m.trials = slices.Clone(trials)
	m.completed = 0

	m.emit(domain.TriggerExperimentStart, "", map[string]any{"totalTasks": len(m.trials)})

	m.running = true
	m.logger.Info("experiment started", "run_id", m.runID, "trials", len(m.trials), "cycle", m.cycle, "task_start_at", m.boundary)
	m.enterFixation(0)
	return true
}

// Abort cancels the run.
// In a running state it emits experiment_abort with the completed count and
// returns to Idle through Aborted. During the grace period after Ended it
// skips the remaining wait. When idle it does nothing and returns false.
func (m *Machine) Abort() bool {
	switch {
	case m.phase == domain.PhaseEnded:
		m.logger.Info("grace period skipped", "run_id", m.runID)
		m.finishGrace()
		return true
	case !m.running:
		return false
	}

	m.cancelTimer()
	completed := m.completed
	m.emit(domain.TriggerExperimentAbort, "", map[string]any{"completedTasks": completed})

	m.running = false
	m.logger.Info("experiment aborted", "run_id", m.runID, "completed", completed, "phase", m.phase)
	m.setPhase(domain.PhaseAborted, m.index, 0)
	m.toIdle()
	return true
}

func (m *Machine) enterFixation(i int) {
	d := m.timing.DrawFixation(m.rng)
	m.setPhase(domain.PhaseFixation, i, d)
	m.schedule(d, m.onFixationDone)
}

func (m *Machine) onFixationDone() {
	if m.boundary == BoundaryInstruction {
		m.emitTask(domain.TriggerTaskStart)
	}

	d := m.timing.Instruction
	if m.cycle == TwoPhase {
		d = m.timing.Execute
	}
	m.setPhase(domain.PhaseInstruction, m.index, d)

	if m.cycle == TwoPhase {
		m.schedule(d, m.onTrialDone)
		return
	}
	m.schedule(d, m.onInstructionDone)
}

func (m *Machine) onInstructionDone() {
	if m.boundary == BoundaryExecute {
		m.emitTask(domain.TriggerTaskStart)
	}
	m.setPhase(domain.PhaseExecute, m.index, m.timing.Execute)
	m.schedule(m.timing.Execute, m.onTrialDone)
}

func (m *Machine) onTrialDone() {
	m.emitTask(domain.TriggerTaskEnd)
	m.completed++

	if next := m.index + 1; next < len(m.trials) {
		m.enterFixation(next)
		return
	}

	m.emit(domain.TriggerExperimentEnd, "", map[string]any{"totalTasks": len(m.trials)})
	m.running = false
	m.logger.Info("experiment ended", "run_id", m.runID, "completed", m.completed)
	m.setPhase(domain.PhaseEnded, m.index, m.timing.Grace)
	m.schedule(m.timing.Grace, m.finishGrace)
}

func (m *Machine) finishGrace() {
	done := &domain.PhaseChanged{
		EventBase: m.eventBase(domain.EventComplete),
		Phase:     domain.PhaseIdle,
		Previous:  domain.PhaseEnded,
		Index:     -1,
		Completed: m.completed,
		Total:     len(m.trials),
	}
	m.toIdle()

	if m.hooks.OnComplete != nil {
		m.hooks.OnComplete(context.Background(), done)
	}
}

// toIdle publishes Idle and drops the trial list. Completed and Total on the
// Idle event describe the run that just finished.
func (m *Machine) toIdle() {
	m.cancelTimer()
	m.running = false
	m.setPhase(domain.PhaseIdle, -1, 0)
	m.trials = nil
}

// setPhase makes next the externally visible phase for trial index.
func (m *Machine) setPhase(next domain.Phase, index int, interval time.Duration) {
	prev := m.phase
	if m.hooks.OnPhaseLeave != nil {
		m.hooks.OnPhaseLeave(context.Background(), m.phaseEvent(domain.EventPhaseLeave, prev, prev))
	}

	m.phase = next
	m.index = index
	m.interval = interval

	ev := m.phaseEvent(domain.EventPhaseEnter, next, prev)
	m.logger.Debug("phase", "run_id", m.runID, "phase", next, "previous", prev, "index", m.index, "interval", interval)
	if m.hooks.OnPhaseEnter != nil {
		m.hooks.OnPhaseEnter(context.Background(), ev)
	}
	for _, id := range m.subscriberIDs() {
		if fn, ok := m.subscribers[id]; ok {
			fn(*ev)
		}
	}
}

func (m *Machine) phaseEvent(typ domain.EventType, phase, prev domain.Phase) *domain.PhaseChanged {
	ev := &domain.PhaseChanged{
		EventBase: m.eventBase(typ),
		Phase:     phase,
		Previous:  prev,
		Index:     m.index,
		Interval:  m.interval,
		Completed: m.completed,
		Total:     len(m.trials),
	}
	if phase.IsTrialPhase() && m.index >= 0 && m.index < len(m.trials) {
		t := m.trials[m.index]
		ev.Trial = &t
	}
	return ev
}

func (m *Machine) eventBase(typ domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: typ, RunID: m.runID}
}

func (m *Machine) subscriberIDs() []int {
	ids := make([]int, 0, len(m.subscribers))
	for id := range m.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m *Machine) emitTask(kind domain.TriggerKind) {
	t := m.trials[m.index]
	m.emit(kind, t.ID, map[string]any{
		"taskIndex":       m.index,
		"taskDescription": t.Description,
	})
}

// emit hands the trigger to the emitter. Delivery is never awaited and a
// misbehaving emitter cannot stop the transition.
func (m *Machine) emit(kind domain.TriggerKind, trialID string, info map[string]any) {
	outcome := func() (out domain.Outcome) {
		defer func() {
			if r := recover(); r != nil {
				out = domain.Outcome{
					Timestamp: time.Now(),
					Kind:      kind,
					TrialID:   trialID,
					Result:    domain.OutcomeFailed,
					Err:       fmt.Errorf("emitter panic: %v", r),
				}
			}
		}()
		return m.emitter.Emit(kind, trialID, info)
	}()

	if !outcome.OK() {
		m.logger.Warn("trigger not delivered", "run_id", m.runID, "kind", kind, "trial_id", trialID, "result", outcome.Result, "err", outcome.Err)
	}

	if m.hooks.OnTrigger != nil {
		m.hooks.OnTrigger(context.Background(), &domain.TriggerEvent{
			EventBase: m.eventBase(domain.EventTrigger),
			Kind:      kind,
			TrialID:   trialID,
			Code:      outcome.Code,
			Result:    outcome.Result,
			Context:   info,
		})
	}
}

// schedule replaces the pending timer with a new one.
func (m *Machine) schedule(d time.Duration, fn func()) {
	m.cancelTimer()
	gen := m.generation
	m.cancel = m.scheduler.ScheduleOnce(d, func() {
		if gen != m.generation {
			return
		}
		m.cancel = nil
		fn()
	})
}

func (m *Machine) cancelTimer() {
	m.generation++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// String summarizes the state for logs.
func (m *Machine) String() string {
	return fmt.Sprintf("session(phase=%s index=%d/%d running=%t)", m.phase, m.index, len(m.trials), m.running)
}
