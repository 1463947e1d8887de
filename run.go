package cadence

import (
	"context"
	"errors"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/loop"
	"github.com/aretw0/cadence/pkg/session"
)

var (
	// ErrNotStarted is returned by RunSession when the machine refused the run.
	ErrNotStarted = errors.New("session not started")

	// ErrStopped is returned when the station's loop is no longer running.
	ErrStopped = loop.ErrStopped
)

// Result summarizes one finished run.
type Result struct {
	RunID     string
	Completed int
	Total     int
	Aborted   bool
}

// RunSession starts a run and blocks until the machine is idle again.
// Cancelling ctx aborts the run; the abort is still delivered and the
// partial Result is returned together with ctx.Err().
func (s *Station) RunSession(ctx context.Context, trials []domain.Trial) (Result, error) {
	return s.runSession(ctx, trials, func() (bool, error) {
		return s.Start(ctx, trials)
	})
}

// RunSessionWithTiming is RunSession with the durations replaced first.
func (s *Station) RunSessionWithTiming(ctx context.Context, trials []domain.Trial, timing session.Timing) (Result, error) {
	return s.runSession(ctx, trials, func() (bool, error) {
		return s.StartWithTiming(ctx, trials, timing)
	})
}

func (s *Station) runSession(ctx context.Context, trials []domain.Trial, start func() (bool, error)) (Result, error) {
	if len(trials) == 0 {
		return Result{}, ErrNotStarted
	}

	var res Result
	done := make(chan struct{})
	unsubscribe, err := s.Subscribe(ctx, func(ev domain.PhaseChanged) {
		switch ev.Phase {
		case domain.PhaseAborted:
			res.Aborted = true
		case domain.PhaseIdle:
			if ev.Previous == domain.PhaseIdle {
				return
			}
			res.RunID = ev.RunID
			res.Completed = ev.Completed
			res.Total = ev.Total
			select {
			case <-done:
			default:
				close(done)
			}
		}
	})
	if err != nil {
		return Result{}, err
	}
	defer unsubscribe()

	started, err := start()
	if err != nil {
		return Result{}, err
	}
	if !started {
		return Result{}, ErrNotStarted
	}

	select {
	case <-done:
		return res, nil
	case <-s.loop.Done():
		return res, ErrStopped
	case <-ctx.Done():
	}

	s.logger.Info("session interrupted, aborting")
	// The loop may still be alive even though the caller's ctx is gone.
	if _, err := s.Abort(context.Background()); err != nil {
		return res, errors.Join(ctx.Err(), err)
	}
	select {
	case <-done:
	case <-s.loop.Done():
	}
	return res, ctx.Err()
}
