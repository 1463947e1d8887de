package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/internal/presentation/tui"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/params"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/session"
)

// ErrNeedsPrepare is returned by Run when no session parameters are stored.
var ErrNeedsPrepare = errors.New("no session parameters stored, run `cadence prepare` first")

// RunOptions describes one `cadence run` invocation.
type RunOptions struct {
	Station *cadence.Station
	Store   ports.ParamStore
	Timing  session.Timing
	Loading time.Duration
	Logger  *slog.Logger

	// Out receives the stimulus surface. Keys is watched for Escape when it
	// is a terminal; nil disables the keyboard.
	Out  io.Writer
	Keys *os.File
}

// Run loads the prepared trials, shows the loading screen and presents one
// full session on the terminal. It returns when the session ends, is aborted
// with Escape, or ctx is cancelled.
func Run(ctx context.Context, opts RunOptions) (cadence.Result, error) {
	p, err := params.Load(ctx, opts.Store, opts.Timing)
	if errors.Is(err, domain.ErrNoCatalog) {
		return cadence.Result{}, fmt.Errorf("%w: %v", ErrNeedsPrepare, err)
	}
	if err != nil {
		return cadence.Result{}, err
	}
	if len(p.Trials) == 0 {
		return cadence.Result{}, fmt.Errorf("%w: stored trial list is empty", ErrNeedsPrepare)
	}

	// The loop outlives ctx so a cancelled run still delivers its abort.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- opts.Station.Run(loopCtx)
	}()

	if opts.Loading > 0 {
		if err := tui.Loading(ctx, opts.Out, opts.Loading); err != nil {
			return cadence.Result{}, err
		}
	}

	surface := tui.NewSurface(opts.Out)
	defer surface.Close()

	unsubscribe, err := opts.Station.Subscribe(ctx, surface.Handle)
	if err != nil {
		return cadence.Result{}, err
	}
	defer unsubscribe()

	if opts.Keys != nil {
		restore, err := WatchAbortKeys(ctx, opts.Keys, func() {
			if _, err := opts.Station.Abort(ctx); err != nil {
				opts.Logger.Warn("abort failed", "err", err)
			}
		})
		if err != nil {
			opts.Logger.Debug("keyboard abort disabled", "err", err)
		}
		defer restore()
	}

	res, err := opts.Station.RunSessionWithTiming(ctx, p.Trials, p.Apply(opts.Timing))
	if errors.Is(err, cadence.ErrStopped) {
		if lerr := <-loopErr; lerr != nil {
			return res, lerr
		}
	}
	return res, err
}
