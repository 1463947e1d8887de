package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/cadence"
	httpAdapter "github.com/aretw0/cadence/internal/adapters/http"
	"github.com/aretw0/cadence/pkg/ports"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// ServeOptions describes one `cadence serve` invocation.
type ServeOptions struct {
	Addr    string
	Station *cadence.Station
	Store   ports.ParamStore
	Metrics http.Handler
	Logger  *slog.Logger
}

// Serve runs the station loop and the operator API until ctx is done, then
// aborts any running session and shuts the server down.
func Serve(ctx context.Context, opts ServeOptions) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- opts.Station.Run(loopCtx)
	}()

	server := httpAdapter.NewServer(opts.Station, opts.Store,
		httpAdapter.WithLogger(opts.Logger),
		httpAdapter.WithMetricsHandler(opts.Metrics),
	)

	unsubscribe, err := opts.Station.Subscribe(ctx, server.Publish)
	if err != nil {
		return err
	}
	defer unsubscribe()

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(server.Streams.Close)

	serverErrors := make(chan error, 1)
	go func() {
		opts.Logger.Info("cadence server listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-loopErr:
		_ = srv.Close()
		return err
	case <-ctx.Done():
	}

	opts.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if aborted, err := opts.Station.Abort(shutdownCtx); err == nil && aborted {
		opts.Logger.Info("running session aborted on shutdown")
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		opts.Logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
		return srv.Close()
	}
	return nil
}
