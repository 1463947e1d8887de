package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/cadence/internal/presentation/tui"
	"github.com/aretw0/cadence/pkg/catalog"
	"github.com/aretw0/cadence/pkg/params"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/session"
)

// PrepareOptions describes one `cadence prepare` invocation.
type PrepareOptions struct {
	DefinitionsPath string
	OrderPath       string
	Timing          session.Timing
	Store           ports.ParamStore
	Logger          *slog.Logger
	Out             io.Writer
}

// Prepare parses both tables, stores the ordered trials with the configured
// durations and prints a preview.
func Prepare(ctx context.Context, opts PrepareOptions) (params.Params, error) {
	cat, err := catalog.Load(opts.DefinitionsPath, opts.OrderPath, catalog.WithLogger(opts.Logger))
	if err != nil {
		return params.Params{}, err
	}
	if len(cat.Trials) == 0 {
		return params.Params{}, fmt.Errorf("no trials resolved from %s and %s", opts.DefinitionsPath, opts.OrderPath)
	}

	p := params.FromTiming(cat.Trials, opts.Timing)
	if err := params.Save(ctx, opts.Store, p); err != nil {
		return params.Params{}, fmt.Errorf("failed to save session parameters: %w", err)
	}
	opts.Logger.Info("session parameters saved", "trials", len(p.Trials), "dropped", cat.Dropped())

	if opts.Out != nil {
		render := tui.NewRenderer()
		md := tui.PreviewMarkdown(p.Trials, cat.Dropped())
		out, err := render(md)
		if err != nil {
			out = md
		}
		fmt.Fprint(opts.Out, out)
	}
	return p, nil
}
