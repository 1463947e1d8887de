package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muesli/termenv"
)

// Loading draws a progress bar for d and returns when it is full or ctx is
// done. The subject sees it between the operator's start and the first
// fixation cross.
func Loading(ctx context.Context, w io.Writer, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	out := termenv.NewOutput(w)
	const width = 30
	start := time.Now()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	draw := func(progress float64) {
		filled := int(progress * width)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
		fmt.Fprintf(w, "\r%s %3.0f%%", out.String(bar).Foreground(out.Color("#3b82f6")), progress*100)
	}

	for {
		elapsed := time.Since(start)
		if elapsed >= d {
			draw(1)
			fmt.Fprintln(w)
			return nil
		}
		draw(float64(elapsed) / float64(d))

		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
