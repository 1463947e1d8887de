package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the cadence banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{`                 _                     `, "#38bdf8"},
		{`  ___ __ _  __| | ___ _ __   ___ ___ `, "#22d3ee"},
		{` / __/ _' |/ _' |/ _ \ '_ \ / __/ _ \`, "#2dd4bf"},
		{`| (_| (_| | (_| |  __/ | | | (_|  __/`, "#34d399"},
		{` \___\__,_|\__,_|\___|_| |_|\___\___|`, "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
