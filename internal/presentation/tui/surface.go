package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/muesli/termenv"
)

// Labels are the fixed texts shown by the surface.
type Labels struct {
	Fixation string
	Execute  string
	Ended    string
	Aborted  string
	Idle     string
}

// DefaultLabels returns the English texts.
func DefaultLabels() Labels {
	return Labels{
		Fixation: "+",
		Execute:  "EXECUTE",
		Ended:    "Session finished",
		Aborted:  "Session aborted",
		Idle:     "Waiting",
	}
}

// Surface draws one full-screen frame per phase change.
// It is purely reactive: it never reads the clock or the session.
type Surface struct {
	out    *termenv.Output
	width  int
	height int
	labels Labels
	mu     sync.Mutex
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithSize sets the frame dimensions in cells.
func WithSize(width, height int) SurfaceOption {
	return func(s *Surface) {
		if width > 0 {
			s.width = width
		}
		if height > 0 {
			s.height = height
		}
	}
}

// WithLabels overrides the fixed texts.
func WithLabels(l Labels) SurfaceOption {
	return func(s *Surface) {
		s.labels = l
	}
}

// NewSurface creates a surface writing to w.
func NewSurface(w io.Writer, opts ...SurfaceOption) *Surface {
	s := &Surface{
		out:    termenv.NewOutput(w),
		width:  80,
		height: 24,
		labels: DefaultLabels(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle redraws the screen for ev. It is meant to be passed to Subscribe.
func (s *Surface) Handle(ev domain.PhaseChanged) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, style := s.content(ev)
	s.out.ClearScreen()
	s.out.HideCursor()
	fmt.Fprint(s.out, s.layout(text, style))
}

// Close restores the cursor.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.ShowCursor()
}

// Frame returns the plain text drawn for ev, without escape sequences.
func (s *Surface) Frame(ev domain.PhaseChanged) string {
	text, _ := s.content(ev)
	return s.layout(text, nil)
}

func (s *Surface) content(ev domain.PhaseChanged) (string, func(string) termenv.Style) {
	bold := func(t string) termenv.Style { return s.out.String(t).Bold() }
	plain := func(t string) termenv.Style { return s.out.String(t) }

	switch ev.Phase {
	case domain.PhaseFixation:
		return s.labels.Fixation, bold
	case domain.PhaseInstruction:
		if ev.Trial != nil {
			return ev.Trial.Description, plain
		}
		return "", plain
	case domain.PhaseExecute:
		return s.labels.Execute, bold
	case domain.PhaseEnded:
		return fmt.Sprintf("%s (%d/%d)", s.labels.Ended, ev.Completed, ev.Total), plain
	case domain.PhaseAborted:
		return fmt.Sprintf("%s (%d/%d)", s.labels.Aborted, ev.Completed, ev.Total), func(t string) termenv.Style {
			return s.out.String(t).Foreground(s.out.Color("#ef4444"))
		}
	default:
		return s.labels.Idle, func(t string) termenv.Style { return s.out.String(t).Faint() }
	}
}

// layout centers text in the frame.
func (s *Surface) layout(text string, style func(string) termenv.Style) string {
	var b strings.Builder
	top := (s.height - 1) / 2
	b.WriteString(strings.Repeat("\n", top))

	pad := (s.width - utf8.RuneCountInString(text)) / 2
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	if style != nil {
		b.WriteString(style(text).String())
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n")
	return b.String()
}
