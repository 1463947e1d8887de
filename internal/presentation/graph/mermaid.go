package graph

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/session"
)

// Cycle describes the machine to draw.
type Cycle struct {
	Cycle       session.Cycle
	TaskStartAt session.Boundary
	Timing      session.Timing
}

// Overlay contains live session data to highlight on the graph.
type Overlay struct {
	Visited []domain.Phase
	Current domain.Phase
}

type edge struct {
	from, to domain.Phase
	label    string
	dotted   bool
}

// GenerateMermaid produces a Mermaid flowchart of the session phases.
// Edges carry the event that fires them and the trigger they emit.
// Shapes:
// - Idle: ((Circle))
// - Terminal (Ended/Aborted): ([Stadium])
// - Trial phases: [Rectangle] annotated with their duration
func GenerateMermaid(c Cycle, overlay *Overlay) string {
	switch {
	case c.Cycle == session.TwoPhase:
		c.TaskStartAt = session.BoundaryInstruction
	case c.TaskStartAt != session.BoundaryInstruction:
		c.Cycle = session.ThreePhase
		c.TaskStartAt = session.BoundaryExecute
	default:
		c.Cycle = session.ThreePhase
	}
	t := c.Timing

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	writeNode(&sb, domain.PhaseIdle, "((", "))", "")
	writeNode(&sb, domain.PhaseFixation, "[", "]", fmt.Sprintf("%s..%s", ms(t.FixationMin), ms(t.FixationMax)))
	if c.Cycle == session.TwoPhase {
		writeNode(&sb, domain.PhaseInstruction, "[", "]", ms(t.Execute))
	} else {
		writeNode(&sb, domain.PhaseInstruction, "[", "]", ms(t.Instruction))
		writeNode(&sb, domain.PhaseExecute, "[", "]", ms(t.Execute))
	}
	writeNode(&sb, domain.PhaseEnded, "([", "])", ms(t.Grace))
	writeNode(&sb, domain.PhaseAborted, "([", "])", "")

	for _, e := range edges(c) {
		arrow := fmt.Sprintf("-- \"%s\" -->", e.label)
		if e.label == "" {
			arrow = "-->"
		}
		if e.dotted {
			arrow = fmt.Sprintf("-. \"%s\" .->", e.label)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", e.from, arrow, e.to)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.Phase]bool)
		for _, p := range overlay.Visited {
			if !seen[p] && p.Valid() {
				seen[p] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", p)
			}
		}
		if overlay.Current.Valid() {
			fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
		}
	}

	return sb.String()
}

func edges(c Cycle) []edge {
	taskStart := string(domain.TriggerTaskStart)
	last := domain.PhaseExecute
	if c.Cycle == session.TwoPhase {
		last = domain.PhaseInstruction
	}

	out := []edge{
		{from: domain.PhaseIdle, to: domain.PhaseFixation, label: "start / " + string(domain.TriggerExperimentStart)},
	}
	if c.TaskStartAt == session.BoundaryInstruction {
		out = append(out, edge{from: domain.PhaseFixation, to: domain.PhaseInstruction, label: "timeout / " + taskStart})
	} else {
		out = append(out, edge{from: domain.PhaseFixation, to: domain.PhaseInstruction, label: "timeout"})
	}
	if c.Cycle == session.ThreePhase {
		label := "timeout"
		if c.TaskStartAt == session.BoundaryExecute {
			label = "timeout / " + taskStart
		}
		out = append(out, edge{from: domain.PhaseInstruction, to: domain.PhaseExecute, label: label})
	}

	out = append(out,
		edge{from: last, to: domain.PhaseFixation, label: "next / " + string(domain.TriggerTaskEnd)},
		edge{from: last, to: domain.PhaseEnded, label: "last / " + string(domain.TriggerTaskEnd) + ", " + string(domain.TriggerExperimentEnd)},
		edge{from: domain.PhaseEnded, to: domain.PhaseIdle, label: "grace"},
	)

	running := []domain.Phase{domain.PhaseFixation, domain.PhaseInstruction}
	if c.Cycle == session.ThreePhase {
		running = append(running, domain.PhaseExecute)
	}
	for _, p := range running {
		out = append(out, edge{from: p, to: domain.PhaseAborted, label: "abort / " + string(domain.TriggerExperimentAbort), dotted: true})
	}
	out = append(out, edge{from: domain.PhaseAborted, to: domain.PhaseIdle})
	return out
}

func writeNode(sb *strings.Builder, p domain.Phase, opener, closer, note string) {
	label := string(p)
	if note != "" {
		label = fmt.Sprintf("%s <br/> ⏱️ %s", p, note)
	}
	fmt.Fprintf(sb, "    %s%s\"%s\"%s\n", p, opener, label, closer)
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
