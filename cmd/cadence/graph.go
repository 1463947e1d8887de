package main

import (
	"fmt"

	"github.com/aretw0/cadence/internal/presentation/graph"
	"github.com/aretw0/cadence/pkg/session"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the session cycle as a Mermaid diagram",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := graph.Cycle{
			Cycle:       session.Cycle(cfg.Session.Cycle),
			TaskStartAt: session.Boundary(cfg.Session.TaskStartAt),
			Timing:      cfg.Timing(),
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(c, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
