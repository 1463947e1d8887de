package main

import (
	"fmt"
	"strconv"

	"github.com/aretw0/cadence/internal/cli"
	"github.com/spf13/cobra"
)

var genOrderCmd = &cobra.Command{
	Use:   "gen-order ROWS MAX_TASK_ID",
	Short: "Generate a balanced random task order table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ROWS %q: %w", args[0], err)
		}
		maxID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid MAX_TASK_ID %q: %w", args[1], err)
		}
		out, _ := cmd.Flags().GetString("output")
		seed, _ := cmd.Flags().GetUint64("seed")

		if err := cli.GenerateOrder(cmd.OutOrStdout(), out, rows, maxID, seed); err != nil {
			return err
		}
		if out != "" {
			logger.Info("order table written", "path", out, "rows", rows)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(genOrderCmd)
	genOrderCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	genOrderCmd.Flags().Uint64("seed", 0, "Shuffle seed; 0 picks a random one")
}
