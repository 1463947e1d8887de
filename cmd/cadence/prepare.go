package main

import (
	"github.com/aretw0/cadence/internal/cli"
	"github.com/spf13/cobra"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Load the task tables and store the session parameters",
	Long: `Parses the task definition and task order tables, merges them into the
ordered trial list and stores it with the configured durations. A later
'cadence run' or 'POST /session/start' uses what was stored here.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, _ := cmd.Flags().GetString("definitions")
		order, _ := cmd.Flags().GetString("order")
		quiet, _ := cmd.Flags().GetBool("quiet")

		store, closeStore, err := cli.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		opts := cli.PrepareOptions{
			DefinitionsPath: defs,
			OrderPath:       order,
			Timing:          cfg.Timing(),
			Store:           store,
			Logger:          logger,
		}
		if !quiet {
			opts.Out = cmd.OutOrStdout()
		}
		_, err = cli.Prepare(cmd.Context(), opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	prepareCmd.Flags().StringP("definitions", "d", "tasks.csv", "Task definition table (id,description)")
	prepareCmd.Flags().StringP("order", "o", "order.csv", "Task order table (order,task_id)")
	prepareCmd.Flags().BoolP("quiet", "q", false, "Do not print the trial preview")
}
