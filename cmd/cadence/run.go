package main

import (
	"fmt"
	"os"

	"github.com/aretw0/cadence/internal/cli"
	"github.com/aretw0/cadence/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Present a prepared session on this terminal",
	Long: `Shows the loading screen, then the fixation cross, the task instruction and
the execute cue for every prepared trial while sending triggers to the
recorder. Press Escape to abort.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		noKeys, _ := cmd.Flags().GetBool("no-keyboard")

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		store, closeStore, err := cli.OpenStore(sc, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		emitter, err := cli.OpenEmitter(cfg, logger, nil)
		if err != nil {
			return err
		}
		defer emitter.Close()

		station := cli.NewStation(cfg, emitter, logger, nil)

		out := cmd.OutOrStdout()
		tui.PrintBanner(out)

		opts := cli.RunOptions{
			Station: station,
			Store:   store,
			Timing:  cfg.Timing(),
			Loading: cfg.Session.Loading,
			Logger:  logger,
			Out:     out,
		}
		if !noKeys {
			opts.Keys = os.Stdin
		}

		res, err := cli.Run(sc, opts)
		if sig := sc.Signal(); sig != nil {
			fmt.Fprintf(out, "\nSession interrupted by %v (%d/%d tasks)\n", sig, res.Completed, res.Total)
			return nil
		}
		if err != nil {
			return err
		}

		status := "finished"
		if res.Aborted {
			status = "aborted"
		}
		fmt.Fprintf(out, "\nSession %s: %d/%d tasks (run %s)\n", status, res.Completed, res.Total, res.RunID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("no-keyboard", false, "Do not put stdin in raw mode; abort with Ctrl+C only")
}
