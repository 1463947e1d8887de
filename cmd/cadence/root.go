package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/cadence/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Cadence runs motor-imagery sessions and marks them on an EEG recorder",
	Long: `Cadence presents cued motor-imagery trials (fixation, instruction, execute)
and sends a trigger code to the recording apparatus at every session boundary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			loaded.LogLevel = level
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		logger = cfg.Logger(os.Stderr)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a cadence YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")
}
