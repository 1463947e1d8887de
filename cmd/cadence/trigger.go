package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/cadence/internal/cli"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/spf13/cobra"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger KIND [TRIAL_ID]",
	Short: "Send one trigger to the recorder",
	Long: fmt.Sprintf(`Sends a single marker through the configured codebook and reports whether
it was delivered. Useful to check the link to the recorder before a session.

Kinds: %s`, kindList()),
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := domain.TriggerKind(args[0])
		var trialID string
		if len(args) == 2 {
			trialID = args[1]
		}

		emitter, err := cli.OpenEmitter(cfg, logger, nil)
		if err != nil {
			return err
		}

		outcome, err := cli.SendTrigger(emitter, kind, trialID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s:%d code=%q result=%s\n",
			kind, cfg.Trigger.Host, cfg.Trigger.Port, outcome.Code, outcome.Result)
		return nil
	},
}

func kindList() string {
	kinds := domain.TriggerKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(triggerCmd)
}
