package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/dockflow/qa/scenarios"
)

var simulateCheck bool

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>...",
	Short: "Plan and simulate offline scenarios",
	Args:  cobra.MinimumNArgs(1),
	RunE:  simulate,
}

func init() {
	simulateCmd.Flags().BoolVar(&simulateCheck, "check", false, "fail when a result differs from the scenario expectations")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		sc, err := scenarios.Load(path)
		if err != nil {
			return err
		}
		res, err := scenarios.Run(sc)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), map[string]any{"scenario": sc.Name, "result": res}); err != nil {
			return err
		}
		if simulateCheck {
			if err := scenarios.Check(sc, res); err != nil {
				return err
			}
		}
	}
	return nil
}
