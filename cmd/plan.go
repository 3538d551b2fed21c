package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/dockflow/app"
)

var planCommit bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan against the stored state and print the outcome",
	Long:  "Plan against the stored state. Without --commit the plan is neither logged nor published.",
	RunE:  planOnce,
}

func init() {
	planCmd.Flags().BoolVar(&planCommit, "commit", false, "log and publish the plan")
	rootCmd.AddCommand(planCmd)
}

func planOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return withService(ctx, func(svc *app.Service) error {
		var (
			out app.Outcome
			err error
		)
		if planCommit {
			out, err = svc.Planner.Cycle(ctx)
		} else {
			out, err = svc.Planner.Propose(ctx)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	})
}
