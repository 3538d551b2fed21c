package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/dockflow/app"
)

var ingestPlan bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch the feeds once and store the derived bins",
	RunE:  ingestOnce,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestPlan, "plan", false, "run a planning cycle after ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func ingestOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return withService(ctx, func(svc *app.Service) error {
		snap, err := svc.Poller.PollOnce(ctx)
		if err != nil {
			return err
		}
		res, err := svc.Ingester.Ingest(ctx, snap)
		if err != nil {
			return err
		}
		out := map[string]any{"ingest": res}
		if ingestPlan {
			o, err := svc.Planner.Cycle(ctx)
			if err != nil {
				return err
			}
			out["outcome"] = o
		}
		return printJSON(cmd.OutOrStdout(), out)
	})
}
