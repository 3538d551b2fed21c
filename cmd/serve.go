package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/dockflow/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the feeds, plan every cycle and serve the API",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return withService(ctx, func(svc *app.Service) error {
		return svc.Run(ctx)
	})
}
