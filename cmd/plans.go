package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/dockflow/config"
	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/planlog"
	"github.com/kilianp07/dockflow/pkg/export"
)

var plansFlags struct {
	since   time.Duration
	station string
	status  string
	limit   int
	format  string
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Export logged plans as JSON or CSV",
	RunE:  exportPlans,
}

func init() {
	f := plansCmd.Flags()
	f.DurationVar(&plansFlags.since, "since", 0, "only plans logged within this duration")
	f.StringVar(&plansFlags.station, "station", "", "only plans touching this station")
	f.StringVar(&plansFlags.status, "status", "", "plan or no_plan")
	f.IntVar(&plansFlags.limit, "limit", 0, "maximum number of records")
	f.StringVar(&plansFlags.format, "format", "json", "json or csv")
	rootCmd.AddCommand(plansCmd)
}

func exportPlans(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(plansFlags.format)
	if err != nil {
		return err
	}
	q := planlog.Query{StationID: plansFlags.station, Status: model.PlanStatus(plansFlags.status), Limit: plansFlags.limit}
	switch q.Status {
	case "", model.StatusPlan, model.StatusNoPlan:
	default:
		return fmt.Errorf("invalid status %q", plansFlags.status)
	}
	if plansFlags.since > 0 {
		q.Start = time.Now().Add(-plansFlags.since)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := planlog.New(cfg.PlanLog)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	records, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), format, records)
}
