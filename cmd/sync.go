package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"region-sync/core/reconcile"
	"region-sync/core/region"
	"region-sync/core/stats"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunSync bool
	jsonSync   bool
)

// syncCmd runs a single reconciliation pass from the command line.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass across every region",
	Long: `Reads every region, resolves each record by last write wins and writes
the winning version into stale or missing regions.

Examples:
  # Show what would be written, change nothing
  sync --dry-run

  # Run and print the outcome as JSON
  sync --json`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Plan only (no writes, no stats)")
	syncCmd.Flags().BoolVar(&jsonSync, "json", false, "Print the plan or outcome as JSON")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	replicas := region.Open(cfg.Regions, l)
	defer region.Close(replicas)

	engine := reconcile.New(replicas, stats.NewCollector(region.Labels), l, cfg.Sync.Options()...)

	if dryRunSync {
		l.Info("Planning reconciliation...")
		plan := engine.Plan(ctx)
		if jsonSync {
			return printJSON(plan)
		}
		printPlan(l, plan)
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	out := engine.RunOnce(ctx)
	if jsonSync {
		if err := printJSON(out); err != nil {
			return err
		}
	}
	if !out.Success {
		return out.Err
	}
	return nil
}

// printPlan logs a plan summary and a sample of its actions.
func printPlan(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Reconciliation plan",
		zap.Int("total_records", s.TotalRecords),
		zap.Int("propagations", s.Propagations),
		zap.Int("missing", s.Missing),
		zap.Int("stale", s.Stale),
		zap.Int("tombstones", s.Tombstones),
		zap.Any("by_region", s.ByRegion),
	)

	for label, msg := range plan.Unreachable {
		l.Warn("Region unreachable; excluded from plan", zap.String("region", label), zap.String("error", msg))
	}

	maxShow := min(5, len(plan.Actions))
	for _, a := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("id", a.ID.String()),
			zap.String("source", a.Source),
			zap.String("target", a.Target),
			zap.String("reason", string(a.Reason)),
			zap.Bool("deleted", a.Record.Deleted),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
