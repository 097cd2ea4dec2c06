package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pmtools/jiradates/internal/display"
	"github.com/pmtools/jiradates/internal/execlog"
	"github.com/pmtools/jiradates/internal/history"
	"github.com/pmtools/jiradates/internal/syncer"
	"github.com/pmtools/jiradates/internal/types"
)

var (
	syncDryRun bool
	syncForce  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync SOURCE TARGET",
	Short: "Copy milestone dates from one issue to another",
	Long: "Sync the populated milestone date fields from SOURCE to TARGET,\n" +
		"translating between plain date fields and JPD interval strings as needed.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), args[0], args[1], syncDryRun, syncForce)
	},
}

func runSync(ctx context.Context, sourceKey, targetKey string, dryRun, force bool) error {
	eng, _, err := newEngine()
	if err != nil {
		return err
	}

	logger := execlog.New()
	logger.SetOperation("sync", map[string]string{
		"source":  sourceKey,
		"target":  targetKey,
		"dry_run": fmt.Sprintf("%t", dryRun),
	})
	eng.SetSink(types.TeeSink{Sinks: []types.Sink{consoleSink(), logger.Sink()}})

	result, err := eng.Sync(ctx, sourceKey, targetKey, syncer.Options{DryRun: dryRun, Force: force})
	if err != nil {
		return err
	}

	logger.SetResult("status", string(result.Outcome))
	logger.SetResult("fields_copied", fmt.Sprintf("%d", result.Updated()))
	saveExecLog(logger)
	recordRun(func(db *history.DB) error {
		return db.RecordSync(result, "sync")
	})

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	switch {
	case result.Outcome == types.OutcomeFailed && !dryRun:
		display.ErrorMsg("Sync failed")
		return fmt.Errorf("sync failed")
	case result.Outcome == types.OutcomeSuccess && !quietFlag:
		if dryRun {
			display.SuccessMsg("Dry run completed")
		} else {
			display.SuccessMsg("Sync completed")
		}
	}
	return nil
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show what would be synced without making changes")
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "Skip confirmation prompts")
	rootCmd.AddCommand(syncCmd)
}
