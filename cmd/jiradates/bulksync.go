package main

import (
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
	bulkDryRun bool
	bulkForce  bool
)

var bulkSyncCmd = &cobra.Command{
	Use:   "bulk-sync PROJECT",
	Short: "Sync dates for every idea in a JPD project",
	Long: "Discover all ideas in PROJECT, find each one's linked engineering\n" +
		"ticket, and sync milestone dates idea by idea. One item's failure never\n" +
		"aborts the batch.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectKey := args[0]

		if !bulkDryRun {
			if !quietFlag {
				display.WarningMsg("This will process all ideas in the project")
			}
			if bulkForce {
				if !quietFlag {
					display.Info("Proceeding with --force flag")
				}
			} else {
				if quietFlag {
					return fmt.Errorf("bulk sync requires --force in quiet mode")
				}
				if !(stdinConfirmer{}).Confirm("Continue? (y/N): ") {
					display.Info("Cancelled")
					return nil
				}
			}
		} else if !quietFlag {
			display.Info("Dry run mode: showing what would be changed")
		}

		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		if !quietFlag && !verboseFlag {
			eng.Progress = display.Progress
		}

		logger := execlog.New()
		logger.SetOperation("bulk-sync", map[string]string{
			"project": projectKey,
			"dry_run": fmt.Sprintf("%t", bulkDryRun),
		})
		eng.SetSink(types.TeeSink{Sinks: []types.Sink{consoleSink(), logger.Sink()}})

		result, err := eng.BulkSync(cmd.Context(), projectKey, syncer.Options{DryRun: bulkDryRun, Force: bulkForce})
		if err != nil {
			return err
		}

		logger.SetResult("successful", fmt.Sprintf("%d", result.Successful))
		logger.SetResult("skipped", fmt.Sprintf("%d", result.Skipped))
		logger.SetResult("no_links", fmt.Sprintf("%d", result.NoLinks))
		logger.SetResult("failed", fmt.Sprintf("%d", result.Failed))
		saveExecLog(logger)
		recordRun(func(db *history.DB) error {
			return db.RecordBulk(result)
		})

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		if quietFlag {
			if result.Successful > 0 {
				fmt.Printf("%s: %d\n", bulkVerb(result.DryRun), result.Successful)
			}
			if result.Failed > 0 && !result.DryRun {
				fmt.Printf("Failed: %d\n", result.Failed)
			}
			return nil
		}

		showDetails := verboseFlag ||
			(result.Failed > 0 && !result.DryRun) ||
			(result.DryRun && result.Processed+result.NoLinks > 0)
		if showDetails {
			fmt.Println(detailTable(result))
		}
		if !result.Succeeded() && !result.DryRun {
			display.WarningMsg("Bulk sync completed with issues")
		}
		return nil
	},
}

func bulkVerb(dryRun bool) string {
	if dryRun {
		return "Would sync"
	}
	return "Synced"
}

// detailTable renders the per-idea results table.
func detailTable(result *types.BulkResult) string {
	headers := []string{"Idea", "Status", "Engineering Ticket", "Result"}
	rows := make([][]string, 0, len(result.Details))

	for _, d := range result.Details {
		symbol, outcome, linked := "!", "", d.Linked
		switch d.Status {
		case types.BulkSuccess:
			symbol = "+"
			outcome = bulkVerb(result.DryRun)
		case types.BulkSkipped:
			outcome = skipVerb(result.DryRun)
		case types.BulkNoLink:
			outcome = "No linked ticket"
			linked = "-"
		case types.BulkFailed:
			symbol = "x"
			outcome = "Failed"
		}
		if linked == "" {
			linked = "-"
		}
		rows = append(rows, []string{d.Idea, symbol, linked, outcome})
	}
	return display.Table("", headers, rows)
}

func skipVerb(dryRun bool) string {
	if dryRun {
		return "Would skip"
	}
	return "Skipped"
}

func init() {
	bulkSyncCmd.Flags().BoolVar(&bulkDryRun, "dry-run", false, "Preview changes without applying")
	bulkSyncCmd.Flags().BoolVarP(&bulkForce, "force", "f", false, "Skip confirmation prompts")
	rootCmd.AddCommand(bulkSyncCmd)
}
