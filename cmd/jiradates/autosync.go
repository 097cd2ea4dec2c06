package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pmtools/jiradates/internal/display"
	"github.com/pmtools/jiradates/internal/execlog"
	"github.com/pmtools/jiradates/internal/history"
	"github.com/pmtools/jiradates/internal/types"
)

var autoSyncForce bool

var autoSyncCmd = &cobra.Command{
	Use:   "auto-sync IDEA",
	Short: "Discover the linked engineering ticket and sync its dates to IDEA",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ideaKey := args[0]

		eng, _, err := newEngine()
		if err != nil {
			return err
		}

		logger := execlog.New()
		logger.SetOperation("auto-sync", map[string]string{"jpd_idea": ideaKey})
		eng.SetSink(types.TeeSink{Sinks: []types.Sink{consoleSink(), logger.Sink()}})

		result, err := eng.AutoSync(cmd.Context(), ideaKey, autoSyncForce)
		if err != nil {
			return err
		}

		logger.SetResult("status", string(result.Outcome))
		saveExecLog(logger)
		recordRun(func(db *history.DB) error {
			return db.RecordSync(result, "auto-sync")
		})

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		if result.Outcome != types.OutcomeSuccess {
			display.ErrorMsg("Auto-sync failed")
			return fmt.Errorf("auto-sync failed")
		}
		if !quietFlag {
			display.SuccessMsg("Auto-sync completed")
		}
		return nil
	},
}

func init() {
	autoSyncCmd.Flags().BoolVarP(&autoSyncForce, "force", "f", false, "Skip confirmation prompts")
	rootCmd.AddCommand(autoSyncCmd)
}
