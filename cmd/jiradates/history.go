package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pmtools/jiradates/internal/display"
	"github.com/pmtools/jiradates/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := history.DefaultPath()
		if err != nil {
			return err
		}
		db, err := history.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.Recent(historyLimit)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		if len(runs) == 0 {
			if !quietFlag {
				fmt.Println("No recorded runs yet.")
			}
			return nil
		}

		headers := []string{"When", "Operation", "Scope", "Mode", "Outcome", "OK", "Skip", "No link", "Fail"}
		rows := make([][]string, 0, len(runs))
		for _, run := range runs {
			scope := run.Project
			if scope == "" {
				scope = run.Source + " → " + run.Target
			}
			mode := "live"
			if run.DryRun {
				mode = "dry-run"
			}
			rows = append(rows, []string{
				run.StartedAt, run.Operation, scope, mode, run.Outcome,
				fmt.Sprintf("%d", run.Successful),
				fmt.Sprintf("%d", run.Skipped),
				fmt.Sprintf("%d", run.NoLinks),
				fmt.Sprintf("%d", run.Failed),
			})
		}
		fmt.Println(display.Table("Recent runs", headers, rows))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
