package main

import (
	"github.com/spf13/cobra"

	"github.com/pmtools/jiradates/internal/display"
)

var checkLinksCmd = &cobra.Command{
	Use:   "check-links ISSUE1 ISSUE2",
	Short: "Check whether ISSUE1 references ISSUE2",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		found, err := eng.CheckLinks(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if !found && !quietFlag {
			display.Info("No links found")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkLinksCmd)
}
