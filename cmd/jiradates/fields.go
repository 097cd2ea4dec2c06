package main

import (
	"github.com/spf13/cobra"
)

var fieldsAll bool

var fieldsCmd = &cobra.Command{
	Use:   "fields ISSUE",
	Short: "Show the milestone dates set on an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		return eng.ListFields(cmd.Context(), args[0], fieldsAll)
	},
}

func init() {
	fieldsCmd.Flags().BoolVarP(&fieldsAll, "all", "a", false, "Include unset milestone fields")
	rootCmd.AddCommand(fieldsCmd)
}
