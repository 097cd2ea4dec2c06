package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmtools/jiradates/internal/display"
	"github.com/pmtools/jiradates/internal/fieldmap"
)

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Show the milestone date fields this tool synchronizes",
	Run: func(cmd *cobra.Command, args []string) {
		display.Header("Milestone Date Fields")

		fmt.Println("Available fields:")
		for _, name := range fieldmap.TrackedFields {
			fmt.Printf("  %s\n", name)
		}

		fmt.Println("\nUsage:")
		fmt.Println("  jiradates SOURCE TARGET           # Sync dates between issues")
		fmt.Println("  jiradates auto-sync IDEA          # Auto-discover linked ticket")
		fmt.Println("  jiradates bulk-sync PROJECT       # Bulk sync project ideas")
		fmt.Println("  jiradates fields ISSUE            # Show issue dates")

		fmt.Println("\nNotes:")
		fmt.Println("  - Automatically detects field formats (Jira vs JPD)")
		fmt.Println("  - Maps fields by name between projects")
		fmt.Println("  - Requires valid tracker authentication")
	},
}

func init() {
	rootCmd.AddCommand(mappingCmd)
}
