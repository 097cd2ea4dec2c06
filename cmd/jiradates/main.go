package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmtools/jiradates/internal/config"
	"github.com/pmtools/jiradates/internal/display"
	"github.com/pmtools/jiradates/internal/execlog"
	"github.com/pmtools/jiradates/internal/history"
	"github.com/pmtools/jiradates/internal/jira"
	"github.com/pmtools/jiradates/internal/syncer"
	"github.com/pmtools/jiradates/internal/types"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	quietFlag   bool
	verboseFlag bool
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "jiradates [SOURCE TARGET]",
	Short: "jiradates - Sync milestone dates between Jira issues and JPD ideas",
	Long: "Copy milestone date fields from one issue to another across schema\n" +
		"variants: plain Jira date fields and JPD JSON-interval string fields.",
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return cmd.Help()
		}
		return runSync(cmd.Context(), args[0], args[1], syncDryRun, syncForce)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jiradates version %s\n", Version)
	},
}

// newEngine loads credentials and builds a sync engine over a live gateway.
// Missing credentials abort before any remote call is attempted.
func newEngine() (*syncer.Engine, *jira.Client, error) {
	creds, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := creds.Validate(); err != nil {
		if errors.Is(err, config.ErrNotConfigured) {
			return nil, nil, fmt.Errorf("tracker credentials not configured, run 'jiradates config set' first")
		}
		return nil, nil, err
	}

	client := jira.NewClient(creds.BaseURL, creds.Email, creds.APIToken)
	client.SetSink(consoleSink())

	eng := syncer.New(client, consoleSink(), stdinConfirmer{})
	eng.Verbose = verboseFlag
	eng.BaseURL = creds.BaseURL
	return eng, client, nil
}

// consoleSink returns the progress sink for the current output mode.
func consoleSink() types.Sink {
	if quietFlag {
		return types.DiscardSink{}
	}
	return display.ConsoleSink{}
}

// stdinConfirmer asks for confirmation on the terminal.
type stdinConfirmer struct{}

func (stdinConfirmer) Confirm(prompt string) bool {
	fmt.Printf("\n%s", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "yes" || answer == "y"
}

// recordRun stores the operation in the history database. Best-effort:
// failures degrade to a warning.
func recordRun(record func(*history.DB) error) {
	path, err := history.DefaultPath()
	if err == nil {
		var db *history.DB
		if db, err = history.Open(path); err == nil {
			err = record(db)
			db.Close()
		}
	}
	if err != nil && !quietFlag {
		display.WarningMsg("Could not record run history: %v", err)
	}
}

// saveExecLog writes the execution summary file. Best-effort.
func saveExecLog(logger *execlog.Logger) {
	if err := logger.Save(); err != nil {
		if !quietFlag {
			display.WarningMsg("Could not save execution log: %v", err)
		}
		return
	}
	if !quietFlag {
		display.Info("Execution summary saved to: %s", logger.File)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show detailed output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")

	rootCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show what would be synced without making changes")
	rootCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "Skip confirmation prompts")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if ctx.Err() != nil {
		if !quietFlag {
			fmt.Fprintln(os.Stderr, "\nOperation cancelled")
		}
		os.Exit(130)
	}
	if err != nil {
		os.Exit(1)
	}
}
