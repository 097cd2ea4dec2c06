package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmtools/jiradates/internal/config"
	"github.com/pmtools/jiradates/internal/display"
	"github.com/pmtools/jiradates/internal/jira"
)

var (
	configURL   string
	configEmail string
	configToken string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tracker credentials",
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store tracker URL, email, and API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds := config.Credentials{
			BaseURL:  configURL,
			Email:    configEmail,
			APIToken: configToken,
		}

		reader := bufio.NewReader(os.Stdin)
		if creds.BaseURL == "" {
			creds.BaseURL = promptLine(reader, "Tracker URL: ")
		}
		if creds.Email == "" {
			creds.Email = promptLine(reader, "Email: ")
		}
		if creds.APIToken == "" {
			creds.APIToken = promptLine(reader, "API token: ")
		}

		if err := config.Save(creds); err != nil {
			return err
		}
		if !quietFlag {
			dir, _ := config.Dir()
			display.SuccessMsg("Credentials saved to %s", dir)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored configuration (token masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := config.Load()
		if err != nil {
			return err
		}
		if err := creds.Validate(); err != nil {
			display.WarningMsg("Not configured: %v", err)
			return nil
		}
		fmt.Printf("URL:   %s\n", creds.BaseURL)
		fmt.Printf("Email: %s\n", creds.Email)
		fmt.Printf("Token: %s\n", creds.Masked())
		return nil
	},
}

var configTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify the stored credentials against the tracker",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := config.Load()
		if err != nil {
			return err
		}
		if err := creds.Validate(); err != nil {
			return err
		}

		client := jira.NewClient(creds.BaseURL, creds.Email, creds.APIToken)
		user, err := client.Myself(cmd.Context())
		if err != nil {
			display.ErrorMsg("Connection failed: %v", err)
			return fmt.Errorf("connection test failed")
		}
		display.SuccessMsg("Connected as %s", user.DisplayName)
		return nil
	},
}

var configClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Clear(); err != nil {
			return err
		}
		if !quietFlag {
			display.SuccessMsg("Credentials cleared")
		}
		return nil
	},
}

func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func init() {
	configSetCmd.Flags().StringVar(&configURL, "url", "", "Tracker base URL")
	configSetCmd.Flags().StringVar(&configEmail, "email", "", "Account email")
	configSetCmd.Flags().StringVar(&configToken, "token", "", "API token")

	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configClearCmd)
	rootCmd.AddCommand(configCmd)
}
