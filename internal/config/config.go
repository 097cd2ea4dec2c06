// Package config loads and stores tracker credentials for jiradates.
//
// Credentials come from the environment (optionally via a .env file) with a
// JSON config file as fallback, so CI jobs and local shells can both drive
// the tool. The loaded value is threaded through constructors and never
// mutated after startup.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// ErrNotConfigured means credentials are missing or incomplete. The tool
// refuses to contact the tracker in this state.
var ErrNotConfigured = errors.New("tracker credentials not configured")

// Environment variable names, matching the original tooling.
const (
	EnvURL   = "JIRA_URL"
	EnvEmail = "JIRA_EMAIL"
	EnvToken = "JIRA_API_TOKEN"
)

const configFileName = "config.json"

// Credentials holds the connection parameters for one tracker instance.
type Credentials struct {
	BaseURL  string `json:"url"`
	Email    string `json:"email"`
	APIToken string `json:"api_token"`
}

// Validate reports ErrNotConfigured when any field is empty.
func (c Credentials) Validate() error {
	if c.BaseURL == "" || c.Email == "" || c.APIToken == "" {
		return ErrNotConfigured
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("tracker URL must start with http:// or https://")
	}
	if !strings.Contains(c.Email, "@") {
		return fmt.Errorf("email %q is not a valid address", c.Email)
	}
	return nil
}

// Masked returns the API token shortened for display.
func (c Credentials) Masked() string {
	if len(c.APIToken) <= 4 {
		return "****"
	}
	return c.APIToken[:4] + strings.Repeat("*", 8)
}

// Dir returns the directory holding the config file.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "jiradates"), nil
}

// Load reads credentials from the environment first (a .env file in the
// working directory is honored), then fills gaps from the config file.
func Load() (Credentials, error) {
	// Best-effort: a missing .env file is fine.
	_ = godotenv.Load()

	creds := Credentials{
		BaseURL:  os.Getenv(EnvURL),
		Email:    os.Getenv(EnvEmail),
		APIToken: os.Getenv(EnvToken),
	}

	if creds.BaseURL != "" && creds.Email != "" && creds.APIToken != "" {
		creds.BaseURL = strings.TrimRight(creds.BaseURL, "/")
		return creds, nil
	}

	fileCreds, err := loadFile()
	if err == nil {
		if creds.BaseURL == "" {
			creds.BaseURL = fileCreds.BaseURL
		}
		if creds.Email == "" {
			creds.Email = fileCreds.Email
		}
		if creds.APIToken == "" {
			creds.APIToken = fileCreds.APIToken
		}
	}

	creds.BaseURL = strings.TrimRight(creds.BaseURL, "/")
	return creds, nil
}

// Save writes credentials to the config file with owner-only permissions.
func Save(creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	creds.BaseURL = strings.TrimRight(creds.BaseURL, "/")
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Clear removes the stored config file. Missing file is not an error.
func Clear() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, configFileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove config: %w", err)
	}
	return nil
}

func loadFile() (Credentials, error) {
	dir, err := Dir()
	if err != nil {
		return Credentials{}, err
	}
	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		return Credentials{}, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse config: %w", err)
	}
	return creds, nil
}
