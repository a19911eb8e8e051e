// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags or environment variables.
type Config struct {
	// Credentials
	APIKey           string `json:"api_key,omitempty"`             // Gemini API key
	GitHubToken      string `json:"github_token,omitempty"`        // Personal access token
	GitHubAppID      string `json:"github_app_id,omitempty"`       // GitHub App id
	GitHubAppKeyPath string `json:"github_app_key_path,omitempty"` // Path to the App private key PEM

	// Targets
	Platform  string `json:"platform,omitempty" validate:"omitempty,oneof=apple-app-store google-play"`
	CheckType string `json:"check_type,omitempty" validate:"omitempty,oneof=static full"`
	Ref       string `json:"ref,omitempty"` // Branch or commit to analyze

	// Behavior
	Verbose      bool   `json:"verbose,omitempty"`
	DatabaseURL  string `json:"database_url,omitempty"` // PostgreSQL connection URL
	GitHubAPIURL string `json:"github_api_url,omitempty" validate:"omitempty,url"`

	// Augmentation tuning
	BatchSize    int `json:"batch_size,omitempty" validate:"gte=0,lte=50"`
	BatchDelayMs int `json:"batch_delay_ms,omitempty" validate:"gte=0"`
	MaxAttempts  int `json:"max_attempts,omitempty" validate:"gte=0,lte=10"`
}

var validate = validator.New()

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. Required fields
// are enforced by CLI flag validation after merging, not here.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config error: field %q failed %q validation", e.Field(), e.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.GitHubAppID != "" && c.GitHubAppKeyPath == "" {
		return fmt.Errorf("config error: 'github_app_id' requires 'github_app_key_path'")
	}
	if c.GitHubAppKeyPath != "" {
		if _, err := os.Stat(c.GitHubAppKeyPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: app key file not found: %s", c.GitHubAppKeyPath)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.GitHubToken == "" {
		result.GitHubToken = defaults.GitHubToken
	}
	if result.GitHubAppID == "" {
		result.GitHubAppID = defaults.GitHubAppID
	}
	if result.GitHubAppKeyPath == "" {
		result.GitHubAppKeyPath = defaults.GitHubAppKeyPath
	}
	if result.Platform == "" {
		result.Platform = defaults.Platform
	}
	if result.CheckType == "" {
		result.CheckType = defaults.CheckType
	}
	if result.Ref == "" {
		result.Ref = defaults.Ref
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.GitHubAPIURL == "" {
		result.GitHubAPIURL = defaults.GitHubAPIURL
	}
	if result.BatchSize == 0 {
		result.BatchSize = defaults.BatchSize
	}
	if result.BatchDelayMs == 0 {
		result.BatchDelayMs = defaults.BatchDelayMs
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	return result
}

// FromEnv fills credential fields from the environment when unset.
func (c *Config) FromEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.GitHubToken == "" {
		c.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	if c.GitHubAppID == "" {
		c.GitHubAppID = os.Getenv("GITHUB_APP_ID")
	}
	if c.GitHubAppKeyPath == "" {
		c.GitHubAppKeyPath = os.Getenv("GITHUB_APP_KEY_PATH")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
}
