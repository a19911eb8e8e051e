package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"platform": "google-play",
		"check_type": "full",
		"github_token": "ghp_test",
		"batch_size": 10,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "google-play", cfg.Platform)
	assert.Equal(t, "full", cfg.CheckType)
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_UnknownPlatform(t *testing.T) {
	cfg := &Config{Platform: "windows-store"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Platform")
}

func TestValidate_UnknownCheckType(t *testing.T) {
	cfg := &Config{CheckType: "partial"}

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_BatchSizeRange(t *testing.T) {
	cfg := &Config{BatchSize: 500}

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_AppIDRequiresKeyPath(t *testing.T) {
	cfg := &Config{GitHubAppID: "12345"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "github_app_key_path")
}

func TestValidate_AppKeyPathMustExist(t *testing.T) {
	cfg := &Config{
		GitHubAppID:      "12345",
		GitHubAppKeyPath: "/nonexistent/key.pem",
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidate_EmptyConfigIsValid(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Platform: "apple-app-store", BatchSize: 3}
	defaults := Config{
		Platform:    "google-play",
		CheckType:   "full",
		BatchSize:   5,
		GitHubToken: "ghp_default",
		Verbose:     true,
	}

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "apple-app-store", merged.Platform, "explicit value wins")
	assert.Equal(t, "full", merged.CheckType, "empty value takes default")
	assert.Equal(t, 3, merged.BatchSize)
	assert.Equal(t, "ghp_default", merged.GitHubToken)
	assert.True(t, merged.Verbose)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GITHUB_TOKEN", "ghp_env")

	cfg := &Config{GitHubToken: "ghp_explicit"}
	cfg.FromEnv()

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "ghp_explicit", cfg.GitHubToken, "explicit value wins over env")
}
