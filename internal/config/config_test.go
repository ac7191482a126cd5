// Package config provides configuration management for the line-edge tools.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	expansionConfigPath   = "testdata/expansion_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
	testCorpusPathVar     = "TEST_CORPUS_PATH"
)

func loadValid(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	return cfg
}

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg := loadValid(t)

	assert.Equal(t, "line-edge", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, []string{"NFL", "NCAAF"}, cfg.Backtest.Leagues)
	assert.Equal(t, 10000.0, cfg.Backtest.InitialBankroll)
	assert.Equal(t, int64(42), cfg.Backtest.Seed)
	assert.Equal(t, 0.5, cfg.Validation.ThresholdStep)
	assert.Equal(t, 30, cfg.Validation.MinSamples)
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	assert.Error(t, err)
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("LINE_EDGE_APP_NAME", "test-app")
	t.Setenv("LINE_EDGE_BACKTEST_CONCURRENCY", "8")

	cfg := loadValid(t)
	assert.Equal(t, "test-app", cfg.App.Name)
	assert.Equal(t, 8, cfg.Backtest.Concurrency)
}

// TestLoadConfigEnvironmentVariableExpansion tests ${VAR} expansion in the file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	t.Setenv(testCorpusPathVar, "/srv/corpus/nfl.json")

	cfg, err := Load(expansionConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "/srv/corpus/nfl.json", cfg.Data.CorpusPath)
}

// TestLoadWithDefaults tests that a missing file falls back to defaults
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "line-edge", cfg.App.Name)
	assert.Equal(t, 2.0, cfg.Validation.ThresholdMin)
	assert.Equal(t, 10.0, cfg.Validation.ThresholdMax)
	assert.Equal(t, 0.95, cfg.Validation.ConfidenceLevel)
	assert.Equal(t, 0.25, cfg.Analysis.MaxExposureFraction)
	assert.NoError(t, Validate(cfg))
}

// TestLoadWithDefaultsOverlaysFile tests that file values win over defaults
func TestLoadWithDefaultsOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backtest:\n  initial_bankroll: 500\n"), 0o644))

	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, 500.0, cfg.Backtest.InitialBankroll)
	assert.Equal(t, 4, cfg.Backtest.Concurrency)
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	assert.NoError(t, Validate(loadValid(t)))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid environment", func(c *Config) { c.App.Environment = "invalid" }, "Environment"},
		{"invalid log level", func(c *Config) { c.App.LogLevel = "trace" }, "LogLevel"},
		{"unknown league", func(c *Config) { c.Backtest.Leagues = []string{"NFL", "MLB"} }, "MLB"},
		{"bad date", func(c *Config) { c.Backtest.StartDate = "09/01/2022" }, "StartDate"},
		{"zero bankroll", func(c *Config) { c.Backtest.InitialBankroll = 0 }, "InitialBankroll"},
		{"confidence level", func(c *Config) { c.Validation.ConfidenceLevel = 1 }, "ConfidenceLevel"},
		{"reversed dates", func(c *Config) { c.Backtest.StartDate, c.Backtest.EndDate = c.Backtest.EndDate, c.Backtest.StartDate }, "start_date"},
		{"reversed grid", func(c *Config) { c.Validation.ThresholdMin = 12 }, "threshold_min"},
		{"oversized step", func(c *Config) { c.Validation.ThresholdStep = 9 }, "threshold_step"},
		{"production sample floor", func(c *Config) {
			c.App.Environment = "production"
			c.Validation.MinSamples = 10
		}, "min_samples"},
		{"exposure above bankroll", func(c *Config) { c.Analysis.MaxExposureFraction = 1.5 }, "MaxExposureFraction"},
		{"metrics without port", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Port = 0
		}, "metrics port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadValid(t)
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLowercaseLeagueAccepted(t *testing.T) {
	cfg := loadValid(t)
	cfg.Backtest.Leagues = []string{"nba"}
	assert.NoError(t, Validate(cfg))
}

func TestBacktestWindow(t *testing.T) {
	cfg := loadValid(t)
	start, end, err := cfg.Backtest.Window()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC), start)
	assert.True(t, end.After(time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, end.Before(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestEnvironmentChecks(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: "development"}}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.App.Environment = "staging"
	assert.True(t, cfg.IsStaging())

	cfg.App.Environment = "production"
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}
