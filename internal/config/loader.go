// Package config provides configuration management for the line-edge tools.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "LINE_EDGE"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// LINE_EDGE_BACKTEST_INITIAL_BANKROLL overrides backtest.initial_bankroll
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "line-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("data.corpus_path", "data/corpus.json")

	v.SetDefault("backtest.start_date", "2000-01-01")
	v.SetDefault("backtest.end_date", "2099-12-31")
	v.SetDefault("backtest.initial_bankroll", 10000.0)
	v.SetDefault("backtest.risk_free_rate", 0.0)
	v.SetDefault("backtest.concurrency", 4)
	v.SetDefault("backtest.monte_carlo_iterations", 1000)

	v.SetDefault("validation.threshold_min", 2.0)
	v.SetDefault("validation.threshold_max", 10.0)
	v.SetDefault("validation.threshold_step", 0.5)
	v.SetDefault("validation.min_bets", 20)
	v.SetDefault("validation.train_games", 200)
	v.SetDefault("validation.test_games", 50)
	v.SetDefault("validation.step_games", 50)
	v.SetDefault("validation.confidence_level", 0.95)
	v.SetDefault("validation.min_samples", 30)
	v.SetDefault("validation.favorite_threshold", 3.0)

	v.SetDefault("analysis.max_stake_fraction", 0.05)
	v.SetDefault("analysis.max_exposure_fraction", 0.25)
	v.SetDefault("analysis.min_stake", 2.0)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
