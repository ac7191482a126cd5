// Package config provides configuration management for the line-edge tools.
package config

import "time"

const dateLayout = "2006-01-02"

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Data       DataConfig       `mapstructure:"data" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Validation ValidationConfig `mapstructure:"validation" validate:"required"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DataConfig locates the historical corpus and optional league overrides
type DataConfig struct {
	CorpusPath          string `mapstructure:"corpus_path" validate:"required"`
	LeagueOverridesPath string `mapstructure:"league_overrides_path"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartDate            string   `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate              string   `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	Leagues              []string `mapstructure:"leagues" validate:"omitempty,dive,league"`
	InitialBankroll      float64  `mapstructure:"initial_bankroll" validate:"required,gt=0"`
	RiskFreeRate         float64  `mapstructure:"risk_free_rate" validate:"gte=0"`
	Concurrency          int      `mapstructure:"concurrency" validate:"required,gt=0,lte=64"`
	MonteCarloIterations int      `mapstructure:"monte_carlo_iterations" validate:"required,gt=0"`
	Seed                 int64    `mapstructure:"seed"`
	OutputPath           string   `mapstructure:"output_path"`
}

// ValidationConfig represents strategy validation configuration
type ValidationConfig struct {
	ThresholdMin      float64 `mapstructure:"threshold_min" validate:"required,gt=0"`
	ThresholdMax      float64 `mapstructure:"threshold_max" validate:"required,gt=0"`
	ThresholdStep     float64 `mapstructure:"threshold_step" validate:"required,gt=0"`
	MinBets           int     `mapstructure:"min_bets" validate:"gte=0"`
	TrainGames        int     `mapstructure:"train_games" validate:"required,gt=0"`
	TestGames         int     `mapstructure:"test_games" validate:"required,gt=0"`
	StepGames         int     `mapstructure:"step_games" validate:"required,gt=0"`
	ConfidenceLevel   float64 `mapstructure:"confidence_level" validate:"required,gt=0,lt=1"`
	MinSamples        int     `mapstructure:"min_samples" validate:"required,gte=2"`
	FavoriteThreshold float64 `mapstructure:"favorite_threshold" validate:"gte=0"`
}

// AnalysisConfig bounds live slate stakes. Zero disables a limit.
type AnalysisConfig struct {
	MaxStakeFraction    float64 `mapstructure:"max_stake_fraction" validate:"gte=0,lte=1"`
	MaxExposureFraction float64 `mapstructure:"max_exposure_fraction" validate:"gte=0,lte=1"`
	MinStake            float64 `mapstructure:"min_stake" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Window returns the parsed backtest date range. The end date is inclusive,
// so the returned end is the last instant of that day.
func (b BacktestConfig) Window() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, b.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(dateLayout, b.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end.Add(24*time.Hour - time.Nanosecond), nil
}
