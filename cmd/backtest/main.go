// Package main provides the entry point for the line-edge backtesting CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/health"
	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/rating"
	"github.com/yourusername/line-edge/internal/repository"
	"github.com/yourusername/line-edge/internal/strategy"
	"github.com/yourusername/line-edge/internal/validation"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	startDate  string
	endDate    string
	leagues    []string
	outputPath string
	threshold  float64

	cfg      *config.Config
	appLog   *logrus.Logger
	store    *repository.Store
	repos    *repository.Repositories
	ratings  *rating.Store
	baseline *strategy.EdgeStrategy
	probe    *health.Server
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	flags.StringVar(&startDate, "start-date", "", "Override start date (YYYY-MM-DD)")
	flags.StringVar(&endDate, "end-date", "", "Override end date (YYYY-MM-DD)")
	flags.StringSliceVar(&leagues, "league", nil, "Restrict to league codes (repeatable)")
	flags.StringVarP(&outputPath, "output", "o", "", "Directory for exported reports")
	flags.Float64Var(&threshold, "threshold", 0, "Override the edge threshold in every league")

	rootCmd.AddCommand(runCmd, walkForwardCmd, optimizeCmd, validateCmd, analyzeCmd)
}

var rootCmd = &cobra.Command{
	Use:          "backtest",
	Short:        "Replay and validate spread edges against historical lines",
	Long:         `Rates teams, detects line edges, sizes stakes and replays them over a historical corpus, with walk-forward and significance validation.`,
	Version:      fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		metrics.UpdateRatingCacheSize(ratings.Len())
		if probe != nil {
			_ = probe.Shutdown()
		}
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if startDate != "" {
		cfg.Backtest.StartDate = startDate
	}
	if endDate != "" {
		cfg.Backtest.EndDate = endDate
	}
	if len(leagues) > 0 {
		cfg.Backtest.Leagues = leagues
	}
	if outputPath != "" {
		cfg.Backtest.OutputPath = outputPath
	}

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()

	corpus, err := repository.LoadCorpus(cfg.Data.CorpusPath)
	if err != nil {
		return err
	}
	store, err = repository.NewStore(corpus, appLog)
	if err != nil {
		return err
	}
	repos, err = repository.NewRepositories(store)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	registry, err := league.LoadRegistry(cfg.Data.LeagueOverridesPath)
	if err != nil {
		return err
	}
	ratings = rating.NewStore()
	baseline, err = strategy.NewEdgeStrategy(registry, ratings)
	if err != nil {
		return err
	}
	if threshold > 0 {
		if baseline, err = baseline.WithThreshold(threshold); err != nil {
			return err
		}
	}

	if cfg.Metrics.Enabled {
		probe = health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Port:        cfg.Metrics.Port,
			MetricsPath: cfg.Metrics.Path,
			Metrics:     metrics.Handler(),
			Logger:      appLog,
			Checks: map[string]health.Checker{
				"corpus": health.CheckerFunc(func(context.Context) error {
					if store.Len() == 0 {
						return fmt.Errorf("no games loaded")
					}
					return nil
				}),
			},
		})
		if _, err := probe.Start(ctx); err != nil {
			return err
		}
		probe.SetReady(true)
	}

	appLog.WithFields(logrus.Fields{
		"games":    store.Len(),
		"rejected": len(store.Rejected()),
		"leagues":  strings.Join(registry.Codes(), ","),
		"version":  Version,
	}).Info("Dependencies ready")
	return nil
}

func newEngine() (*backtest.Engine, error) {
	btCfg, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	return backtest.NewEngine(btCfg, repos, baseline, appLog)
}

func newValidator() (*validation.Validator, *backtest.Engine, error) {
	engine, err := newEngine()
	if err != nil {
		return nil, nil, err
	}
	factory := func(th float64) (strategy.Strategy, error) {
		return baseline.WithThreshold(th)
	}
	v, err := validation.NewValidator(engine, factory, validation.FromConfig(&cfg.Validation))
	if err != nil {
		return nil, nil, err
	}
	return v, engine, nil
}
