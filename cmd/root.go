package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/scraper"
	"github.com/mselser95/bookie-arb/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "bookie-arb",
	Short: "Bookmaker arbitrage scanner",
	Long: `Bookmaker arbitrage scanner that pulls upcoming football fixtures from
Mostbet and Melbet, pairs up the same match across both books, and checks
every shared market for odds that guarantee a profit when backed together.

Configuration is read from the environment; a .env file in the working
directory is loaded first when present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return loadDotEnv(".env")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadDotEnv loads path into the environment. A missing file is not an error
// and variables already set win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

// setup loads config and builds the logger every subcommand needs.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, logger, nil
}

func newClients(cfg *config.Config, logger *zap.Logger) (*scraper.MostbetClient, *scraper.MelbetClient, error) {
	sources := scraper.DefaultSources()
	if cfg.SourcesFile != "" {
		var err error
		sources, err = scraper.LoadSources(cfg.SourcesFile)
		if err != nil {
			return nil, nil, err
		}
	}

	mostbet, melbet, err := scraper.NewClients(sources, scraper.Options{
		Timeout:        cfg.FetchTimeout,
		MaxAttempts:    cfg.FetchMaxAttempts,
		InitialBackoff: cfg.FetchInitialBackoff,
		MaxBackoff:     cfg.FetchMaxBackoff,
		RateLimit:      cfg.FetchRateLimit,
		Burst:          cfg.FetchBurst,
		PageDelay:      cfg.FetchPageDelay,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create clients: %w", err)
	}

	return mostbet, melbet, nil
}
