package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mselser95/bookie-arb/internal/app"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the arbitrage scanner",
	Long: `Starts the scanner service, which will:
1. Fetch the Mostbet and Melbet fixture lists on FETCH_INTERVAL
2. Match fixtures across both bookmakers
3. Scan every matched pair for arbitrage on PROCESS_INTERVAL
4. Store, stream and notify every opportunity found

The HTTP API exposes job triggers, status and the latest results.
SIGINT or SIGTERM shuts everything down gracefully.`,
	RunE: runService,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runService(_ *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
