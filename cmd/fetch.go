package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/storage"
	"github.com/mselser95/bookie-arb/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var fetchCmd = &cobra.Command{
	Use:       "fetch <mostbet|melbet>",
	Short:     "Fetch a bookmaker's fixture list and write its snapshot",
	Long:      `Fetches the upcoming football fixtures of one bookmaker and writes them to <source>_matches.json under SNAPSHOT_DIR.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{types.SourceMostbet, types.SourceMelbet},
	RunE:      runFetch,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().Duration("timeout", 5*time.Minute, "Overall time limit for the fetch")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	mostbet, melbet, err := newClients(cfg, logger)
	if err != nil {
		return err
	}

	var fetch func(context.Context) ([]types.RawFixture, error)
	switch args[0] {
	case types.SourceMostbet:
		fetch = mostbet.FetchFixtures
	case types.SourceMelbet:
		fetch = melbet.FetchFixtures
	default:
		return fmt.Errorf("unknown source %q", args[0])
	}

	fixtures, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch %s fixtures: %w", args[0], err)
	}

	snapshots, err := storage.NewSnapshotStorage(cfg.SnapshotDir, logger)
	if err != nil {
		return err
	}

	err = snapshots.WriteFixtures(args[0], fixtures)
	if err != nil {
		return fmt.Errorf("write %s snapshot: %w", args[0], err)
	}

	logger.Info("fixtures-snapshot-written",
		zap.String("source", args[0]),
		zap.Int("fixtures", len(fixtures)),
		zap.String("dir", snapshots.Dir()))

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d %s fixtures to %s\n", len(fixtures), args[0], snapshots.Dir())

	return nil
}
