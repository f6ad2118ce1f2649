package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mselser95/bookie-arb/internal/matcher"
	"github.com/mselser95/bookie-arb/internal/storage"
	"github.com/mselser95/bookie-arb/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match two fixture snapshots",
	Long: `Loads the Mostbet and Melbet fixture snapshots, pairs up fixtures that are
the same match, prints the pairs and writes them to matching_matches.json.

By default the snapshots are read from SNAPSHOT_DIR; --mostbet-file and
--melbet-file point at any other fixture list.`,
	RunE: runMatch,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().String("mostbet-file", "", "Mostbet fixture list (default: SNAPSHOT_DIR/mostbet_matches.json)")
	matchCmd.Flags().String("melbet-file", "", "Melbet fixture list (default: SNAPSHOT_DIR/melbet_matches.json)")
	matchCmd.Flags().Bool("best-only", false, "Keep only the best match per fixture")
	matchCmd.Flags().Bool("no-write", false, "Print the pairs without writing the snapshot")
}

func runMatch(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	mostbetFile, _ := cmd.Flags().GetString("mostbet-file")
	melbetFile, _ := cmd.Flags().GetString("melbet-file")
	bestOnly, _ := cmd.Flags().GetBool("best-only")
	noWrite, _ := cmd.Flags().GetBool("no-write")

	if mostbetFile == "" {
		mostbetFile = filepath.Join(cfg.SnapshotDir, storage.FixturesFile(types.SourceMostbet))
	}
	if melbetFile == "" {
		melbetFile = filepath.Join(cfg.SnapshotDir, storage.FixturesFile(types.SourceMelbet))
	}

	a, err := storage.ReadFixturesFile(mostbetFile)
	if err != nil {
		return err
	}
	b, err := storage.ReadFixturesFile(melbetFile)
	if err != nil {
		return err
	}

	m := matcher.New(matcher.Config{
		SimilarityThreshold: cfg.SimilarityThreshold,
		MaxTimeDelta:        cfg.MaxTimeDelta,
	})
	pairs := m.FindMatches(a, b)
	if bestOnly || cfg.BestMatchOnly {
		pairs = matcher.BestPerFixture(pairs)
	}

	printPairs(cmd.OutOrStdout(), pairs)

	if noWrite {
		return nil
	}

	snapshots, err := storage.NewSnapshotStorage(cfg.SnapshotDir, logger)
	if err != nil {
		return err
	}

	err = snapshots.WritePairs(pairs)
	if err != nil {
		return fmt.Errorf("write pairs: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %d pairs to %s\n", len(pairs), filepath.Join(snapshots.Dir(), storage.PairsFile))

	return nil
}

func printPairs(out io.Writer, pairs []types.MatchedFixturePair) {
	if len(pairs) == 0 {
		fmt.Fprintln(out, "No matching fixtures found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "A ID\tB ID\tFIXTURE A\tFIXTURE B\tSCORE\tREVERSED\tDELTA\n")
	fmt.Fprintf(w, "----\t----\t---------\t---------\t-----\t--------\t-----\n")

	for _, p := range pairs {
		fmt.Fprintf(w, "%s\t%s\t%s vs %s\t%s vs %s\t%.2f\t%v\t%.0fm\n",
			p.FixtureA.SourceID,
			p.FixtureB.SourceID,
			p.FixtureA.HomeTeam, p.FixtureA.AwayTeam,
			p.FixtureB.HomeTeam, p.FixtureB.AwayTeam,
			p.SimilarityScore,
			p.IsTeamsReversed,
			p.TimeDeltaMinutes)
	}

	_ = w.Flush()

	fmt.Fprintf(out, "\nTotal: %d pairs\n", len(pairs))
}
