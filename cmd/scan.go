package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/internal/scanner"
)

//nolint:gochecknoglobals // Cobra boilerplate
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan one fixture pair for arbitrage",
	Long: `Fetches the odds of one Mostbet fixture and one Melbet fixture, scans every
market both books quote and prints the opportunities found.

Use --reversed when Melbet lists the fixture with home and away swapped.`,
	RunE: runScan,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("mostbet-id", "", "Mostbet fixture id")
	scanCmd.Flags().String("melbet-id", "", "Melbet fixture id")
	scanCmd.Flags().Bool("reversed", false, "Melbet lists the teams the other way round")
	scanCmd.Flags().Float64("stake", 0, "Total stake to split (default: DEFAULT_STAKE)")
	scanCmd.Flags().Duration("timeout", time.Minute, "Time limit for fetching both books")
	_ = scanCmd.MarkFlagRequired("mostbet-id")
	_ = scanCmd.MarkFlagRequired("melbet-id")
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	mostbetID, _ := cmd.Flags().GetString("mostbet-id")
	melbetID, _ := cmd.Flags().GetString("melbet-id")
	reversed, _ := cmd.Flags().GetBool("reversed")
	stake, _ := cmd.Flags().GetFloat64("stake")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if stake <= 0 {
		stake = cfg.DefaultStake
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	mostbet, melbet, err := newClients(cfg, logger)
	if err != nil {
		return err
	}

	bookA, err := mostbet.FetchOdds(ctx, mostbetID)
	if err != nil {
		return fmt.Errorf("fetch mostbet odds: %w", err)
	}

	bookB, err := melbet.FetchOdds(ctx, melbetID)
	if err != nil {
		return fmt.Errorf("fetch melbet odds: %w", err)
	}
	if reversed {
		bookB = bookB.Reversed()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s vs %s: %d mostbet markets, %d melbet markets\n\n",
		bookA.HomeTeam, bookA.AwayTeam, len(bookA.Markets), len(bookB.Markets))

	opps := scanner.New(scanner.WithStake(stake)).Scan(bookA, bookB)
	printOpportunities(cmd.OutOrStdout(), opps)

	return nil
}

func printOpportunities(out io.Writer, opps []*arbitrage.Opportunity) {
	if len(opps) == 0 {
		fmt.Fprintln(out, "No arbitrage found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "MARKET\tPROFIT\tIMPLIED\tLEGS\tSTAKES\n")
	fmt.Fprintf(w, "------\t------\t-------\t----\t------\n")

	for _, opp := range opps {
		legs := make([]string, len(opp.Legs))
		for i, l := range opp.Legs {
			legs[i] = fmt.Sprintf("%s %.2f@%s", l.Label, l.Odds, l.Source)
		}

		stakes := make([]string, len(opp.StakeDistribution))
		for i, s := range opp.StakeDistribution {
			stakes[i] = fmt.Sprintf("%.2f", s)
		}

		fmt.Fprintf(w, "%s\t%.2f%%\t%.4f\t%s\t%s\n",
			opp.Market,
			opp.ProfitPercent,
			opp.TotalImplied,
			strings.Join(legs, ", "),
			strings.Join(stakes, " / "))
	}

	_ = w.Flush()

	fmt.Fprintf(out, "\nTotal: %d opportunities\n", len(opps))
}
