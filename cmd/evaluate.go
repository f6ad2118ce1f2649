package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
)

//nolint:gochecknoglobals // Cobra boilerplate
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <odds...>",
	Short: "Check a set of complementary odds for arbitrage",
	Long: `Evaluates decimal odds that cover every outcome of one market, for example
the home, draw and away prices of a match result, and prints the implied
total, the stake split and the guaranteed return.

Example:
  bookie-arb evaluate 2.6 3.9 3.4 --stake 500`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stake, _ := cmd.Flags().GetFloat64("stake")
		return evaluate(cmd.OutOrStdout(), args, stake)
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().Float64("stake", arbitrage.DefaultStake, "Total stake to split across the outcomes")
}

func parseOdds(args []string) ([]float64, error) {
	odds := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return nil, fmt.Errorf("parse odds %q: %w", arg, err)
		}
		if v <= 1 {
			return nil, fmt.Errorf("odds must be greater than 1, got %q", arg)
		}
		odds[i] = v
	}

	return odds, nil
}

func evaluate(out io.Writer, args []string, stake float64) error {
	odds, err := parseOdds(args)
	if err != nil {
		return err
	}

	res := arbitrage.Evaluate(odds, stake)

	fmt.Fprintf(out, "Total implied: %.4f\n", res.TotalImplied)

	if !res.IsArbitrage {
		fmt.Fprintf(out, "No arbitrage: the book keeps %.2f%%\n", (res.TotalImplied-1)*100)
		return nil
	}

	fmt.Fprintln(out, arbitrage.Condition(odds))
	fmt.Fprintf(out, "Arbitrage:     %.2f%% profit\n", res.ProfitPercent)
	for i, o := range odds {
		fmt.Fprintf(out, "  stake %.2f on %.2f\n", res.StakeDistribution[i], o)
	}
	fmt.Fprintf(out, "Return %.2f on %.2f (profit %.2f)\n", res.ExpectedReturn, res.TotalStake, res.ExpectedProfit)

	return nil
}
