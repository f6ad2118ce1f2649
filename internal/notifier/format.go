package notifier

import (
	"fmt"
	"strings"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/pkg/types"
)

// FormatMessage renders the alert for one fixture pair. Opportunities are
// listed in the order given.
func FormatMessage(pair types.MatchedFixturePair, opps []*arbitrage.Opportunity) string {
	var b strings.Builder

	a := pair.FixtureA
	fmt.Fprintf(&b, "⚽ %s vs %s\n", a.HomeTeam, a.AwayTeam)
	if a.LeagueName != "" {
		fmt.Fprintf(&b, "League: %s\n", a.LeagueName)
	}
	if !a.StartTime.IsZero() {
		fmt.Fprintf(&b, "Kick-off: %s\n", a.StartTime.UTC().Format("2006-01-02 15:04 UTC"))
	}
	fmt.Fprintf(&b, "%s #%s / %s #%s (similarity %.2f",
		a.Source, a.SourceID, pair.FixtureB.Source, pair.FixtureB.SourceID, pair.SimilarityScore)
	if pair.IsTeamsReversed {
		b.WriteString(", teams reversed")
	}
	b.WriteString(")\n")

	for i, opp := range opps {
		fmt.Fprintf(&b, "\n%d. %s: profit %.2f%%\n", i+1, opp.Market, opp.ProfitPercent)
		for j, leg := range opp.Legs {
			stake := 0.0
			if j < len(opp.StakeDistribution) {
				stake = opp.StakeDistribution[j]
			}
			fmt.Fprintf(&b, "   %s %.2f @ %s, stake %.2f\n", leg.Label, leg.Odds, leg.Source, stake)
		}
		fmt.Fprintf(&b, "   return %.2f on %.2f\n", opp.ExpectedReturn, opp.TotalStake)
	}

	return b.String()
}
