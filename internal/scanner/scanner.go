// Package scanner compares two odds books for the same fixture and reports
// every market where backing the best quote of each outcome locks in a profit.
package scanner

import (
	"sort"
	"strings"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/pkg/types"
)

// Scanner finds arbitrage across two odds books. It holds no state beyond its
// configuration and is safe for concurrent use.
type Scanner struct {
	stake float64
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithStake sets the total stake split across legs.
func WithStake(stake float64) Option {
	return func(s *Scanner) {
		if stake > 0 {
			s.stake = stake
		}
	}
}

// New creates a scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{stake: arbitrage.DefaultStake}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Scan runs a default scanner over a and b.
func Scan(a, b *types.OddsBook) []*arbitrage.Opportunity {
	return New().Scan(a, b)
}

// Scan checks every known market present in both books and returns the
// opportunities sorted by profit percent, highest first. On equal quotes the
// leg is attributed to a.
func (s *Scanner) Scan(a, b *types.OddsBook) []*arbitrage.Opportunity {
	if a == nil || b == nil {
		return nil
	}

	var opps []*arbitrage.Opportunity
	opps = append(opps, s.scanDirect(a, b)...)
	opps = append(opps, s.scanTotals(a, b)...)
	opps = append(opps, s.scanHandicaps(a, b)...)
	opps = append(opps, s.scanFirstLast(a, b)...)

	for _, opp := range opps {
		opp.HomeTeam = a.HomeTeam
		opp.AwayTeam = a.AwayTeam
		opp.League = a.League
		opp.StartTime = a.StartTime
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitPercent > opps[j].ProfitPercent
	})

	return opps
}

// best picks the higher of two quotes, preferring a on ties. A zero result
// means neither book quotes the outcome.
func best(oddsA, oddsB float64, a, b *types.OddsBook) (float64, string) {
	if oddsA > 0 && oddsA >= oddsB {
		return oddsA, a.Source
	}
	if oddsB > 0 {
		return oddsB, b.Source
	}

	return 0, ""
}

// directMarket is a market whose outcome labels are fixed.
type directMarket struct {
	market   string
	outcomes []string
}

func directMarkets() []directMarket {
	threeWay := []string{types.OutcomeW1, types.OutcomeX, types.OutcomeW2}

	markets := []directMarket{
		{market: types.Market1X2, outcomes: threeWay},
		{market: types.MarketDoubleChance, outcomes: []string{types.Outcome1X, types.OutcomeX2, types.Outcome12}},
		{market: types.MarketBTTS, outcomes: []string{types.OutcomeYes, types.OutcomeNo}},
		{market: types.MarketDrawNoBet, outcomes: []string{types.OutcomeW1, types.OutcomeW2}},
	}
	for _, segment := range types.Segments {
		markets = append(markets, directMarket{market: types.SegmentMarket(segment, types.Market1X2), outcomes: threeWay})
	}

	return markets
}

func (s *Scanner) scanDirect(a, b *types.OddsBook) []*arbitrage.Opportunity {
	var opps []*arbitrage.Opportunity

	for _, dm := range directMarkets() {
		ma, mb := a.Market(dm.market), b.Market(dm.market)
		if ma == nil || mb == nil {
			continue
		}

		legs := make([]arbitrage.Leg, 0, len(dm.outcomes))
		for _, outcome := range dm.outcomes {
			odds, src := best(ma[outcome], mb[outcome], a, b)
			if odds == 0 {
				break
			}
			legs = append(legs, arbitrage.Leg{Label: outcome, Odds: odds, Source: src})
		}
		if len(legs) != len(dm.outcomes) {
			continue
		}

		if opp := arbitrage.NewOpportunity(dm.market, legs, s.stake); opp != nil {
			opps = append(opps, opp)
		}
	}

	return opps
}

func (s *Scanner) scanFirstLast(a, b *types.OddsBook) []*arbitrage.Opportunity {
	var opps []*arbitrage.Opportunity

	noEvent := func(m types.Outcomes) float64 {
		if v := m[types.OutcomeNoEvent]; v > 0 {
			return v
		}
		return m[types.OutcomeNoGoal]
	}

	for _, market := range types.FirstLastMarkets {
		ma, mb := a.Market(market), b.Market(market)
		if ma == nil || mb == nil {
			continue
		}

		team1, src1 := best(ma[types.OutcomeTeam1], mb[types.OutcomeTeam1], a, b)
		team2, src2 := best(ma[types.OutcomeTeam2], mb[types.OutcomeTeam2], a, b)
		none, srcN := best(noEvent(ma), noEvent(mb), a, b)
		if team1 == 0 || team2 == 0 || none == 0 {
			continue
		}

		legs := []arbitrage.Leg{
			{Label: types.OutcomeTeam1, Odds: team1, Source: src1},
			{Label: types.OutcomeTeam2, Odds: team2, Source: src2},
			{Label: types.OutcomeNoEvent, Odds: none, Source: srcN},
		}
		if opp := arbitrage.NewOpportunity(market, legs, s.stake); opp != nil {
			opps = append(opps, opp)
		}
	}

	return opps
}

// prefersShortTotals reports whether a totals market is usually quoted as
// "Over (x)" rather than "Total Over (x)".
func prefersShortTotals(market string) bool {
	return market == types.MarketHomeTeamTotal ||
		market == types.MarketAwayTeamTotal ||
		strings.Contains(market, "Cards") ||
		strings.Contains(market, "- Home Team") ||
		strings.Contains(market, "- Away Team")
}
