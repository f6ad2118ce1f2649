package types

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Outcomes maps canonical outcome labels to decimal odds.
type Outcomes map[string]float64

// OddsBook is one bookmaker's canonical odds for one fixture.
type OddsBook struct {
	Source     string              `json:"source"`
	FixtureRef string              `json:"fixtureRef"`
	HomeTeam   string              `json:"homeTeam,omitempty"`
	AwayTeam   string              `json:"awayTeam,omitempty"`
	League     string              `json:"league,omitempty"`
	StartTime  time.Time           `json:"startTime,omitempty"`
	Markets    map[string]Outcomes `json:"markets"`
}

// NewOddsBook returns an empty book for a fixture.
func NewOddsBook(source, fixtureRef string) *OddsBook {
	return &OddsBook{
		Source:     source,
		FixtureRef: fixtureRef,
		Markets:    make(map[string]Outcomes),
	}
}

// Set records odds for an outcome. Non-positive and non-finite quotes are
// dropped, so a market key only exists once it holds a usable quote.
func (b *OddsBook) Set(market, outcome string, odds float64) bool {
	if odds <= 0 || math.IsNaN(odds) || math.IsInf(odds, 0) || market == "" || outcome == "" {
		return false
	}

	if b.Markets == nil {
		b.Markets = make(map[string]Outcomes)
	}

	m, ok := b.Markets[market]
	if !ok {
		m = make(Outcomes)
		b.Markets[market] = m
	}
	m[outcome] = odds

	return true
}

// Market returns the outcomes of a market, or nil.
func (b *OddsBook) Market(market string) Outcomes {
	if b == nil {
		return nil
	}

	return b.Markets[market]
}

// Odds returns the quote for an outcome, or 0 when absent.
func (b *OddsBook) Odds(market, outcome string) float64 {
	return b.Market(market)[outcome]
}

// Merge copies every quote of other into b. Existing quotes are overwritten.
func (b *OddsBook) Merge(other *OddsBook) {
	if other == nil {
		return
	}

	for market, outcomes := range other.Markets {
		for outcome, odds := range outcomes {
			b.Set(market, outcome, odds)
		}
	}
}

// MarketNames returns the market keys in sorted order.
func (b *OddsBook) MarketNames() []string {
	names := make([]string, 0, len(b.Markets))
	for name := range b.Markets {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// OutcomeCount returns the number of quotes across all markets.
func (b *OddsBook) OutcomeCount() int {
	n := 0
	for _, outcomes := range b.Markets {
		n += len(outcomes)
	}

	return n
}

//nolint:gochecknoglobals
var swappedOutcomes = map[string]string{
	OutcomeW1:    OutcomeW2,
	OutcomeW2:    OutcomeW1,
	Outcome1X:    OutcomeX2,
	OutcomeX2:    Outcome1X,
	OutcomeTeam1: OutcomeTeam2,
	OutcomeTeam2: OutcomeTeam1,
}

// Reversed returns a copy of the book with home and away swapped. It is used
// when the other book lists the fixture with the teams the other way round.
func (b *OddsBook) Reversed() *OddsBook {
	out := NewOddsBook(b.Source, b.FixtureRef)
	out.HomeTeam = b.AwayTeam
	out.AwayTeam = b.HomeTeam
	out.League = b.League
	out.StartTime = b.StartTime

	for market, outcomes := range b.Markets {
		target := swapTeamMarket(market)
		for outcome, odds := range outcomes {
			if swapped, ok := swappedOutcomes[outcome]; ok {
				outcome = swapped
			}
			out.Set(target, outcome, odds)
		}
	}

	return out
}

func swapTeamMarket(market string) string {
	switch {
	case strings.HasSuffix(market, MarketHomeTeamTotal):
		return strings.TrimSuffix(market, MarketHomeTeamTotal) + MarketAwayTeamTotal
	case strings.HasSuffix(market, MarketAwayTeamTotal):
		return strings.TrimSuffix(market, MarketAwayTeamTotal) + MarketHomeTeamTotal
	}

	return market
}
