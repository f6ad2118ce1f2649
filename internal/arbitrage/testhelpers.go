package arbitrage

import "time"

// CreateTestOpportunity builds a 1X2 opportunity across both books for tests.
func CreateTestOpportunity(fixtureKey string, market string) *Opportunity {
	legs := []Leg{
		{Label: "W1", Odds: 2.6, Source: "mostbet"},
		{Label: "X", Odds: 3.9, Source: "melbet"},
		{Label: "W2", Odds: 3.4, Source: "mostbet"},
	}

	opp := NewOpportunity(market, legs, DefaultStake)
	opp.ID = "test-opp-" + fixtureKey
	opp.FixtureKey = fixtureKey
	opp.HomeTeam = "Arsenal"
	opp.AwayTeam = "Chelsea"
	opp.League = "Premier League"
	opp.StartTime = time.Date(2026, 10, 20, 19, 0, 0, 0, time.UTC)

	return opp
}
