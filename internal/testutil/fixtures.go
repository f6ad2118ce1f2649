package testutil

import (
	"time"

	"github.com/mselser95/bookie-arb/pkg/types"
)

// KickOff is the start time used by the builders.
var KickOff = time.Date(2026, 10, 20, 19, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

// CreateTestFixture creates a valid fixture starting at KickOff.
func CreateTestFixture(source, id, home, away string) types.RawFixture {
	return types.RawFixture{
		SourceID:   id,
		Source:     source,
		HomeTeam:   home,
		AwayTeam:   away,
		LeagueName: "England. Premier League",
		Sport:      "Football",
		StartTime:  KickOff,
	}
}

// CreateTestPair creates a Mostbet/Melbet pair with the same teams.
func CreateTestPair(mostbetID, melbetID, home, away string) types.MatchedFixturePair {
	return types.MatchedFixturePair{
		FixtureA:        CreateTestFixture(types.SourceMostbet, mostbetID, home, away),
		FixtureB:        CreateTestFixture(types.SourceMelbet, melbetID, home, away),
		SimilarityScore: 1,
	}
}

// CreateTestOddsBook creates a book with the given 1X2 quotes. Zero quotes
// are left out.
func CreateTestOddsBook(source, ref string, w1, x, w2 float64) *types.OddsBook {
	b := types.NewOddsBook(source, ref)
	b.HomeTeam = "Arsenal"
	b.AwayTeam = "Chelsea"
	b.StartTime = KickOff
	b.Set(types.Market1X2, types.OutcomeW1, w1)
	b.Set(types.Market1X2, types.OutcomeX, x)
	b.Set(types.Market1X2, types.OutcomeW2, w2)

	return b
}
