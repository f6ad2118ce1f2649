package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/bookie-arb/pkg/types"
)

var kickoff = time.Date(2026, 10, 20, 19, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

func fixture(source, id, home, away string, start time.Time) types.RawFixture {
	return types.RawFixture{
		Source:    source,
		SourceID:  id,
		HomeTeam:  home,
		AwayTeam:  away,
		StartTime: start,
	}
}

func TestFindMatchesReversal(t *testing.T) {
	a := []types.RawFixture{fixture(types.SourceMostbet, "1", "Real Madrid", "Barcelona", kickoff)}
	b := []types.RawFixture{fixture(types.SourceMelbet, "2", "Barcelona", "Real Madrid", kickoff.Add(time.Minute))}

	pairs := FindMatches(a, b)

	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].IsTeamsReversed)
	assert.InDelta(t, 1.0, pairs[0].SimilarityScore, 1e-9)
	assert.InDelta(t, 1.0, pairs[0].TimeDeltaMinutes, 1e-9)
}

func TestFindMatchesBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		home    string
		away    string
		delta   time.Duration
		matched bool
	}{
		// "abcxy" vs "abcde" is exactly 0.6
		{name: "exact-threshold-and-window", home: "abcxy", away: "fghxy", delta: 5 * time.Minute, matched: true},
		{name: "window-exceeded", home: "abcxy", away: "fghxy", delta: 5*time.Minute + 600*time.Millisecond, matched: false},
		{name: "below-threshold", home: "axyzq", away: "fghxy", delta: 0, matched: false},
		{name: "earlier-start-within-window", home: "abcde", away: "fghij", delta: -4 * time.Minute, matched: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := []types.RawFixture{fixture(types.SourceMostbet, "1", "abcde", "fghij", kickoff)}
			b := []types.RawFixture{fixture(types.SourceMelbet, "2", tt.home, tt.away, kickoff.Add(tt.delta))}

			pairs := FindMatches(a, b)
			assert.Equal(t, tt.matched, len(pairs) == 1)
		})
	}
}

func TestFindMatchesSortedAndNotDeduplicated(t *testing.T) {
	a := []types.RawFixture{
		fixture(types.SourceMostbet, "a1", "Arsenal", "Chelsea", kickoff),
	}
	b := []types.RawFixture{
		fixture(types.SourceMelbet, "b1", "Arsenal FC", "Chelsea FC", kickoff),
		fixture(types.SourceMelbet, "b2", "Arsenal", "Chelsea", kickoff.Add(2*time.Minute)),
		fixture(types.SourceMelbet, "b3", "Arsenal FC", "Chelsea FC", kickoff),
	}

	pairs := FindMatches(a, b)

	require.Len(t, pairs, 3)
	assert.Equal(t, "b2", pairs[0].FixtureB.SourceID)
	// equal scores keep cross-product order
	assert.Equal(t, "b1", pairs[1].FixtureB.SourceID)
	assert.Equal(t, "b3", pairs[2].FixtureB.SourceID)
}

func TestFindMatchesSkipsInvalidFixtures(t *testing.T) {
	a := []types.RawFixture{
		fixture(types.SourceMostbet, "1", "", "Chelsea", kickoff),
		fixture(types.SourceMostbet, "2", "Arsenal", "Chelsea", time.Time{}),
		fixture(types.SourceMostbet, "3", "Arsenal", "Chelsea", kickoff),
	}
	b := []types.RawFixture{fixture(types.SourceMelbet, "9", "Arsenal", "Chelsea", kickoff)}

	pairs := FindMatches(a, b)

	require.Len(t, pairs, 1)
	assert.Equal(t, "3", pairs[0].FixtureA.SourceID)
}

func TestMatcherCustomConfig(t *testing.T) {
	m := New(Config{SimilarityThreshold: 0.95, MaxTimeDelta: time.Minute})

	a := []types.RawFixture{fixture(types.SourceMostbet, "1", "Arsenal", "Chelsea", kickoff)}
	b := []types.RawFixture{
		fixture(types.SourceMelbet, "2", "Arsenal FC", "Chelsea FC", kickoff),
		fixture(types.SourceMelbet, "3", "Arsenal", "Chelsea", kickoff.Add(2*time.Minute)),
		fixture(types.SourceMelbet, "4", "Arsenal", "Chelsea", kickoff.Add(30*time.Second)),
	}

	pairs := m.FindMatches(a, b)

	require.Len(t, pairs, 1)
	assert.Equal(t, "4", pairs[0].FixtureB.SourceID)
}

func TestBestPerFixture(t *testing.T) {
	a := []types.RawFixture{
		fixture(types.SourceMostbet, "a1", "Arsenal", "Chelsea", kickoff),
		fixture(types.SourceMostbet, "a2", "Arsenal FC", "Chelsea FC", kickoff),
	}
	b := []types.RawFixture{
		fixture(types.SourceMelbet, "b1", "Arsenal", "Chelsea", kickoff),
		fixture(types.SourceMelbet, "b2", "Arsenal FC", "Chelsea FC", kickoff),
	}

	all := FindMatches(a, b)
	require.Len(t, all, 4)

	best := BestPerFixture(all)

	require.Len(t, best, 2)
	got := map[string]string{}
	for _, p := range best {
		got[p.FixtureA.SourceID] = p.FixtureB.SourceID
	}
	assert.Equal(t, map[string]string{"a1": "b1", "a2": "b2"}, got)
}
