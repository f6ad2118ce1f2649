package normalizer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/bookie-arb/pkg/types"
)

func TestOneXBetNormalize(t *testing.T) {
	n := NewOneXBet(types.SourceMelbet)

	book, err := n.Normalize("", loadFixture(t, "melbet_game.json"))
	require.NoError(t, err)

	assert.Equal(t, types.SourceMelbet, book.Source)
	assert.Equal(t, "612345678", book.FixtureRef)
	assert.Equal(t, "Arsenal", book.HomeTeam)
	assert.Equal(t, "Chelsea", book.AwayTeam)
	assert.Equal(t, time.Unix(1792522860, 0).UTC(), book.StartTime)

	expected := map[string]types.Outcomes{
		"1X2":           {"W1": 2.55, "X": 3.3, "W2": 3.05},
		"Double Chance": {"1X": 1.44, "12": 1.36, "X2": 1.6},
		"Total": {
			"Total Over (2.5)":  2.05,
			"Total Over (3.5)":  3.2,
			"Total Under (2.5)": 1.85,
			"Total Under (3.5)": 1.34,
		},
		"Handicap": {
			"Arsenal (-1.5)": 3.75,
			"Arsenal (0)":    2.0,
			"Chelsea (1.5)":  1.28,
			"Chelsea (0)":    1.8,
		},
		"Asian Handicap":      {"Arsenal (-0.25)": 2.02, "Chelsea (0.25)": 1.86},
		"Home Team Total":     {"Total Over (1.5)": 2.15, "Total Under (1.5)": 1.7},
		"Away Team Total":     {"Total Over (1.5)": 2.6, "Total Under (1.5)": 1.5},
		"Both Teams To Score": {"Yes": 1.72, "No": 2.08},
	}

	require.Len(t, book.Markets, len(expected))
	for market, outcomes := range expected {
		t.Run(market, func(t *testing.T) {
			got := book.Market(market)
			require.Len(t, got, len(outcomes))
			for label, odds := range outcomes {
				assert.InDelta(t, odds, got[label], 1e-9, "label %q", label)
			}
		})
	}
}

func TestOneXBetSubGames(t *testing.T) {
	n := NewOneXBet(types.SourceMelbet)
	main := loadFixture(t, "melbet_game.json")

	refs, err := n.SubGameRefs(main)
	require.NoError(t, err)
	assert.Equal(t, []SubGameRef{
		{ID: "612345679", Segment: types.SegmentCorners},
		{ID: "612345680", Segment: types.SegmentOffsides},
	}, refs)

	book, err := n.Normalize("612345678", main)
	require.NoError(t, err)

	err = n.NormalizeSubGame(book, types.SegmentCorners, loadFixture(t, "melbet_corners.json"))
	require.NoError(t, err)

	assert.Equal(t, types.Outcomes{"W1": 2.05, "X": 7.5, "W2": 2.3}, book.Market("Corners - 1X2"))
	assert.Equal(t, types.Outcomes{
		"Total Over (9.5)":  1.95,
		"Total Over (10.5)": 2.6,
		"Total Under (9.5)": 1.85,
	}, book.Market("Corners - Total"))
	assert.Equal(t, types.Outcomes{"Total Over (4.5)": 1.9, "Total Under (4.5)": 1.9}, book.Market("Corners - Home Team Total"))
	assert.Equal(t, types.Outcomes{"Arsenal (-1.5)": 1.9, "Chelsea (1.5)": 1.9}, book.Market("Corners - Handicap"))

	// main markets untouched
	assert.InDelta(t, 2.55, book.Odds("1X2", "W1"), 1e-9)
}

func TestOneXBetEmptyPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "no-value", payload: `{"Success": true}`},
		{name: "unsuccessful", payload: `{"Success": false, "Value": {"O1": "A"}}`},
		{name: "null-value", payload: `{"Value": null}`},
	}

	n := NewOneXBet(types.SourceMelbet)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize("1", []byte(tt.payload))
			assert.True(t, errors.Is(err, types.ErrEmptyPayload))
		})
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	book, err := r.Normalize(types.SourceMelbet, "x", loadFixture(t, "melbet_game.json"))
	require.NoError(t, err)
	assert.Equal(t, "x", book.FixtureRef)

	_, err = r.Normalize("bet365", "x", []byte(`{}`))
	assert.True(t, errors.Is(err, types.ErrUnknownSource))
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Bayern München", CleanName("  Bayern  München "))
	assert.Equal(t, "Chelsea FC", CleanName("Chelsea\tFC"))
}

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{name: "number", raw: `1.85`, expected: 1.85},
		{name: "string", raw: `"2.10"`, expected: 2.10},
		{name: "garbage", raw: `"n/a"`, expected: 0},
		{name: "null", raw: `null`, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f flexFloat
			require.NoError(t, f.UnmarshalJSON([]byte(tt.raw)))
			assert.InDelta(t, tt.expected, float64(f), 1e-9)
		})
	}
}
