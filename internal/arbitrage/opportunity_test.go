package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpportunity(t *testing.T) {
	legs := []Leg{
		{Label: "Total Over (2.5)", Odds: 2.10, Source: "mostbet"},
		{Label: "Total Under (2.5)", Odds: 2.05, Source: "melbet"},
	}

	opp := NewOpportunity("Total (2.5)", legs, 1000)

	require.NotNil(t, opp)
	assert.NotEmpty(t, opp.ID)
	assert.True(t, opp.IsArbitrage)
	assert.Equal(t, "Total (2.5)", opp.Market)
	assert.Len(t, opp.StakeDistribution, 2)
	assert.InDelta(t, 1000, opp.TotalStake, 1e-9)
	assert.Equal(t, "Sum of implied probabilities: 0.4762 + 0.4878 = 0.9640 < 1", opp.Condition)
	assert.Equal(t, []string{"mostbet", "melbet"}, opp.Sources())
	assert.False(t, opp.DetectedAt.IsZero())
}

func TestNewOpportunityNoArbitrage(t *testing.T) {
	legs := []Leg{
		{Label: "Yes", Odds: 1.8, Source: "mostbet"},
		{Label: "No", Odds: 1.9, Source: "mostbet"},
	}

	assert.Nil(t, NewOpportunity("Both Teams To Score", legs, 1000))
}

func TestMarketFamily(t *testing.T) {
	tests := []struct {
		label    string
		expected string
	}{
		{label: "1X2", expected: "1X2"},
		{label: "Total (2.5)", expected: "Total"},
		{label: "Corners - Total (9.5)", expected: "Corners - Total"},
		{label: "Asian Handicap Arsenal (-1.5) vs Chelsea (1.5)", expected: "Asian Handicap"},
		{label: "Corners - Handicap: Arsenal (-2.5) vs Chelsea (2.5)", expected: "Corners - Handicap"},
		{label: "Handicap: Arsenal (-1) vs Chelsea (1)", expected: "Handicap"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.expected, MarketFamily(tt.label))
		})
	}
}

func TestDedupKeyIgnoresOdds(t *testing.T) {
	a := CreateTestOpportunity("mostbet:1|melbet:2", "1X2")
	b := CreateTestOpportunity("mostbet:1|melbet:2", "1X2")
	b.Legs[0].Odds = 2.7

	assert.Equal(t, a.DedupKey(), b.DedupKey())

	c := CreateTestOpportunity("mostbet:1|melbet:2", "1X2")
	c.Legs[0].Source = "melbet"
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
}

func TestMockStorage(t *testing.T) {
	store := NewMockStorage()
	opp := CreateTestOpportunity("k", "1X2")

	require.NoError(t, store.StoreOpportunity(t.Context(), opp))
	assert.Len(t, store.GetOpportunities(), 1)

	store.Clear()
	assert.Empty(t, store.GetOpportunities())
	assert.NoError(t, store.Close())
}
