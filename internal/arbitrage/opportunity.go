package arbitrage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Leg is one outcome of an opportunity with the best quote found for it.
type Leg struct {
	Label  string  `json:"label"`
	Odds   float64 `json:"odds"`
	Source string  `json:"source"`
}

// Opportunity is a guaranteed-profit combination of quotes for one market of
// one matched fixture pair.
type Opportunity struct {
	ID                string    `json:"id"`
	Market            string    `json:"market"`
	Legs              []Leg     `json:"legs"`
	IsArbitrage       bool      `json:"isArbitrage"`
	TotalImplied      float64   `json:"totalImplied"`
	ProfitPercent     float64   `json:"profitPercent"`
	TotalStake        float64   `json:"totalStake"`
	StakeDistribution []float64 `json:"stakeDistribution"`
	ExpectedReturn    float64   `json:"expectedReturn"`
	ExpectedProfit    float64   `json:"expectedProfit"`
	Condition         string    `json:"condition"`

	// Set by the caller once the fixture pair is known.
	FixtureKey string    `json:"fixtureKey,omitempty"`
	HomeTeam   string    `json:"homeTeam,omitempty"`
	AwayTeam   string    `json:"awayTeam,omitempty"`
	League     string    `json:"league,omitempty"`
	StartTime  time.Time `json:"startTime,omitempty"`
	DetectedAt time.Time `json:"detectedAt"`
}

// NewOpportunity evaluates the legs' odds and returns an opportunity, or nil
// when the odds do not form an arbitrage.
func NewOpportunity(market string, legs []Leg, stake float64) *Opportunity {
	odds := make([]float64, len(legs))
	for i, l := range legs {
		odds[i] = l.Odds
	}

	res := Evaluate(odds, stake)
	if !res.IsArbitrage {
		return nil
	}

	return &Opportunity{
		ID:                uuid.New().String(),
		Market:            market,
		Legs:              legs,
		IsArbitrage:       true,
		TotalImplied:      res.TotalImplied,
		ProfitPercent:     res.ProfitPercent,
		TotalStake:        res.TotalStake,
		StakeDistribution: res.StakeDistribution,
		ExpectedReturn:    res.ExpectedReturn,
		ExpectedProfit:    res.ExpectedProfit,
		Condition:         Condition(odds),
		DetectedAt:        time.Now(),
	}
}

// Condition renders the implied probability sum of odds, for example
// "Sum of implied probabilities: 0.4762 + 0.2632 + 0.2381 = 0.9774 < 1".
func Condition(odds []float64) string {
	parts := make([]string, len(odds))
	for i, o := range odds {
		parts[i] = fmt.Sprintf("%.4f", 1/o)
	}

	return fmt.Sprintf("Sum of implied probabilities: %s = %.4f < 1",
		strings.Join(parts, " + "), ImpliedSum(odds))
}

// Sources returns the distinct sources backing the legs, in leg order.
func (o *Opportunity) Sources() []string {
	seen := make(map[string]bool, len(o.Legs))
	out := make([]string, 0, len(o.Legs))
	for _, l := range o.Legs {
		if !seen[l.Source] {
			seen[l.Source] = true
			out = append(out, l.Source)
		}
	}

	return out
}

// DedupKey identifies the opportunity across scans: fixture, market and the
// source of each leg. Odds are left out so small price moves do not re-alert.
func (o *Opportunity) DedupKey() string {
	sources := make([]string, len(o.Legs))
	for i, l := range o.Legs {
		sources[i] = l.Label + "@" + l.Source
	}

	return o.FixtureKey + "|" + o.Market + "|" + strings.Join(sources, ",")
}

// MarketFamily strips line and team details from a market label so it can be
// used as a metric label: "Corners - Total (9.5)" becomes "Corners - Total".
func MarketFamily(label string) string {
	if strings.HasPrefix(label, "Asian Handicap ") {
		return "Asian Handicap"
	}
	if i := strings.Index(label, ": "); i > 0 {
		label = label[:i]
	}
	if i := strings.Index(label, " ("); i > 0 {
		label = label[:i]
	}

	return label
}
