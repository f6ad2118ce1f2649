package arbitrage

import "math"

// DefaultStake is the bankroll split across legs when none is given.
const DefaultStake = 1000.0

// Result is the outcome of evaluating one set of complementary odds.
type Result struct {
	IsArbitrage       bool      `json:"isArbitrage"`
	TotalImplied      float64   `json:"totalImplied"`
	ProfitPercent     float64   `json:"profitPercent"`
	TotalStake        float64   `json:"totalStake"`
	StakeDistribution []float64 `json:"stakeDistribution"`
	ExpectedReturn    float64   `json:"expectedReturn"`
	ExpectedProfit    float64   `json:"expectedProfit"`
}

// Evaluate checks whether backing every outcome at the given decimal odds
// guarantees a profit and, if so, how to split stake across them.
//
// Stakes are proportional to implied probability and rounded to cents. The
// return, profit and profit percent are derived from the first rounded stake,
// not from 1 - sum(1/o). A stake <= 0 uses DefaultStake.
func Evaluate(odds []float64, stake float64) Result {
	if stake <= 0 {
		stake = DefaultStake
	}

	res := Result{
		TotalStake:        stake,
		StakeDistribution: []float64{},
	}

	if len(odds) == 0 {
		return res
	}

	total := 0.0
	for _, o := range odds {
		if o <= 0 || math.IsNaN(o) || math.IsInf(o, 0) {
			return res
		}
		total += 1 / o
	}
	res.TotalImplied = total

	if total >= 1 {
		return res
	}

	stakes := make([]float64, len(odds))
	for i, o := range odds {
		stakes[i] = Round2((1 / o) / total * stake)
	}

	ret := stakes[0] * odds[0]

	res.IsArbitrage = true
	res.StakeDistribution = stakes
	res.ProfitPercent = Round2((ret - stake) / stake * 100)
	res.ExpectedReturn = Round2(ret)
	res.ExpectedProfit = Round2(ret - stake)

	return res
}

// ImpliedSum returns the sum of implied probabilities of the odds.
func ImpliedSum(odds []float64) float64 {
	total := 0.0
	for _, o := range odds {
		total += 1 / o
	}

	return total
}

// Round2 rounds to two decimals, halves up.
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// MatchResult evaluates a home/draw/away market.
func MatchResult(home, draw, away, stake float64) Result {
	return Evaluate([]float64{home, draw, away}, stake)
}

// DoubleChance evaluates 1X, X2 and 12.
func DoubleChance(homeOrDraw, drawOrAway, homeOrAway, stake float64) Result {
	return Evaluate([]float64{homeOrDraw, drawOrAway, homeOrAway}, stake)
}

// DrawNoBet evaluates a two-way home/away market.
func DrawNoBet(home, away, stake float64) Result {
	return Evaluate([]float64{home, away}, stake)
}

// OverUnder evaluates a totals line.
func OverUnder(over, under, stake float64) Result {
	return Evaluate([]float64{over, under}, stake)
}

// BTTS evaluates both-teams-to-score.
func BTTS(yes, no, stake float64) Result {
	return Evaluate([]float64{yes, no}, stake)
}

// WhichTeam evaluates a two-way "which team has more" market.
func WhichTeam(teamA, teamB, stake float64) Result {
	return Evaluate([]float64{teamA, teamB}, stake)
}

// FirstLast evaluates a first/last event market (team 1, team 2, none).
func FirstLast(team1, team2, none, stake float64) Result {
	return Evaluate([]float64{team1, team2, none}, stake)
}

// ExactNumber evaluates a market with any number of exclusive outcomes.
func ExactNumber(stake float64, odds ...float64) Result {
	return Evaluate(odds, stake)
}
