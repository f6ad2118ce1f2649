package types

import "fmt"

// Canonical market keys.
const (
	Market1X2           = "1X2"
	MarketDoubleChance  = "Double Chance"
	MarketBTTS          = "Both Teams To Score"
	MarketDrawNoBet     = "Draw No Bet"
	MarketTotal         = "Total"
	MarketAsianTotal    = "Asian Total"
	MarketHomeTeamTotal = "Home Team Total"
	MarketAwayTeamTotal = "Away Team Total"
	MarketHandicap      = "Handicap"
	MarketAsianHandicap = "Asian Handicap"

	MarketFirstCorner     = "First Corner"
	MarketLastCorner      = "Last Corner"
	MarketFirstYellowCard = "First Yellow Card"
	MarketLastYellowCard  = "Last Yellow Card"
	MarketFirstGoal       = "First Goal"
	MarketLastGoal        = "Last Goal"
)

// Match segments that carry their own sub-markets ("Corners - 1X2").
const (
	SegmentCorners     = "Corners"
	SegmentYellowCards = "Yellow Cards"
	SegmentFouls       = "Fouls"
	SegmentOffsides    = "Offsides"
	SegmentThrowIns    = "Throw-ins"
)

// Segments lists every segment in scan order.
var Segments = []string{ //nolint:gochecknoglobals
	SegmentCorners,
	SegmentYellowCards,
	SegmentFouls,
	SegmentOffsides,
	SegmentThrowIns,
}

// FirstLastMarkets lists the first/last event markets.
var FirstLastMarkets = []string{ //nolint:gochecknoglobals
	MarketFirstCorner,
	MarketLastCorner,
	MarketFirstYellowCard,
	MarketLastYellowCard,
	MarketFirstGoal,
	MarketLastGoal,
}

// Canonical outcome labels.
const (
	OutcomeW1  = "W1"
	OutcomeX   = "X"
	OutcomeW2  = "W2"
	Outcome1X  = "1X"
	OutcomeX2  = "X2"
	Outcome12  = "12"
	OutcomeYes = "Yes"
	OutcomeNo  = "No"

	OutcomeTeam1   = "Team 1"
	OutcomeTeam2   = "Team 2"
	OutcomeNoEvent = "No Event"
	OutcomeNoGoal  = "No Goal"
)

// SegmentMarket joins a segment and a market key: SegmentMarket("Corners", "Total") is "Corners - Total".
func SegmentMarket(segment, market string) string {
	return segment + " - " + market
}

// TotalOver is the canonical over label for a totals line.
func TotalOver(line string) string {
	return fmt.Sprintf("Total Over (%s)", line)
}

// TotalUnder is the canonical under label for a totals line.
func TotalUnder(line string) string {
	return fmt.Sprintf("Total Under (%s)", line)
}

// ShortOver is the short over label some books use for team and card totals.
func ShortOver(line string) string {
	return fmt.Sprintf("Over (%s)", line)
}

// ShortUnder is the short under label.
func ShortUnder(line string) string {
	return fmt.Sprintf("Under (%s)", line)
}

// HandicapLabel renders a handicap outcome as "<team> (<value>)".
func HandicapLabel(team, value string) string {
	return fmt.Sprintf("%s (%s)", team, value)
}
