package scanner

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/internal/similarity"
	"github.com/mselser95/bookie-arb/pkg/types"
)

// handicapTolerance is how far apart two handicap values may be and still be
// treated as exact opposites.
const handicapTolerance = 0.01

//nolint:gochecknoglobals
var handicapKeyRe = regexp.MustCompile(`^(.+) \(([+-]?\d+(?:\.\d+)?)\)$`)

func handicapMarkets() []string {
	markets := []string{types.MarketHandicap, types.MarketAsianHandicap}
	for _, segment := range types.Segments {
		markets = append(markets, types.SegmentMarket(segment, types.MarketHandicap))
	}

	return markets
}

// handicapLeg is one (side, value) outcome with each book's quote.
type handicapLeg struct {
	value  float64
	labelA string
	labelB string
	oddsA  float64
	oddsB  float64
}

func (l *handicapLeg) label() string {
	if l.labelA != "" {
		return l.labelA
	}

	return l.labelB
}

// quote is the leg's best quote, labelled the way the supplying book spells
// the outcome.
func (l *handicapLeg) quote(a, b *types.OddsBook) arbitrage.Leg {
	odds, src := best(l.oddsA, l.oddsB, a, b)
	label := l.labelA
	if odds != l.oddsA {
		label = l.labelB
	}

	return arbitrage.Leg{Label: label, Odds: odds, Source: src}
}

// handicapSides indexes legs by side (1 home, 2 away) and value key.
type handicapSides map[int]map[string]*handicapLeg

func (h handicapSides) leg(side int, value float64) *handicapLeg {
	if h[side] == nil {
		h[side] = make(map[string]*handicapLeg)
	}

	key := lineKey(value)
	l, ok := h[side][key]
	if !ok {
		l = &handicapLeg{value: value}
		h[side][key] = l
	}

	return l
}

// opposite finds the leg on side at -value within tolerance.
func (h handicapSides) opposite(side int, value float64) *handicapLeg {
	if l, ok := h[side][lineKey(-value)]; ok {
		return l
	}

	for _, l := range h[side] {
		if math.Abs(l.value+value) <= handicapTolerance {
			return l
		}
	}

	return nil
}

func (s *Scanner) scanHandicaps(a, b *types.OddsBook) []*arbitrage.Opportunity {
	var opps []*arbitrage.Opportunity

	for _, market := range handicapMarkets() {
		ma, mb := a.Market(market), b.Market(market)
		if ma == nil || mb == nil {
			continue
		}

		sides := make(handicapSides)
		addHandicaps(sides, a, ma, true)
		addHandicaps(sides, b, mb, false)

		homeLegs := make([]*handicapLeg, 0, len(sides[1]))
		for _, l := range sides[1] {
			homeLegs = append(homeLegs, l)
		}
		sort.Slice(homeLegs, func(i, j int) bool {
			return homeLegs[i].value < homeLegs[j].value
		})

		for _, home := range homeLegs {
			away := sides.opposite(2, home.value)
			if away == nil {
				continue
			}

			legs := []arbitrage.Leg{home.quote(a, b), away.quote(a, b)}
			if legs[0].Odds == 0 || legs[1].Odds == 0 {
				continue
			}

			if opp := arbitrage.NewOpportunity(handicapLabel(market, home.label(), away.label()), legs, s.stake); opp != nil {
				opps = append(opps, opp)
			}
		}
	}

	return opps
}

func handicapLabel(market, home, away string) string {
	if market == types.MarketAsianHandicap {
		return market + " " + home + " vs " + away
	}

	return market + ": " + home + " vs " + away
}

// addHandicaps parses "<team> (<value>)" keys of one book into sides.
func addHandicaps(sides handicapSides, book *types.OddsBook, m types.Outcomes, isA bool) {
	resolve := sideResolver(book, m)

	for key, odds := range m {
		match := handicapKeyRe.FindStringSubmatch(key)
		if match == nil {
			continue
		}

		value, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			continue
		}

		side := resolve(match[1])
		if side == 0 {
			continue
		}

		l := sides.leg(side, value)
		if isA {
			l.labelA, l.oddsA = key, odds
		} else {
			l.labelB, l.oddsB = key, odds
		}
	}
}

// sideResolver maps a handicap team name to 1 (home) or 2 (away) using the
// book's own header. Without a header the distinct names are ordered
// alphabetically, which only pairs reliably within one book.
func sideResolver(book *types.OddsBook, m types.Outcomes) func(team string) int {
	home, away := book.HomeTeam, book.AwayTeam

	if home == "" || away == "" {
		var names []string
		seen := make(map[string]bool)
		for key := range m {
			if match := handicapKeyRe.FindStringSubmatch(key); match != nil && !seen[match[1]] {
				seen[match[1]] = true
				names = append(names, match[1])
			}
		}
		sort.Strings(names)
		if len(names) > 0 && home == "" {
			home = names[0]
		}
		if len(names) > 1 && away == "" {
			away = names[1]
		}
	}

	return func(team string) int {
		switch {
		case team == types.OutcomeTeam1 || strings.EqualFold(team, home):
			return 1
		case team == types.OutcomeTeam2 || strings.EqualFold(team, away):
			return 2
		case home == "" || away == "":
			return 0
		}

		if similarity.Similarity(team, home) >= similarity.Similarity(team, away) {
			return 1
		}
		return 2
	}
}
