package normalizer

import (
	"strings"

	"github.com/mselser95/bookie-arb/pkg/types"
)

// outcomeSource selects the raw outcomes a rule reads from a Mostbet line.
type outcomeSource func(l *mostbetLine) []mostbetOutcome

type groupPred func(g *mostbetGroup) bool

// ruleAlt pairs an outcome source with the extractor for its title format.
type ruleAlt struct {
	from    outcomeSource
	extract extractor
}

// mostbetRule fills one canonical market. Alternatives are tried in order and
// the first one yielding a quote wins, unless merge is set, in which case all
// alternatives contribute.
type mostbetRule struct {
	market string
	alts   []ruleAlt
	merge  bool
}

func (r mostbetRule) apply(l *mostbetLine, t teams, book *types.OddsBook) {
	for _, alt := range r.alts {
		added := 0
		for _, o := range alt.from(l) {
			label, ok := alt.extract(o.TypeTitle, o.Alias, t)
			if !ok {
				continue
			}
			if book.Set(r.market, label, float64(o.Odd)) {
				added++
			}
		}

		if added > 0 && !r.merge {
			return
		}
	}
}

// group selects the outcomes of the first group titled one of titles.
func group(titles ...string) outcomeSource {
	return func(l *mostbetLine) []mostbetOutcome {
		for i := range l.groups {
			for _, title := range titles {
				if strings.EqualFold(l.groups[i].Title, title) {
					return l.groups[i].Outcomes
				}
			}
		}
		return nil
	}
}

// firstGroup selects the outcomes of the first group matching pred.
func firstGroup(pred groupPred) outcomeSource {
	return func(l *mostbetLine) []mostbetOutcome {
		for i := range l.groups {
			if pred(&l.groups[i]) {
				return l.groups[i].Outcomes
			}
		}
		return nil
	}
}

// inMarket selects the outcomes of the first group of market matching pred.
func inMarket(market string, pred groupPred) outcomeSource {
	return func(l *mostbetLine) []mostbetOutcome {
		for _, g := range l.marketGroups(market) {
			if pred(g) {
				return g.Outcomes
			}
		}
		return nil
	}
}

// allInMarket selects the outcomes of every group of market matching pred.
func allInMarket(market string, pred groupPred) outcomeSource {
	return func(l *mostbetLine) []mostbetOutcome {
		var out []mostbetOutcome
		for _, g := range l.marketGroups(market) {
			if pred(g) {
				out = append(out, g.Outcomes...)
			}
		}
		return out
	}
}

// anyOutcome selects outcomes across all groups matching pred.
func anyOutcome(pred func(g *mostbetGroup, o mostbetOutcome) bool) outcomeSource {
	return func(l *mostbetLine) []mostbetOutcome {
		var out []mostbetOutcome
		for i := range l.groups {
			for _, o := range l.groups[i].Outcomes {
				if pred(&l.groups[i], o) {
					out = append(out, o)
				}
			}
		}
		return out
	}
}

// topLevel selects the payload's flat outcome list.
func topLevel() outcomeSource {
	return func(l *mostbetLine) []mostbetOutcome {
		return l.outcomes
	}
}

func hasOutcome(titles ...string) groupPred {
	return func(g *mostbetGroup) bool {
		for _, o := range g.Outcomes {
			for _, t := range titles {
				if o.TypeTitle == t {
					return true
				}
			}
		}
		return false
	}
}

func hasOutcomeContaining(words ...string) groupPred {
	return func(g *mostbetGroup) bool {
		for _, o := range g.Outcomes {
			for _, w := range words {
				if strings.Contains(o.TypeTitle, w) {
					return true
				}
			}
		}
		return false
	}
}

func titleContains(word string) groupPred {
	word = strings.ToLower(word)
	return func(g *mostbetGroup) bool {
		return strings.Contains(strings.ToLower(g.Title), word)
	}
}

func titleLacks(words ...string) groupPred {
	return func(g *mostbetGroup) bool {
		return !containsAny(strings.ToLower(g.Title), words)
	}
}

func both(a, b groupPred) groupPred {
	return func(g *mostbetGroup) bool {
		return a(g) && b(g)
	}
}

const foulsGroupID = 12705

//nolint:gochecknoglobals
var (
	handicapWithDefault = handicap(handicapOpts{fallback: "0.0"})
	handicapStrict      = handicap(handicapOpts{})

	parenTotals = totals(totalsOpts{})
	bareTotals  = totals(totalsOpts{bare: true})
	mainTotals  = totals(totalsOpts{anyOf: []string{"total over", "total under"}, exclude: []string{"foul", "card", "corner"}})
)

func alt(from outcomeSource, extract extractor) ruleAlt {
	return ruleAlt{from: from, extract: extract}
}

// segmentRules covers the segment markets Mostbet publishes as standalone
// groups titled "<Segment> - 1x2", "<Segment> - Total", "<Segment> - Handicap"
// and "<Segment> - Total Home Team" / "<Segment> - Home Team Total".
func segmentRules(segment string) []mostbetRule {
	return []mostbetRule{
		{
			market: types.SegmentMarket(segment, types.Market1X2),
			alts: []ruleAlt{
				alt(group(segment+" - 1x2"), threeWay),
				alt(inMarket(segment, hasOutcome("W1", "X", "Х", "W2")), threeWay),
				alt(firstGroup(both(segmentGroup(segment), hasOutcome("W1", "X", "W2"))), threeWay),
			},
		},
		{
			market: types.SegmentMarket(segment, types.MarketTotal),
			alts: []ruleAlt{
				alt(group(segment+" - Total"), bareTotals),
				alt(inMarket(segment, both(titleContains("total"), titleLacks("home", "away", "team"))), bareTotals),
				alt(inMarket(segment, hasOutcomeContaining("Total Over", "Total Under")), bareTotals),
			},
		},
		{
			market: types.SegmentMarket(segment, types.MarketHomeTeamTotal),
			alts: []ruleAlt{
				alt(group(segment+" - Home Team Total", segment+" - Total Home Team"), bareTotals),
				alt(anyOutcome(segmentTeamTotal(segment, "home")), parenTotals),
			},
		},
		{
			market: types.SegmentMarket(segment, types.MarketAwayTeamTotal),
			alts: []ruleAlt{
				alt(group(segment+" - Away Team Total", segment+" - Total Away Team"), bareTotals),
				alt(anyOutcome(segmentTeamTotal(segment, "away")), parenTotals),
			},
		},
		{
			market: types.SegmentMarket(segment, types.MarketHandicap),
			alts: []ruleAlt{
				alt(group(segment+" - Handicap"), handicapWithDefault),
				alt(inMarket(segment, hasOutcomeContaining("Handicap")), handicapStrict),
			},
		},
	}
}

// segmentGroup matches groups that belong to a segment by title. Fouls groups
// are sometimes untitled and only recognizable by id.
func segmentGroup(segment string) groupPred {
	if segment == types.SegmentFouls {
		return func(g *mostbetGroup) bool {
			return titleContains("foul")(g) || g.ID == foulsGroupID
		}
	}

	return titleContains(segment)
}

// segmentTeamTotal matches team total outcomes of a segment scattered across
// groups, e.g. a "Corners" group holding "Corners Home Total Over (4.5)".
func segmentTeamTotal(segment, side string) func(g *mostbetGroup, o mostbetOutcome) bool {
	seg := strings.ToLower(segment)
	return func(g *mostbetGroup, o mostbetOutcome) bool {
		gt := strings.ToLower(g.Title)
		ot := strings.ToLower(o.TypeTitle)
		return (strings.Contains(gt, seg) || strings.Contains(ot, seg)) &&
			strings.Contains(ot, "total") &&
			(strings.Contains(gt, side) || strings.Contains(ot, side))
	}
}

//nolint:gochecknoglobals
var mostbetRules = buildMostbetRules()

func buildMostbetRules() []mostbetRule {
	rules := []mostbetRule{
		{
			market: types.Market1X2,
			alts:   []ruleAlt{alt(group("1x2"), threeWay)},
		},
		{
			market: types.MarketDoubleChance,
			alts: []ruleAlt{
				alt(group("Double Chance"), doubleChance),
				alt(firstGroup(hasOutcome("1X", "12", "X2", "2X")), doubleChance),
			},
		},
		{
			market: types.MarketDrawNoBet,
			alts:   []ruleAlt{alt(group("Draw No Bet"), twoWay)},
		},
		{
			market: types.MarketBTTS,
			alts:   []ruleAlt{alt(group("Both Teams To Score"), yesNo)},
		},
		{
			market: types.MarketTotal,
			merge:  true,
			alts: []ruleAlt{
				alt(allInMarket("Total", titleLacks("foul", "card", "corner", "team", "asian")), mainTotals),
				alt(group("Total"), mainTotals),
				alt(topLevel(), mainTotals),
			},
		},
		{
			market: types.MarketAsianTotal,
			alts: []ruleAlt{
				alt(group("Asian Total"), parenTotals),
				alt(anyOutcome(func(_ *mostbetGroup, o mostbetOutcome) bool {
					return strings.Contains(o.TypeTitle, "Asian Total")
				}), parenTotals),
			},
		},
		{
			market: types.MarketHomeTeamTotal,
			alts:   []ruleAlt{alt(group("Home Team Total"), bareTotals)},
		},
		{
			market: types.MarketAwayTeamTotal,
			alts:   []ruleAlt{alt(group("Away Team Total"), bareTotals)},
		},
		{
			market: types.MarketHandicap,
			alts: []ruleAlt{
				alt(group("Handicap"), handicapStrict),
				// outcomes titled "Handicap 1 (-1.5)" outside segment groups
				alt(anyOutcome(func(g *mostbetGroup, o mostbetOutcome) bool {
					return strings.HasPrefix(o.TypeTitle, "Handicap ") && !strings.Contains(g.Title, " - ")
				}), handicapStrict),
			},
		},
		{
			market: types.MarketAsianHandicap,
			alts:   []ruleAlt{alt(group("Asian handicap"), handicapStrict)},
		},
	}

	for _, segment := range types.Segments {
		rules = append(rules, segmentRules(segment)...)
	}

	for _, market := range types.FirstLastMarkets {
		rules = append(rules, mostbetRule{
			market: market,
			alts:   []ruleAlt{alt(group(market, strings.Replace(market, "Yellow Card", "Card", 1)), firstLast)},
		})
	}

	return rules
}
