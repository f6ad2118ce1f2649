package scanner

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/pkg/types"
)

//nolint:gochecknoglobals
var totalKeyRe = regexp.MustCompile(`^(Total )?(Over|Under) \((\d+(?:\.\d+)?)\)$`)

func totalsMarkets() []string {
	markets := []string{
		types.MarketTotal,
		types.MarketAsianTotal,
		types.MarketHomeTeamTotal,
		types.MarketAwayTeamTotal,
	}
	for _, segment := range types.Segments {
		markets = append(markets,
			types.SegmentMarket(segment, types.MarketTotal),
			types.SegmentMarket(segment, types.MarketHomeTeamTotal),
			types.SegmentMarket(segment, types.MarketAwayTeamTotal),
		)
	}

	return markets
}

// lineQuotes holds one book's quotes for a totals line under both spellings.
type lineQuotes struct {
	raw        string
	value      float64
	longOver   float64
	longUnder  float64
	shortOver  float64
	shortUnder float64
}

func (q *lineQuotes) resolve(shortFirst bool) (over, under float64) {
	if q == nil {
		return 0, 0
	}

	pick := func(short, long float64) float64 {
		if shortFirst {
			if short > 0 {
				return short
			}
			return long
		}
		if long > 0 {
			return long
		}
		return short
	}

	return pick(q.shortOver, q.longOver), pick(q.shortUnder, q.longUnder)
}

// indexLines groups a totals market's quotes by numeric line, so "2.5" and
// "2.50" or "Over (2.5)" and "Total Over (2.5)" land on the same line.
func indexLines(m types.Outcomes) map[string]*lineQuotes {
	idx := make(map[string]*lineQuotes)

	for key, odds := range m {
		match := totalKeyRe.FindStringSubmatch(key)
		if match == nil {
			continue
		}

		value, err := strconv.ParseFloat(match[3], 64)
		if err != nil {
			continue
		}

		norm := lineKey(value)
		q, ok := idx[norm]
		if !ok {
			q = &lineQuotes{raw: match[3], value: value}
			idx[norm] = q
		}

		long := match[1] != ""
		switch {
		case match[2] == "Over" && long:
			q.longOver = odds
		case match[2] == "Over":
			q.shortOver = odds
		case long:
			q.longUnder = odds
		default:
			q.shortUnder = odds
		}
	}

	return idx
}

func lineKey(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // drop negative zero
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s *Scanner) scanTotals(a, b *types.OddsBook) []*arbitrage.Opportunity {
	var opps []*arbitrage.Opportunity

	for _, market := range totalsMarkets() {
		ma, mb := a.Market(market), b.Market(market)
		if ma == nil || mb == nil {
			continue
		}

		idxA, idxB := indexLines(ma), indexLines(mb)
		shortFirst := prefersShortTotals(market)

		for _, key := range unionLines(idxA, idxB) {
			qa, qb := idxA[key], idxB[key]

			overA, underA := qa.resolve(shortFirst)
			overB, underB := qb.resolve(shortFirst)
			if (overA == 0 || underA == 0) && (overB == 0 || underB == 0) {
				continue
			}

			over, srcOver := best(overA, overB, a, b)
			under, srcUnder := best(underA, underB, a, b)
			if over == 0 || under == 0 {
				continue
			}

			raw := key
			if qa != nil {
				raw = qa.raw
			} else if qb != nil {
				raw = qb.raw
			}

			legs := []arbitrage.Leg{
				{Label: types.TotalOver(raw), Odds: over, Source: srcOver},
				{Label: types.TotalUnder(raw), Odds: under, Source: srcUnder},
			}
			if opp := arbitrage.NewOpportunity(market+" ("+raw+")", legs, s.stake); opp != nil {
				opps = append(opps, opp)
			}
		}
	}

	return opps
}

// unionLines returns the line keys of both indexes in ascending numeric order.
func unionLines(a, b map[string]*lineQuotes) []string {
	values := make(map[string]float64, len(a)+len(b))
	for k, q := range a {
		values[k] = q.value
	}
	for k, q := range b {
		values[k] = q.value
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return values[keys[i]] < values[keys[j]]
	})

	return keys
}
