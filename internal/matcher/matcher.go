// Package matcher pairs fixtures listed by two bookmakers.
package matcher

import (
	"math"
	"sort"
	"time"

	"github.com/mselser95/bookie-arb/internal/similarity"
	"github.com/mselser95/bookie-arb/pkg/types"
)

const (
	// DefaultSimilarityThreshold is the minimum average team similarity.
	DefaultSimilarityThreshold = 0.6

	// DefaultMaxTimeDelta is the largest start time difference tolerated.
	DefaultMaxTimeDelta = 5 * time.Minute

	scoreEpsilon = 1e-9
)

// Config holds matcher thresholds. Zero values fall back to the defaults.
type Config struct {
	SimilarityThreshold float64
	MaxTimeDelta        time.Duration
}

// Matcher finds fixtures that refer to the same real-world match.
type Matcher struct {
	threshold    float64
	maxDeltaMins float64
}

// New creates a matcher.
func New(cfg Config) *Matcher {
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	maxDelta := cfg.MaxTimeDelta
	if maxDelta <= 0 {
		maxDelta = DefaultMaxTimeDelta
	}

	return &Matcher{
		threshold:    threshold,
		maxDeltaMins: maxDelta.Minutes(),
	}
}

// FindMatches compares every fixture of a with every fixture of b and returns
// the pairs above the similarity threshold and within the time window, sorted
// by similarity descending. Ties keep cross-product order. A fixture may appear
// in several pairs.
func (m *Matcher) FindMatches(a, b []types.RawFixture) []types.MatchedFixturePair {
	var pairs []types.MatchedFixturePair

	for _, fa := range a {
		if !fa.Valid() {
			continue
		}

		for _, fb := range b {
			if !fb.Valid() {
				continue
			}

			pair, ok := m.compare(fa, fb)
			if ok {
				pairs = append(pairs, pair)
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].SimilarityScore > pairs[j].SimilarityScore
	})

	return pairs
}

func (m *Matcher) compare(a, b types.RawFixture) (types.MatchedFixturePair, bool) {
	homeSim := similarity.Similarity(a.HomeTeam, b.HomeTeam)
	awaySim := similarity.Similarity(a.AwayTeam, b.AwayTeam)
	revHomeSim := similarity.Similarity(a.HomeTeam, b.AwayTeam)
	revAwaySim := similarity.Similarity(a.AwayTeam, b.HomeTeam)

	normal := homeSim + awaySim
	reversed := revHomeSim + revAwaySim
	isReversed := reversed > normal

	score := normal / 2
	if isReversed {
		score = reversed / 2
	}

	deltaMins := math.Abs(float64(a.StartTime.UnixMilli()-b.StartTime.UnixMilli())) / 60000

	if score+scoreEpsilon < m.threshold || deltaMins > m.maxDeltaMins+scoreEpsilon {
		return types.MatchedFixturePair{}, false
	}

	return types.MatchedFixturePair{
		FixtureA:         a,
		FixtureB:         b,
		SimilarityScore:  score,
		IsTeamsReversed:  isReversed,
		TimeDeltaMinutes: deltaMins,
	}, true
}

// FindMatches runs a matcher with default thresholds.
func FindMatches(a, b []types.RawFixture) []types.MatchedFixturePair {
	return New(Config{}).FindMatches(a, b)
}

// BestPerFixture keeps at most one pair per fixture on either side, taking
// pairs greedily in score order. Input must already be sorted by score.
func BestPerFixture(pairs []types.MatchedFixturePair) []types.MatchedFixturePair {
	usedA := make(map[string]bool, len(pairs))
	usedB := make(map[string]bool, len(pairs))

	out := make([]types.MatchedFixturePair, 0, len(pairs))
	for _, p := range pairs {
		if usedA[p.FixtureA.SourceID] || usedB[p.FixtureB.SourceID] {
			continue
		}
		usedA[p.FixtureA.SourceID] = true
		usedB[p.FixtureB.SourceID] = true
		out = append(out, p)
	}

	return out
}
