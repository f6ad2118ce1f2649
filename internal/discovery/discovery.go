// Package discovery keeps the latest fixture lists of both bookmakers and the
// pairs the matcher finds between them.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/matcher"
	"github.com/mselser95/bookie-arb/pkg/types"
)

// ErrNoFixtures is returned when matching is asked for before both lists
// were fetched.
var ErrNoFixtures = errors.New("fixture list not fetched")

// Lister lists upcoming fixtures of one bookmaker.
type Lister interface {
	Name() string
	FetchFixtures(ctx context.Context) ([]types.RawFixture, error)
}

// SnapshotWriter persists fixture lists and pairs.
type SnapshotWriter interface {
	WriteFixtures(source string, fixtures []types.RawFixture) error
	WritePairs(pairs []types.MatchedFixturePair) error
}

// Service refreshes fixture lists and matched pairs.
type Service struct {
	sourceA    Lister
	sourceB    Lister
	matcher    *matcher.Matcher
	bestOnly   bool
	staleAfter time.Duration
	snapshots  SnapshotWriter
	logger     *zap.Logger
	now        func() time.Time

	// refreshMu serializes fetches of the same source and matcher runs.
	refreshMu sync.Mutex

	mu        sync.RWMutex
	fixtures  map[string][]types.RawFixture
	fetchedAt map[string]time.Time
	pairs     []types.MatchedFixturePair
	matchedAt time.Time
}

// Config holds discovery service configuration.
type Config struct {
	// SourceA fixtures become FixtureA of every pair.
	SourceA       Lister
	SourceB       Lister
	Matcher       *matcher.Matcher
	BestMatchOnly bool
	// StaleAfter is how old the pairs may get before Pairs refreshes them.
	StaleAfter time.Duration
	// Snapshots is optional.
	Snapshots SnapshotWriter
	Logger    *zap.Logger
}

// New creates a discovery service.
func New(cfg *Config) (*Service, error) {
	if cfg.SourceA == nil || cfg.SourceB == nil {
		return nil, errors.New("discovery needs two sources")
	}

	m := cfg.Matcher
	if m == nil {
		m = matcher.New(matcher.Config{})
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		sourceA:    cfg.SourceA,
		sourceB:    cfg.SourceB,
		matcher:    m,
		bestOnly:   cfg.BestMatchOnly,
		staleAfter: cfg.StaleAfter,
		snapshots:  cfg.Snapshots,
		logger:     logger,
		now:        time.Now,
		fixtures:   make(map[string][]types.RawFixture, 2),
		fetchedAt:  make(map[string]time.Time, 2),
	}, nil
}

func (s *Service) lister(source string) (Lister, error) {
	switch source {
	case s.sourceA.Name():
		return s.sourceA, nil
	case s.sourceB.Name():
		return s.sourceB, nil
	default:
		return nil, fmt.Errorf("source %q: %w", source, types.ErrUnknownSource)
	}
}

// FetchSource fetches the fixture list of source and keeps it. Invalid
// fixtures are dropped. It returns the number of fixtures kept.
func (s *Service) FetchSource(ctx context.Context, source string) (int, error) {
	l, err := s.lister(source)
	if err != nil {
		return 0, err
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	return s.fetch(ctx, l)
}

func (s *Service) fetch(ctx context.Context, l Lister) (int, error) {
	start := s.now()
	defer func() {
		FetchDurationSeconds.WithLabelValues(l.Name()).Observe(time.Since(start).Seconds())
	}()

	raw, err := l.FetchFixtures(ctx)
	if err != nil {
		FetchErrorsTotal.WithLabelValues(l.Name()).Inc()
		return 0, fmt.Errorf("fetch %s fixtures: %w", l.Name(), err)
	}

	fixtures := make([]types.RawFixture, 0, len(raw))
	for _, f := range raw {
		if !f.Valid() {
			s.logger.Debug("skipping-invalid-fixture", zap.String("fixture", f.String()))
			continue
		}
		fixtures = append(fixtures, f)
	}

	s.mu.Lock()
	s.fixtures[l.Name()] = fixtures
	s.fetchedAt[l.Name()] = s.now()
	s.mu.Unlock()

	FixturesListed.WithLabelValues(l.Name()).Set(float64(len(fixtures)))

	if s.snapshots != nil {
		err = s.snapshots.WriteFixtures(l.Name(), fixtures)
		if err != nil {
			s.logger.Warn("fixture-snapshot-failed", zap.String("source", l.Name()), zap.Error(err))
		}
	}

	s.logger.Info("fixtures-fetched",
		zap.String("source", l.Name()),
		zap.Int("fixture-count", len(fixtures)),
		zap.Int("skipped", len(raw)-len(fixtures)),
		zap.Duration("duration", time.Since(start)))

	return len(fixtures), nil
}

// Match runs the matcher over the kept fixture lists and keeps the pairs.
func (s *Service) Match(ctx context.Context) ([]types.MatchedFixturePair, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	return s.match(ctx)
}

func (s *Service) match(ctx context.Context) ([]types.MatchedFixturePair, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	a, okA := s.fixtures[s.sourceA.Name()]
	b, okB := s.fixtures[s.sourceB.Name()]
	s.mu.RUnlock()

	if !okA {
		return nil, fmt.Errorf("match %s: %w", s.sourceA.Name(), ErrNoFixtures)
	}
	if !okB {
		return nil, fmt.Errorf("match %s: %w", s.sourceB.Name(), ErrNoFixtures)
	}

	start := s.now()
	pairs := s.matcher.FindMatches(a, b)
	if s.bestOnly {
		pairs = matcher.BestPerFixture(pairs)
	}

	s.mu.Lock()
	s.pairs = pairs
	s.matchedAt = s.now()
	s.mu.Unlock()

	MatchedPairs.Set(float64(len(pairs)))
	LastMatchTimestamp.SetToCurrentTime()

	if s.snapshots != nil {
		err = s.snapshots.WritePairs(pairs)
		if err != nil {
			s.logger.Warn("pairs-snapshot-failed", zap.Error(err))
		}
	}

	s.logger.Info("fixtures-matched",
		zap.Int(s.sourceA.Name()+"-count", len(a)),
		zap.Int(s.sourceB.Name()+"-count", len(b)),
		zap.Int("pair-count", len(pairs)),
		zap.Bool("best-only", s.bestOnly),
		zap.Duration("duration", time.Since(start)))

	return pairs, nil
}

// Refresh fetches both fixture lists and matches them.
func (s *Service) Refresh(ctx context.Context) ([]types.MatchedFixturePair, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) ([]types.MatchedFixturePair, error) {
	for _, l := range []Lister{s.sourceA, s.sourceB} {
		_, err := s.fetch(ctx, l)
		if err != nil {
			return nil, err
		}
	}

	return s.match(ctx)
}

// Pairs returns the kept pairs, refreshing everything first when they are
// empty or older than the staleness threshold.
func (s *Service) Pairs(ctx context.Context) ([]types.MatchedFixturePair, error) {
	if pairs, ok := s.fresh(); ok {
		return pairs, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Another caller may have refreshed while we waited.
	if pairs, ok := s.fresh(); ok {
		return pairs, nil
	}

	s.logger.Info("pairs-stale-refreshing", zap.Time("matched-at", s.MatchedAt()))

	return s.refresh(ctx)
}

func (s *Service) fresh() ([]types.MatchedFixturePair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.pairs) == 0 || s.matchedAt.IsZero() {
		return nil, false
	}
	if s.staleAfter > 0 && s.now().Sub(s.matchedAt) > s.staleAfter {
		return nil, false
	}

	return s.pairs, true
}

// CachedPairs returns the kept pairs without refreshing.
func (s *Service) CachedPairs() []types.MatchedFixturePair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pairs
}

// Fixtures returns the kept fixture list of source.
func (s *Service) Fixtures(source string) []types.RawFixture {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fixtures[source]
}

// FetchedAt returns when the list of source was last fetched.
func (s *Service) FetchedAt(source string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fetchedAt[source]
}

// MatchedAt returns when the pairs were last computed.
func (s *Service) MatchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.matchedAt
}
