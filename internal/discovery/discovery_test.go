package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/bookie-arb/internal/matcher"
	"github.com/mselser95/bookie-arb/pkg/types"
)

type fakeLister struct {
	name     string
	fixtures []types.RawFixture
	err      error

	mu    sync.Mutex
	calls int
}

func (f *fakeLister) Name() string { return f.name }

func (f *fakeLister) FetchFixtures(context.Context) ([]types.RawFixture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	return f.fixtures, f.err
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

type fakeSnapshots struct {
	fixtures map[string][]types.RawFixture
	pairs    []types.MatchedFixturePair
}

func (f *fakeSnapshots) WriteFixtures(source string, fixtures []types.RawFixture) error {
	f.fixtures[source] = fixtures
	return nil
}

func (f *fakeSnapshots) WritePairs(pairs []types.MatchedFixturePair) error {
	f.pairs = pairs
	return nil
}

var kickOff = time.Date(2026, 10, 20, 19, 0, 0, 0, time.UTC)

func fixture(source, id, home, away string) types.RawFixture {
	return types.RawFixture{SourceID: id, Source: source, HomeTeam: home, AwayTeam: away, StartTime: kickOff}
}

func newListers() (*fakeLister, *fakeLister) {
	mostbet := &fakeLister{name: types.SourceMostbet, fixtures: []types.RawFixture{
		fixture(types.SourceMostbet, "1", "Arsenal", "Chelsea"),
		fixture(types.SourceMostbet, "2", "Real Madrid", "Barcelona"),
		fixture(types.SourceMostbet, "", "Broken", "Fixture"),
	}}
	melbet := &fakeLister{name: types.SourceMelbet, fixtures: []types.RawFixture{
		fixture(types.SourceMelbet, "10", "Arsenal", "Chelsea"),
		fixture(types.SourceMelbet, "20", "Real Madrid", "Barcelona"),
		fixture(types.SourceMelbet, "30", "Lyon", "Nice"),
	}}

	return mostbet, melbet
}

func newTestService(t *testing.T, a, b Lister, staleAfter time.Duration) *Service {
	t.Helper()

	svc, err := New(&Config{
		SourceA:    a,
		SourceB:    b,
		Matcher:    matcher.New(matcher.Config{}),
		StaleAfter: staleAfter,
	})
	require.NoError(t, err)

	return svc
}

func TestNewRequiresSources(t *testing.T) {
	_, err := New(&Config{SourceA: &fakeLister{name: "a"}})
	assert.Error(t, err)
}

func TestRefresh(t *testing.T) {
	mostbet, melbet := newListers()
	snaps := &fakeSnapshots{fixtures: map[string][]types.RawFixture{}}

	svc, err := New(&Config{SourceA: mostbet, SourceB: melbet, Snapshots: snaps})
	require.NoError(t, err)

	pairs, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, pairs, 2)
	for _, p := range pairs {
		assert.Equal(t, types.SourceMostbet, p.FixtureA.Source)
		assert.Equal(t, types.SourceMelbet, p.FixtureB.Source)
	}

	assert.Len(t, svc.Fixtures(types.SourceMostbet), 2, "invalid fixture dropped")
	assert.Len(t, svc.Fixtures(types.SourceMelbet), 3)
	assert.False(t, svc.FetchedAt(types.SourceMostbet).IsZero())
	assert.False(t, svc.MatchedAt().IsZero())
	assert.Equal(t, pairs, svc.CachedPairs())

	assert.Len(t, snaps.fixtures[types.SourceMostbet], 2)
	assert.Len(t, snaps.fixtures[types.SourceMelbet], 3)
	assert.Equal(t, pairs, snaps.pairs)
}

func TestRefreshSourceFailure(t *testing.T) {
	mostbet, melbet := newListers()
	melbet.err = errors.New("all domains down")

	svc := newTestService(t, mostbet, melbet, time.Minute)

	_, err := svc.Refresh(context.Background())
	require.ErrorIs(t, err, melbet.err)
	assert.Empty(t, svc.CachedPairs())
	assert.Len(t, svc.Fixtures(types.SourceMostbet), 2)
}

func TestMatchNeedsBothLists(t *testing.T) {
	mostbet, melbet := newListers()
	svc := newTestService(t, mostbet, melbet, time.Minute)

	_, err := svc.Match(context.Background())
	require.ErrorIs(t, err, ErrNoFixtures)

	_, err = svc.FetchSource(context.Background(), types.SourceMostbet)
	require.NoError(t, err)
	_, err = svc.Match(context.Background())
	require.ErrorIs(t, err, ErrNoFixtures)

	n, err := svc.FetchSource(context.Background(), types.SourceMelbet)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	pairs, err := svc.Match(context.Background())
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
}

func TestFetchSourceUnknown(t *testing.T) {
	mostbet, melbet := newListers()
	svc := newTestService(t, mostbet, melbet, time.Minute)

	_, err := svc.FetchSource(context.Background(), "bet365")
	require.ErrorIs(t, err, types.ErrUnknownSource)
}

func TestBestMatchOnly(t *testing.T) {
	mostbet := &fakeLister{name: types.SourceMostbet, fixtures: []types.RawFixture{
		fixture(types.SourceMostbet, "1", "Arsenal", "Chelsea"),
	}}
	melbet := &fakeLister{name: types.SourceMelbet, fixtures: []types.RawFixture{
		fixture(types.SourceMelbet, "10", "Arsenal", "Chelsea"),
		fixture(types.SourceMelbet, "11", "Arsenal FC", "Chelsea FC"),
	}}

	all := newTestService(t, mostbet, melbet, time.Minute)
	pairs, err := all.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	best, err := New(&Config{SourceA: mostbet, SourceB: melbet, BestMatchOnly: true})
	require.NoError(t, err)
	pairs, err = best.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "10", pairs[0].FixtureB.SourceID)
}

func TestPairsRefreshPolicy(t *testing.T) {
	mostbet, melbet := newListers()
	svc := newTestService(t, mostbet, melbet, 15*time.Minute)

	now := time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	pairs, err := svc.Pairs(context.Background())
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
	assert.Equal(t, 1, mostbet.callCount(), "empty pairs refresh")

	now = now.Add(10 * time.Minute)
	_, err = svc.Pairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, mostbet.callCount(), "fresh pairs are reused")

	now = now.Add(6 * time.Minute)
	_, err = svc.Pairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, mostbet.callCount(), "stale pairs refresh")
	assert.Equal(t, 2, melbet.callCount())
}

func TestPairsRefreshWhenEmpty(t *testing.T) {
	mostbet := &fakeLister{name: types.SourceMostbet}
	melbet := &fakeLister{name: types.SourceMelbet}
	svc := newTestService(t, mostbet, melbet, time.Hour)

	for range 2 {
		pairs, err := svc.Pairs(context.Background())
		require.NoError(t, err)
		assert.Empty(t, pairs)
	}

	assert.Equal(t, 2, mostbet.callCount())
}

func TestPairsConcurrentCallersRefreshOnce(t *testing.T) {
	mostbet, melbet := newListers()
	svc := newTestService(t, mostbet, melbet, time.Hour)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pairs, err := svc.Pairs(context.Background())
			assert.NoError(t, err)
			assert.Len(t, pairs, 2)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, mostbet.callCount())
}
