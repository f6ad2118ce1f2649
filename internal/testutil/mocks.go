package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/pkg/types"
)

// MockPairSource returns a fixed pair list.
type MockPairSource struct {
	List []types.MatchedFixturePair
	Err    error
}

// Pairs returns the configured pairs.
func (m *MockPairSource) Pairs(context.Context) ([]types.MatchedFixturePair, error) {
	return m.List, m.Err
}

// MockSource is an in-memory bookmaker.
type MockSource struct {
	SourceName string
	Fixtures   []types.RawFixture
	Books      map[string]*types.OddsBook
	// Errors fails FetchOdds for the listed fixture ids.
	Errors map[string]error

	mu        sync.Mutex
	oddsCalls map[string]int
}

// NewMockSource creates an empty mock bookmaker.
func NewMockSource(name string) *MockSource {
	return &MockSource{
		SourceName: name,
		Books:      make(map[string]*types.OddsBook),
		Errors:     make(map[string]error),
		oddsCalls:  make(map[string]int),
	}
}

// Name returns the source id.
func (m *MockSource) Name() string {
	return m.SourceName
}

// FetchFixtures returns the configured fixtures.
func (m *MockSource) FetchFixtures(context.Context) ([]types.RawFixture, error) {
	return m.Fixtures, nil
}

// FetchOdds returns the configured book of fixtureID.
func (m *MockSource) FetchOdds(_ context.Context, fixtureID string) (*types.OddsBook, error) {
	m.mu.Lock()
	m.oddsCalls[fixtureID]++
	m.mu.Unlock()

	if err := m.Errors[fixtureID]; err != nil {
		return nil, err
	}

	b, ok := m.Books[fixtureID]
	if !ok {
		return nil, fmt.Errorf("fixture %s: %w", fixtureID, types.ErrEmptyPayload)
	}

	return b, nil
}

// OddsCalls returns how often FetchOdds was called for fixtureID.
func (m *MockSource) OddsCalls(fixtureID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.oddsCalls[fixtureID]
}

// Notification is one recorded Notify call.
type Notification struct {
	Pair          types.MatchedFixturePair
	Opportunities []*arbitrage.Opportunity
}

// MockNotifier records notifications.
type MockNotifier struct {
	mu    sync.Mutex
	calls []Notification
	Err   error
}

// Notify records the call.
func (m *MockNotifier) Notify(_ context.Context, pair types.MatchedFixturePair, opps []*arbitrage.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Notification{Pair: pair, Opportunities: opps})

	return m.Err
}

// Close does nothing.
func (m *MockNotifier) Close() error {
	return nil
}

// Notifications returns the recorded calls.
func (m *MockNotifier) Notifications() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Notification(nil), m.calls...)
}

// MockPublisher records published opportunities.
type MockPublisher struct {
	mu        sync.Mutex
	published []*arbitrage.Opportunity
}

// Publish records opp.
func (m *MockPublisher) Publish(opp *arbitrage.Opportunity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.published = append(m.published, opp)
}

// Published returns the recorded opportunities.
func (m *MockPublisher) Published() []*arbitrage.Opportunity {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*arbitrage.Opportunity(nil), m.published...)
}
