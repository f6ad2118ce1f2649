package arbitrage

import (
	"context"
	"sync"
)

// MockStorage keeps opportunities in memory. It lives here so packages that
// depend on arbitrage can use it without an import cycle.
type MockStorage struct {
	Opportunities []*Opportunity
	Err           error
	mu            sync.Mutex
}

// NewMockStorage creates a new mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		Opportunities: make([]*Opportunity, 0),
	}
}

// StoreOpportunity records opp, or returns Err when set.
func (m *MockStorage) StoreOpportunity(_ context.Context, opp *Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.Opportunities = append(m.Opportunities, opp)
	return nil
}

// Close is a no-op for mock storage.
func (m *MockStorage) Close() error {
	return nil
}

// GetOpportunities returns a copy of the stored opportunities.
func (m *MockStorage) GetOpportunities() []*Opportunity {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*Opportunity, len(m.Opportunities))
	copy(result, m.Opportunities)
	return result
}

// Clear clears all stored opportunities.
func (m *MockStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Opportunities = make([]*Opportunity, 0)
}
