package arbitrage

import "context"

// Storage persists detected opportunities.
type Storage interface {
	StoreOpportunity(ctx context.Context, opp *Opportunity) error
	Close() error
}
