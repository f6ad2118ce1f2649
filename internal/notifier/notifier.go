// Package notifier alerts about detected opportunities, once per fixture pair
// and scan, skipping opportunities that were already alerted recently.
package notifier

import (
	"context"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/pkg/types"
)

// Notifier delivers opportunity alerts.
type Notifier interface {
	Notify(ctx context.Context, pair types.MatchedFixturePair, opps []*arbitrage.Opportunity) error
	Close() error
}

// Nop discards every alert.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, types.MatchedFixturePair, []*arbitrage.Opportunity) error {
	return nil
}

// Close does nothing.
func (Nop) Close() error {
	return nil
}
