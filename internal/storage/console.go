package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ConsoleStorage implements Storage by pretty-printing to stdout.
type ConsoleStorage struct {
	out    io.Writer
	mu     sync.Mutex
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	return NewWriterStorage(os.Stdout, logger)
}

// NewWriterStorage prints opportunities to w.
func NewWriterStorage(w io.Writer, logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		out:    w,
		logger: logger,
	}
}

// StoreOpportunity pretty-prints an arbitrage opportunity.
func (c *ConsoleStorage) StoreOpportunity(_ context.Context, opp *arbitrage.Opportunity) error {
	var b strings.Builder

	id := opp.ID
	if len(id) > 8 {
		id = id[:8]
	}

	fmt.Fprintln(&b, "\n"+rule)
	fmt.Fprintf(&b, "🎯 ARBITRAGE OPPORTUNITY DETECTED\n")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "ID:       %s\n", id)
	fmt.Fprintf(&b, "Match:    %s vs %s\n", opp.HomeTeam, opp.AwayTeam)
	if opp.League != "" {
		fmt.Fprintf(&b, "League:   %s\n", opp.League)
	}
	if !opp.StartTime.IsZero() {
		fmt.Fprintf(&b, "Kick-off: %s\n", opp.StartTime.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(&b, "Market:   %s\n", opp.Market)
	fmt.Fprintf(&b, "Time:     %s\n", opp.DetectedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "📊 LEGS\n")
	for i, leg := range opp.Legs {
		stake := 0.0
		if i < len(opp.StakeDistribution) {
			stake = opp.StakeDistribution[i]
		}
		fmt.Fprintf(&b, "  %-28s %6.2f @ %-8s stake %8.2f\n", leg.Label, leg.Odds, leg.Source, stake)
	}
	fmt.Fprintf(&b, "  %s\n", opp.Condition)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "💰 PROFIT\n")
	fmt.Fprintf(&b, "  Total Stake:     %.2f\n", opp.TotalStake)
	fmt.Fprintf(&b, "  Expected Return: %.2f\n", opp.ExpectedReturn)
	fmt.Fprintf(&b, "  Expected Profit: %.2f (%.2f%%)\n", opp.ExpectedProfit, opp.ProfitPercent)
	fmt.Fprintln(&b, rule)

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := io.WriteString(c.out, b.String())
	if err != nil {
		return fmt.Errorf("write opportunity: %w", err)
	}

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
