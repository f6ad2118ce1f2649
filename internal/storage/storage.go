// Package storage persists detected opportunities and the fixture snapshots
// the pipeline works from.
package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/pkg/config"
)

// Storage is the interface for storing arbitrage opportunities.
type Storage = arbitrage.Storage

// New builds the storage selected by cfg.StorageMode.
func New(cfg *config.Config, logger *zap.Logger) (Storage, error) {
	switch cfg.StorageMode {
	case config.StorageConsole:
		return NewConsoleStorage(logger), nil
	case config.StoragePostgres:
		s, err := NewPostgresStorage(&PostgresConfig{
			DSN:    cfg.PostgresDSN(),
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return s, nil
	case config.StorageSnapshot:
		s, err := NewSnapshotStorage(cfg.SnapshotDir, logger)
		if err != nil {
			return nil, fmt.Errorf("create snapshot storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.StorageMode)
	}
}
