package notifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
)

const dedupKeyPrefix = "bookie-arb:alert:"

// Deduplicator decides whether an opportunity still needs alerting.
type Deduplicator interface {
	ShouldAlert(ctx context.Context, opp *arbitrage.Opportunity) (bool, error)
}

// NoDedup alerts every opportunity.
type NoDedup struct{}

// ShouldAlert always returns true.
func (NoDedup) ShouldAlert(context.Context, *arbitrage.Opportunity) (bool, error) {
	return true, nil
}

// setNXer is the part of the Redis client the deduplicator uses.
type setNXer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// RedisDeduplicator remembers alerted opportunities in Redis for a TTL.
type RedisDeduplicator struct {
	client setNXer
	closer func() error
	ttl    time.Duration
}

// NewRedisDeduplicator creates a deduplicator on client. Close closes client.
func NewRedisDeduplicator(client *redis.Client, ttl time.Duration) *RedisDeduplicator {
	return &RedisDeduplicator{client: client, closer: client.Close, ttl: ttl}
}

// Close releases the Redis connection.
func (d *RedisDeduplicator) Close() error {
	if d.closer == nil {
		return nil
	}

	return d.closer()
}

// ShouldAlert claims the opportunity's key with SET NX, so of several
// concurrent callers exactly one gets true.
func (d *RedisDeduplicator) ShouldAlert(ctx context.Context, opp *arbitrage.Opportunity) (bool, error) {
	ok, err := d.client.SetNX(ctx, DedupKey(opp), opp.ID, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim dedup key: %w", err)
	}

	return ok, nil
}

// DedupKey is the Redis key for an opportunity: fixture, market and the
// source of each leg, hashed.
func DedupKey(opp *arbitrage.Opportunity) string {
	sum := sha256.Sum256([]byte(opp.DedupKey()))
	return dedupKeyPrefix + hex.EncodeToString(sum[:16])
}
