package notifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/pkg/config"
)

// New builds the notifier described by cfg: Telegram when a bot token is
// set, deduplicated through Redis when REDIS_ADDR is set, otherwise Nop.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Notifier, error) {
	if cfg.TelegramBotToken == "" {
		logger.Info("notifications-disabled")
		return Nop{}, nil
	}

	var dedup Deduplicator = NoDedup{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		err := client.Ping(ctx).Err()
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}

		dedup = NewRedisDeduplicator(client, cfg.AlertDedupTTL)
		logger.Info("alert-dedup-enabled",
			zap.String("redis-addr", cfg.RedisAddr),
			zap.Duration("ttl", cfg.AlertDedupTTL))
	}

	n, err := NewTelegramNotifier(TelegramConfig{
		Token:  cfg.TelegramBotToken,
		ChatID: cfg.TelegramChatID,
		Dedup:  dedup,
		Logger: logger,
	})
	if err != nil {
		if c, ok := dedup.(*RedisDeduplicator); ok {
			_ = c.Close()
		}
		return nil, err
	}

	return n, nil
}
