package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/pkg/types"
)

const (
	defaultQueueSize    = 100
	defaultSendInterval = 2 * time.Second
	maxMessageLength    = 4096
)

// ErrQueueFull is returned when an alert cannot be queued.
var ErrQueueFull = errors.New("notification queue full")

// sender is the part of the bot API the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramConfig configures a TelegramNotifier.
type TelegramConfig struct {
	Token        string
	ChatID       int64
	Dedup        Deduplicator
	QueueSize    int
	SendInterval time.Duration
	Logger       *zap.Logger
}

// TelegramNotifier sends one message per fixture pair to a chat. Messages go
// through a queue drained by a single goroutine that keeps at least
// SendInterval between sends.
type TelegramNotifier struct {
	bot      sender
	chatID   int64
	dedup    Deduplicator
	interval time.Duration
	logger   *zap.Logger

	queue  chan string
	closed bool
	mu     sync.RWMutex
	wg     sync.WaitGroup
}

// NewTelegramNotifier connects to the bot API and starts the sender.
func NewTelegramNotifier(cfg TelegramConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	n := newTelegramNotifier(bot, cfg)
	n.logger.Info("telegram-notifier-started",
		zap.String("bot", bot.Self.UserName),
		zap.Int64("chat-id", cfg.ChatID))

	return n, nil
}

func newTelegramNotifier(bot sender, cfg TelegramConfig) *TelegramNotifier {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.SendInterval <= 0 {
		cfg.SendInterval = defaultSendInterval
	}
	if cfg.Dedup == nil {
		cfg.Dedup = NoDedup{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	n := &TelegramNotifier{
		bot:      bot,
		chatID:   cfg.ChatID,
		dedup:    cfg.Dedup,
		interval: cfg.SendInterval,
		logger:   cfg.Logger,
		queue:    make(chan string, cfg.QueueSize),
	}

	n.wg.Add(1)
	go n.sendLoop()

	return n
}

// Notify queues an alert for the opportunities of pair that were not alerted
// recently. Dedup failures fall back to alerting.
func (n *TelegramNotifier) Notify(ctx context.Context, pair types.MatchedFixturePair, opps []*arbitrage.Opportunity) error {
	fresh := make([]*arbitrage.Opportunity, 0, len(opps))
	for _, opp := range opps {
		ok, err := n.dedup.ShouldAlert(ctx, opp)
		if err != nil {
			n.logger.Warn("dedup-check-failed", zap.String("opportunity-id", opp.ID), zap.Error(err))
			ok = true
		}
		if !ok {
			OpportunitiesDeduplicatedTotal.Inc()
			continue
		}
		fresh = append(fresh, opp)
	}

	if len(fresh) == 0 {
		return nil
	}

	return n.enqueue(truncate(FormatMessage(pair, fresh)))
}

func (n *TelegramNotifier) enqueue(text string) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return errors.New("notifier closed")
	}

	select {
	case n.queue <- text:
		return nil
	default:
		NotificationsDroppedTotal.Inc()
		return ErrQueueFull
	}
}

func (n *TelegramNotifier) sendLoop() {
	defer n.wg.Done()

	var last time.Time
	for text := range n.queue {
		if wait := n.interval - time.Since(last); !last.IsZero() && wait > 0 {
			time.Sleep(wait)
		}

		_, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text))
		last = time.Now()
		if err != nil {
			NotificationsFailedTotal.Inc()
			n.logger.Error("telegram-send-failed", zap.Error(err))
			continue
		}
		NotificationsSentTotal.Inc()
	}
}

// Close stops accepting alerts and waits for queued ones to be sent.
func (n *TelegramNotifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	n.wg.Wait()
	n.logger.Info("telegram-notifier-stopped")

	if c, ok := n.dedup.(io.Closer); ok {
		err := c.Close()
		if err != nil {
			return fmt.Errorf("close deduplicator: %w", err)
		}
	}

	return nil
}

func truncate(text string) string {
	r := []rune(text)
	if len(r) <= maxMessageLength {
		return text
	}

	return string(r[:maxMessageLength-1]) + "…"
}
