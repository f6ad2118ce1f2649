package scraper

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mselser95/bookie-arb/pkg/types"
)

// Options holds the request policy shared by every source.
type Options struct {
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RateLimit      float64
	Burst          int
	PageDelay      time.Duration
	Logger         *zap.Logger
}

// NewClients builds the Mostbet and Melbet clients. Each source gets its own
// rate limiter; Melbet's site and feed hosts share one.
func NewClients(sources Sources, opts Options) (*MostbetClient, *MelbetClient, error) {
	err := sources.Validate()
	if err != nil {
		return nil, nil, fmt.Errorf("validate sources: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	retry := NewRetryPolicy(opts.MaxAttempts, opts.InitialBackoff, opts.MaxBackoff)

	newLimiter := func() *rate.Limiter {
		if opts.RateLimit <= 0 {
			return rate.NewLimiter(rate.Inf, 1)
		}
		return rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))
	}

	mb, ok := sources[types.SourceMostbet]
	if !ok {
		return nil, nil, fmt.Errorf("source %s: %w", types.SourceMostbet, types.ErrUnknownSource)
	}
	mbFetcher, err := NewFetcher(&FetcherConfig{
		Source:     types.SourceMostbet,
		Domains:    mb.Domains,
		UserAgents: mb.UserAgents,
		Headers:    mb.Headers,
		HTTPClient: httpClient,
		Limiter:    newLimiter(),
		Retry:      retry,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create mostbet fetcher: %w", err)
	}

	mel, ok := sources[types.SourceMelbet]
	if !ok {
		return nil, nil, fmt.Errorf("source %s: %w", types.SourceMelbet, types.ErrUnknownSource)
	}
	melLimiter := newLimiter()
	site, err := NewFetcher(&FetcherConfig{
		Source:     types.SourceMelbet,
		Domains:    mel.Domains,
		UserAgents: mel.UserAgents,
		Headers:    mel.Headers,
		HTTPClient: httpClient,
		Limiter:    melLimiter,
		Retry:      retry,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create melbet site fetcher: %w", err)
	}
	feed, err := NewFetcher(&FetcherConfig{
		Source:     types.SourceMelbet,
		Domains:    mel.FeedDomains,
		UserAgents: mel.UserAgents,
		Headers:    mel.Headers,
		HTTPClient: httpClient,
		Limiter:    melLimiter,
		Retry:      retry,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create melbet feed fetcher: %w", err)
	}

	mostbet := NewMostbetClient(&MostbetConfig{
		Fetcher:   mbFetcher,
		PageDelay: opts.PageDelay,
		Logger:    logger.With(zap.String("source", types.SourceMostbet)),
	})
	melbet := NewMelbetClient(&MelbetConfig{
		Site:       site,
		Feed:       feed,
		BatchDelay: opts.PageDelay,
		Logger:     logger.With(zap.String("source", types.SourceMelbet)),
	})

	return mostbet, melbet, nil
}
