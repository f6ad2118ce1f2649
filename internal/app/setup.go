package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/internal/circuitbreaker"
	"github.com/mselser95/bookie-arb/internal/discovery"
	"github.com/mselser95/bookie-arb/internal/jobs"
	"github.com/mselser95/bookie-arb/internal/matcher"
	"github.com/mselser95/bookie-arb/internal/notifier"
	"github.com/mselser95/bookie-arb/internal/processor"
	"github.com/mselser95/bookie-arb/internal/scanner"
	"github.com/mselser95/bookie-arb/internal/scraper"
	"github.com/mselser95/bookie-arb/internal/storage"
	"github.com/mselser95/bookie-arb/pkg/cache"
	"github.com/mselser95/bookie-arb/pkg/config"
	"github.com/mselser95/bookie-arb/pkg/healthprobe"
	"github.com/mselser95/bookie-arb/pkg/httpserver"
	"github.com/mselser95/bookie-arb/pkg/websocket"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthprobe.New(),
		ctx:           ctx,
		cancel:        cancel,
	}

	err := a.setup(ctx)
	if err != nil {
		a.closeResources()
		cancel()
		return nil, err
	}

	return a, nil
}

func (a *App) setup(ctx context.Context) error {
	mostbet, melbet, err := setupScrapers(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("setup scrapers: %w", err)
	}

	a.storage, err = storage.New(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("setup storage: %w", err)
	}
	if pg, ok := a.storage.(*storage.PostgresStorage); ok {
		a.healthChecker.AddCheck("postgres", pg.Ping)
	}

	a.notifier, err = notifier.New(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("setup notifier: %w", err)
	}

	a.oddsCache, err = cache.NewRistrettoCache(&cache.RistrettoConfig{
		Name:        "odds-books",
		NumCounters: 20000, // ~10x the books of one scan
		MaxCost:     2000,
		BufferItems: 64,
		Logger:      a.logger,
	})
	if err != nil {
		return fmt.Errorf("setup cache: %w", err)
	}

	if a.cfg.BreakerWindow > 0 {
		a.breaker, err = circuitbreaker.New(&circuitbreaker.Config{
			Window:       a.cfg.BreakerWindow,
			MinSamples:   (a.cfg.BreakerWindow + 1) / 2,
			FailureRatio: a.cfg.BreakerFailureRatio,
			Cooldown:     a.cfg.BreakerCooldown,
			Logger:       a.logger,
		})
		if err != nil {
			return fmt.Errorf("setup circuit breaker: %w", err)
		}
	}

	a.hub = websocket.NewHub(&websocket.HubConfig{
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		Logger:         a.logger,
	})

	snapshots, _ := a.storage.(*storage.SnapshotStorage)

	a.discoveryService, err = setupDiscoveryService(a.cfg, a.logger, mostbet, melbet, snapshots)
	if err != nil {
		return fmt.Errorf("setup discovery: %w", err)
	}

	a.processor, err = setupProcessor(a, mostbet, melbet, snapshots)
	if err != nil {
		return fmt.Errorf("setup processor: %w", err)
	}

	a.runner = jobs.New(&jobs.Config{
		Logger: a.logger,
		Names:  []string{jobs.ProcessMatches, jobs.FetchMostbet, jobs.FetchMelbet, jobs.MatchFinder},
	})

	api := &httpserver.APIConfig{
		Jobs:        a.runner,
		Triggers:    a.jobBodies(),
		Pairs:       a.discoveryService,
		Reports:     a.processor,
		Environment: a.cfg.Environment,
		Uptime:      a.healthChecker.Uptime,
		Logger:      a.logger,
	}
	if a.breaker != nil {
		api.Breakers = a.breaker
	}

	a.httpServer = httpserver.New(&httpserver.Config{
		Port:           a.cfg.HTTPPort,
		Logger:         a.logger,
		HealthChecker:  a.healthChecker,
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		Feed:           a.hub,
		API:            httpserver.NewAPI(api),
	})

	return nil
}

func setupScrapers(cfg *config.Config, logger *zap.Logger) (*scraper.MostbetClient, *scraper.MelbetClient, error) {
	sources := scraper.DefaultSources()
	if cfg.SourcesFile != "" {
		var err error
		sources, err = scraper.LoadSources(cfg.SourcesFile)
		if err != nil {
			return nil, nil, err
		}
	}

	return scraper.NewClients(sources, scraper.Options{
		Timeout:        cfg.FetchTimeout,
		MaxAttempts:    cfg.FetchMaxAttempts,
		InitialBackoff: cfg.FetchInitialBackoff,
		MaxBackoff:     cfg.FetchMaxBackoff,
		RateLimit:      cfg.FetchRateLimit,
		Burst:          cfg.FetchBurst,
		PageDelay:      cfg.FetchPageDelay,
		Logger:         logger,
	})
}

func setupDiscoveryService(
	cfg *config.Config,
	logger *zap.Logger,
	mostbet *scraper.MostbetClient,
	melbet *scraper.MelbetClient,
	snapshots *storage.SnapshotStorage,
) (*discovery.Service, error) {
	dcfg := &discovery.Config{
		SourceA: mostbet,
		SourceB: melbet,
		Matcher: matcher.New(matcher.Config{
			SimilarityThreshold: cfg.SimilarityThreshold,
			MaxTimeDelta:        cfg.MaxTimeDelta,
		}),
		BestMatchOnly: cfg.BestMatchOnly,
		StaleAfter:    cfg.DataRefreshThreshold,
		Logger:        logger,
	}
	if snapshots != nil {
		dcfg.Snapshots = snapshots
	}

	return discovery.New(dcfg)
}

func setupProcessor(
	a *App,
	mostbet *scraper.MostbetClient,
	melbet *scraper.MelbetClient,
	snapshots *storage.SnapshotStorage,
) (*processor.Processor, error) {
	pcfg := &processor.Config{
		Pairs:            a.discoveryService,
		Sources:          []processor.OddsFetcher{mostbet, melbet},
		Scanner:          scanner.New(scanner.WithStake(a.cfg.DefaultStake)),
		Storage:          a.storage,
		Notifier:         a.notifier,
		Publisher:        opportunityFeed{hub: a.hub},
		Cache:            a.oddsCache,
		Concurrency:      a.cfg.ScanConcurrency,
		PairDelay:        a.cfg.PairDelay,
		MinProfitPercent: a.cfg.MinProfitPercent,
		Logger:           a.logger,
	}
	if snapshots != nil {
		pcfg.Reports = snapshots
	}
	if a.breaker != nil {
		pcfg.Guard = a.breaker
	}

	return processor.New(pcfg)
}

// opportunityFeed publishes opportunities on the websocket hub.
type opportunityFeed struct {
	hub *websocket.Hub
}

func (f opportunityFeed) Publish(opp *arbitrage.Opportunity) {
	f.hub.Broadcast("opportunity", opp)
}
