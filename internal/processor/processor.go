// Package processor scans every matched fixture pair for arbitrage: it fetches
// both odds books, runs the scanner and hands opportunities to storage, the
// live feed and the notifier.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/internal/circuitbreaker"
	"github.com/mselser95/bookie-arb/internal/notifier"
	"github.com/mselser95/bookie-arb/internal/scanner"
	"github.com/mselser95/bookie-arb/pkg/cache"
	"github.com/mselser95/bookie-arb/pkg/types"
)

const defaultOddsTTL = 30 * time.Second

// PairSource provides the fixture pairs to scan.
type PairSource interface {
	Pairs(ctx context.Context) ([]types.MatchedFixturePair, error)
}

// OddsFetcher serves the odds book of one fixture of one bookmaker.
type OddsFetcher interface {
	Name() string
	FetchOdds(ctx context.Context, fixtureID string) (*types.OddsBook, error)
}

// FetchGuard decides whether a bookmaker may be called and learns from the
// outcome of each call.
type FetchGuard interface {
	Allow(source string) (circuitbreaker.Ticket, error)
	Record(source string, ticket circuitbreaker.Ticket, err error)
}

// Publisher streams opportunities to live subscribers.
type Publisher interface {
	Publish(opp *arbitrage.Opportunity)
}

// ReportWriter persists the opportunities of a whole run.
type ReportWriter interface {
	WriteOpportunities(opps []*arbitrage.Opportunity, at time.Time) (string, error)
}

// Report summarizes one Process run.
type Report struct {
	StartedAt     time.Time                `json:"startedAt"`
	CompletedAt   time.Time                `json:"completedAt"`
	Duration      time.Duration            `json:"duration"`
	Pairs         int                      `json:"pairs"`
	PairsScanned  int                      `json:"pairsScanned"`
	PairsFailed   int                      `json:"pairsFailed"`
	Opportunities []*arbitrage.Opportunity `json:"opportunities"`
}

// Processor scans matched pairs.
type Processor struct {
	pairs       PairSource
	sources     map[string]OddsFetcher
	scanner     *scanner.Scanner
	storage     arbitrage.Storage
	notifier    notifier.Notifier
	publisher   Publisher
	reports     ReportWriter
	cache       cache.Cache
	guard       FetchGuard
	oddsTTL     time.Duration
	concurrency int
	pairDelay   time.Duration
	minProfit   float64
	logger      *zap.Logger

	mu     sync.RWMutex
	latest *Report
}

// Config holds processor configuration. Publisher, Reports, Cache and Guard
// are optional.
type Config struct {
	Pairs            PairSource
	Sources          []OddsFetcher
	Scanner          *scanner.Scanner
	Storage          arbitrage.Storage
	Notifier         notifier.Notifier
	Publisher        Publisher
	Reports          ReportWriter
	Cache            cache.Cache
	Guard            FetchGuard
	OddsTTL          time.Duration
	Concurrency      int
	PairDelay        time.Duration
	MinProfitPercent float64
	Logger           *zap.Logger
}

// New creates a processor.
func New(cfg *Config) (*Processor, error) {
	if cfg.Pairs == nil {
		return nil, errors.New("processor needs a pair source")
	}
	if cfg.Storage == nil {
		return nil, errors.New("processor needs storage")
	}

	sources := make(map[string]OddsFetcher, len(cfg.Sources))
	for _, s := range cfg.Sources {
		sources[s.Name()] = s
	}

	p := &Processor{
		pairs:       cfg.Pairs,
		sources:     sources,
		scanner:     cfg.Scanner,
		storage:     cfg.Storage,
		notifier:    cfg.Notifier,
		publisher:   cfg.Publisher,
		reports:     cfg.Reports,
		cache:       cfg.Cache,
		guard:       cfg.Guard,
		oddsTTL:     cfg.OddsTTL,
		concurrency: max(cfg.Concurrency, 1),
		pairDelay:   cfg.PairDelay,
		minProfit:   cfg.MinProfitPercent,
		logger:      cfg.Logger,
	}
	if p.scanner == nil {
		p.scanner = scanner.New()
	}
	if p.notifier == nil {
		p.notifier = notifier.Nop{}
	}
	if p.oddsTTL <= 0 {
		p.oddsTTL = defaultOddsTTL
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}

	return p, nil
}

// Process scans every pair with bounded concurrency. A failing pair is logged
// and counted; only failing to obtain the pairs fails the run.
func (p *Processor) Process(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: time.Now()}

	pairs, err := p.pairs.Pairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("get pairs: %w", err)
	}
	report.Pairs = len(pairs)

	p.logger.Info("process-started",
		zap.Int("pair-count", len(pairs)),
		zap.Int("concurrency", p.concurrency))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, pair := range pairs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			opps, err := p.ProcessPair(gctx, pair)

			mu.Lock()
			if err != nil {
				report.PairsFailed++
			} else {
				report.PairsScanned++
				report.Opportunities = append(report.Opportunities, opps...)
			}
			mu.Unlock()

			if err != nil {
				PairsProcessedTotal.WithLabelValues("error").Inc()
				p.logger.Warn("pair-scan-failed", zap.String("pair", pair.Key()), zap.Error(err))
			} else {
				PairsProcessedTotal.WithLabelValues("success").Inc()
			}

			// Pair failures never cancel the group.
			_ = sleepCtx(gctx, p.pairDelay)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(report.Opportunities, func(i, j int) bool {
		return report.Opportunities[i].ProfitPercent > report.Opportunities[j].ProfitPercent
	})

	report.CompletedAt = time.Now()
	report.Duration = report.CompletedAt.Sub(report.StartedAt)

	p.finish(report)

	err = ctx.Err()
	if err != nil {
		return report, fmt.Errorf("process interrupted: %w", err)
	}

	return report, nil
}

func (p *Processor) finish(report *Report) {
	ProcessDurationSeconds.Observe(report.Duration.Seconds())
	LastRunOpportunities.Set(float64(len(report.Opportunities)))

	if p.reports != nil && len(report.Opportunities) > 0 {
		path, err := p.reports.WriteOpportunities(report.Opportunities, report.CompletedAt)
		if err != nil {
			p.logger.Warn("opportunity-report-write-failed", zap.Error(err))
		} else {
			p.logger.Info("opportunity-report-written", zap.String("path", path))
		}
	}

	p.mu.Lock()
	p.latest = report
	p.mu.Unlock()

	p.logger.Info("process-complete",
		zap.Int("pair-count", report.Pairs),
		zap.Int("pairs-scanned", report.PairsScanned),
		zap.Int("pairs-failed", report.PairsFailed),
		zap.Int("opportunity-count", len(report.Opportunities)),
		zap.Duration("duration", report.Duration))
}

// ProcessPair fetches both books of pair, scans them and hands every
// opportunity above the minimum profit to storage, the live feed and, once
// for the whole pair, the notifier.
func (p *Processor) ProcessPair(ctx context.Context, pair types.MatchedFixturePair) ([]*arbitrage.Opportunity, error) {
	opps, err := p.ScanPair(ctx, pair)
	if err != nil {
		return nil, err
	}
	if len(opps) == 0 {
		return nil, nil
	}

	for _, opp := range opps {
		arbitrage.RecordOpportunity(opp)

		err = p.storage.StoreOpportunity(ctx, opp)
		if err != nil {
			p.logger.Error("store-opportunity-failed", zap.String("opportunity-id", opp.ID), zap.Error(err))
		}

		if p.publisher != nil {
			p.publisher.Publish(opp)
		}
	}

	err = p.notifier.Notify(ctx, pair, opps)
	if err != nil {
		p.logger.Warn("notify-failed", zap.String("pair", pair.Key()), zap.Error(err))
	}

	return opps, nil
}

// ScanPair fetches both books of pair and returns the opportunities above the
// minimum profit, without storing or announcing them.
func (p *Processor) ScanPair(ctx context.Context, pair types.MatchedFixturePair) ([]*arbitrage.Opportunity, error) {
	bookA, err := p.book(ctx, pair.FixtureA)
	if err != nil {
		return nil, err
	}
	bookB, err := p.book(ctx, pair.FixtureB)
	if err != nil {
		return nil, err
	}
	if pair.IsTeamsReversed {
		bookB = bookB.Reversed()
	}

	start := time.Now()
	found := p.scanner.Scan(bookA, bookB)
	arbitrage.ScanDurationSeconds.Observe(time.Since(start).Seconds())

	opps := make([]*arbitrage.Opportunity, 0, len(found))
	for _, opp := range found {
		if opp.ProfitPercent < p.minProfit {
			arbitrage.OpportunitiesRejectedTotal.WithLabelValues("below-min-profit").Inc()
			continue
		}

		opp.FixtureKey = pair.Key()
		if opp.HomeTeam == "" {
			opp.HomeTeam = pair.FixtureA.HomeTeam
			opp.AwayTeam = pair.FixtureA.AwayTeam
		}
		if opp.League == "" {
			opp.League = pair.FixtureA.LeagueName
		}
		if opp.StartTime.IsZero() {
			opp.StartTime = pair.FixtureA.StartTime
		}
		opps = append(opps, opp)
	}

	return opps, nil
}

func (p *Processor) book(ctx context.Context, f types.RawFixture) (*types.OddsBook, error) {
	key := "odds:" + f.Source + ":" + f.SourceID
	if b, ok := cache.GetAs[*types.OddsBook](p.cache, key); ok {
		return b, nil
	}

	src, ok := p.sources[f.Source]
	if !ok {
		return nil, fmt.Errorf("odds for %s: %w", f.Source, types.ErrUnknownSource)
	}

	var ticket circuitbreaker.Ticket
	if p.guard != nil {
		var err error
		ticket, err = p.guard.Allow(f.Source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s odds %s: %w", f.Source, f.SourceID, err)
		}
	}

	b, err := src.FetchOdds(ctx, f.SourceID)
	if p.guard != nil {
		p.guard.Record(f.Source, ticket, err)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s odds %s: %w", f.Source, f.SourceID, err)
	}

	if b.HomeTeam == "" {
		b.HomeTeam = f.HomeTeam
		b.AwayTeam = f.AwayTeam
	}
	if b.League == "" {
		b.League = f.LeagueName
	}
	if b.StartTime.IsZero() {
		b.StartTime = f.StartTime
	}

	if p.cache != nil {
		p.cache.Set(key, b, p.oddsTTL)
	}

	return b, nil
}

// LatestReport returns the report of the last completed run, or nil.
func (p *Processor) LatestReport() *Report {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.latest
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
