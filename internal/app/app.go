// Package app wires the scraping, matching and scanning pipeline together
// with its schedules, HTTP API and live feed.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/internal/circuitbreaker"
	"github.com/mselser95/bookie-arb/internal/discovery"
	"github.com/mselser95/bookie-arb/internal/jobs"
	"github.com/mselser95/bookie-arb/internal/notifier"
	"github.com/mselser95/bookie-arb/internal/processor"
	"github.com/mselser95/bookie-arb/pkg/cache"
	"github.com/mselser95/bookie-arb/pkg/config"
	"github.com/mselser95/bookie-arb/pkg/healthprobe"
	"github.com/mselser95/bookie-arb/pkg/httpserver"
	"github.com/mselser95/bookie-arb/pkg/types"
	"github.com/mselser95/bookie-arb/pkg/websocket"
)

// App is the main application orchestrator.
type App struct {
	cfg              *config.Config
	logger           *zap.Logger
	healthChecker    *healthprobe.HealthChecker
	httpServer       *httpserver.Server
	hub              *websocket.Hub
	discoveryService *discovery.Service
	processor        *processor.Processor
	runner           *jobs.Runner
	notifier         notifier.Notifier
	storage          arbitrage.Storage
	oddsCache        *cache.RistrettoCache
	breaker          *circuitbreaker.SourceBreaker
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// jobBodies returns the body of every named job.
func (a *App) jobBodies() map[string]jobs.Func {
	return map[string]jobs.Func{
		jobs.ProcessMatches: func(ctx context.Context) error {
			_, err := a.processor.Process(ctx)
			return err
		},
		jobs.FetchMostbet: a.fetchSource(types.SourceMostbet),
		jobs.FetchMelbet:  a.fetchSource(types.SourceMelbet),
		jobs.MatchFinder: func(ctx context.Context) error {
			_, err := a.discoveryService.Match(ctx)
			return err
		},
	}
}

func (a *App) fetchSource(source string) jobs.Func {
	return func(ctx context.Context) error {
		_, err := a.discoveryService.FetchSource(ctx, source)
		return err
	}
}

// fetchSequence fetches both lists and matches them, each step as its own job.
func (a *App) fetchSequence() jobs.Func {
	bodies := a.jobBodies()

	return jobs.Sequence(
		a.runner.Job(jobs.FetchMostbet, bodies[jobs.FetchMostbet]),
		a.runner.Job(jobs.FetchMelbet, bodies[jobs.FetchMelbet]),
		a.runner.Job(jobs.MatchFinder, bodies[jobs.MatchFinder]),
	)
}
