package app

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/jobs"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("environment", a.cfg.Environment),
		zap.String("storage-mode", a.cfg.StorageMode),
		zap.Float64("similarity-threshold", a.cfg.SimilarityThreshold),
		zap.Float64("min-profit-percent", a.cfg.MinProfitPercent),
		zap.String("log-level", a.cfg.LogLevel))

	a.startComponents()

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready", zap.String("http-addr", ":"+a.cfg.HTTPPort))

	return a.waitForShutdown()
}

// Handler returns the HTTP router.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler()
}

func (a *App) startComponents() {
	a.wg.Add(1)
	go a.runHTTPServer()

	if !a.cfg.SchedulesEnabled {
		a.logger.Info("schedules-disabled")
		return
	}

	fetch := a.fetchSequence()

	// Fill the fixture lists right away instead of waiting a full interval.
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		err := fetch(a.ctx)
		if err != nil && !errors.Is(err, a.ctx.Err()) {
			a.logger.Error("initial-fetch-failed", zap.Error(err))
		}
	}()

	a.runner.Schedule("fetch", a.cfg.FetchInterval, fetch)
	a.runner.Schedule("process", a.cfg.ProcessInterval,
		a.runner.Job(jobs.ProcessMatches, a.jobBodies()[jobs.ProcessMatches]))
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}

const shutdownTimeout = 10 * time.Second
