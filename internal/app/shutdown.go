package app

import (
	"context"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Cancel context to signal all components
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Jobs may still store and notify, so they stop before the sinks close.
	err = a.runner.Close()
	if err != nil {
		a.logger.Error("job-runner-close-error", zap.Error(err))
	}

	a.wg.Wait()

	a.closeResources()

	a.logger.Info("application-shutdown-complete")

	return nil
}

// closeResources closes every sink that was created. It is safe on a
// partially built App.
func (a *App) closeResources() {
	if a.hub != nil {
		_ = a.hub.Close()
	}

	if a.notifier != nil {
		err := a.notifier.Close()
		if err != nil {
			a.logger.Error("notifier-close-error", zap.Error(err))
		}
	}

	if a.storage != nil {
		err := a.storage.Close()
		if err != nil {
			a.logger.Error("storage-close-error", zap.Error(err))
		}
	}

	if a.oddsCache != nil {
		a.oddsCache.Close()
	}
}
