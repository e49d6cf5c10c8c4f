package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/infra/config"
)

const indexWarmupTimeout = 15 * time.Second

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	index  search.Service
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, index search.Service) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, index: index}
}

// Run loads the search index, starts the HTTP server and blocks until
// shutdown. A failed warm-up is logged; the index loads lazily on the
// first search instead.
func (a *App) Run(ctx context.Context) error {
	a.warmIndex(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) warmIndex(ctx context.Context) {
	if a.index == nil {
		return
	}
	warmCtx, cancel := context.WithTimeout(ctx, indexWarmupTimeout)
	defer cancel()
	start := time.Now()
	count, err := a.index.Reload(warmCtx)
	if err != nil {
		a.logger.Warn("search index warm-up failed", "error", err)
		return
	}
	a.logger.Info("search index loaded", "items", count, "elapsed", time.Since(start))
}
