package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kaabil/faqrag/internal/infra/config"
	"github.com/kaabil/faqrag/internal/infra/retriever"
)

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	retriever *retriever.IndexRetriever
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, ret *retriever.IndexRetriever) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, retriever: ret}
}

// Run loads the current index generation, starts the HTTP server and blocks
// until shutdown.
func (a *App) Run(ctx context.Context) error {
	if err := a.retriever.Reload(); err != nil {
		// The service still starts; /ask fails with index_not_loaded until
		// an ingest run produces the artifact pair and /admin/reload is hit.
		a.logger.Warn("no index generation available at startup", "error", err)
	}

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
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
