package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Heliox/internal/domain/repository"
	"Heliox/internal/usecase"
	pkgch "Heliox/pkg/clickhouse"
	"Heliox/pkg/config"
	xhttp "Heliox/pkg/http"
	"Heliox/pkg/http/middleware"
	xlogger "Heliox/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg          *config.Config
	logger       *xlogger.Logger
	handler      xhttp.Handler
	orchestrator *usecase.Orchestrator
	publisher    repository.Publisher
	chClient     *pkgch.Client
	httpServer   *xhttp.Server
}

// New creates a new App instance with all dependencies. The ClickHouse
// client and publisher are optional and may be nil depending on the
// configured backends.
func New(
	cfg *config.Config,
	logger *xlogger.Logger,
	handler xhttp.Handler,
	orchestrator *usecase.Orchestrator,
	publisher repository.Publisher,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:          cfg,
		logger:       logger,
		handler:      handler,
		orchestrator: orchestrator,
		publisher:    publisher,
		chClient:     chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsMiddleware(middleware.Metrics(a.logger, time.Second)),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", xlogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		xlogger.Int("port", a.cfg.Server.Port),
		xlogger.String("environment", a.cfg.Environment),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting new runs first
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", xlogger.Error(err))
	}

	// Let in-flight pipelines reach a terminal status, bounded by the
	// shutdown deadline. Pipelines carry their own timeouts, so this only
	// matters for runs already near completion.
	done := make(chan struct{})
	go func() {
		a.orchestrator.Wait()
		close(done)
	}()
	select {
	case <-done:
		a.logger.Info("all pipelines drained")
	case <-time.After(a.cfg.Server.ShutdownTimeout):
		a.logger.Warn("shutdown deadline reached with pipelines still running")
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", xlogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", xlogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
