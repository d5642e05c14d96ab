package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"RSIScan/pkg/config"
	xhttp "RSIScan/pkg/http"
	applogger "RSIScan/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	httpServer *xhttp.Server
	logger     *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, httpServer *xhttp.Server, logger *applogger.Logger) *App {
	return &App{
		cfg:        cfg,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("rsiscan started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("cache_backend", a.cfg.Cache.Backend),
	)

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops accepting requests and waits for in-flight ones. Stores and
// producers are closed by the cleanup returned from the injector.
func (a *App) shutdown() error {
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}
