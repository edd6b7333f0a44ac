package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NiftyDash/internal/middleware"
	"NiftyDash/internal/usecase"
	"NiftyDash/pkg/config"
	xhttp "NiftyDash/pkg/http"
	applogger "NiftyDash/pkg/logger"
)

type closer struct {
	name  string
	close func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	orch       *usecase.Orchestrator
	httpServer *xhttp.Server
	pipeline   *middleware.ForecastPipeline
	recorder   *usecase.ForecastRecorder
	closers    []closer
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	orch *usecase.Orchestrator,
	httpServer *xhttp.Server,
	pipeline *middleware.ForecastPipeline,
	recorder *usecase.ForecastRecorder,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		logger:     l,
		orch:       orch,
		httpServer: httpServer,
		pipeline:   pipeline,
		recorder:   recorder,
	}
}

// AddCloser registers an infrastructure client to close on shutdown, after
// in-flight calls have drained.
func (a *App) AddCloser(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the startup fetches and the HTTP server, then blocks
// until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if a.pipeline != nil {
		a.pipeline.Start(context.WithoutCancel(ctx))
	}
	a.orch.Start(ctx)
	a.logger.Info("startup fetches issued",
		applogger.String("env", a.cfg.Environment),
		applogger.String("prediction_url", a.cfg.Prediction.BaseURL),
		applogger.String("sink", a.cfg.Sink.Type),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	drained := make(chan struct{})
	go func() {
		a.orch.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(timeout):
		a.logger.Warn("in-flight calls still pending at shutdown", applogger.Duration("timeout", timeout))
	}
	a.orch.Store().Close()
	if a.pipeline != nil {
		a.pipeline.Stop()
	}

	// the collector publishes through the forecast producer, so it goes first
	a.logger.RemoveCollector()
	if a.recorder != nil {
		a.recorder.Close()
	}
	for _, c := range a.closers {
		if err := c.close(); err != nil {
			a.logger.Warn("close error", applogger.String("client", c.name), applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
