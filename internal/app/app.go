// Package app wires the sandbox components together and runs them.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Schera-ole/qasandbox/internal/config"
	"github.com/Schera-ole/qasandbox/internal/exporter"
	"github.com/Schera-ole/qasandbox/internal/handler"
	"github.com/Schera-ole/qasandbox/internal/logger"
	"github.com/Schera-ole/qasandbox/internal/monitor"
	"github.com/Schera-ole/qasandbox/internal/repository"
	"github.com/Schera-ole/qasandbox/internal/service"
	"github.com/Schera-ole/qasandbox/internal/stress"
)

const shutdownTimeout = 10 * time.Second

// App holds initialized application components.
type App struct {
	Config    *config.ServerConfig
	Storage   *repository.PromStorage
	Service   *service.MetricsService
	Generator *stress.Generator
	Monitor   *monitor.Monitor
	Exporter  *exporter.OTLPExporter

	logger *zap.SugaredLogger
	server *http.Server
}

// New builds every component from cfg. The monitor and the OTLP exporter are
// only created when enabled in cfg.
func New(ctx context.Context, cfg *config.ServerConfig, log *zap.Logger) (*App, error) {
	started := time.Now()
	sugar := log.Sugar()

	storage, err := repository.NewSandboxStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to create metric registry: %w", err)
	}

	emitter := logger.NewEmitter(log)
	metricService := service.NewMetricsService(storage, emitter)
	generator := stress.New(storage, emitter, started)

	a := &App{
		Config:    cfg,
		Storage:   storage,
		Service:   metricService,
		Generator: generator,
		logger:    sugar,
		server: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler.Router(sugar, metricService, generator),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      20 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}

	if cfg.MonitorInterval > 0 {
		a.Monitor, err = monitor.New(cfg.MonitorInterval, sugar)
		if err != nil {
			return nil, fmt.Errorf("failed to create monitor: %w", err)
		}
	}

	if cfg.OTLPEndpoint != "" {
		a.Exporter, err = exporter.New(ctx, cfg, storage, sugar)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
	}

	return a, nil
}

// Handler returns the HTTP facade of the sandbox.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP and runs the background tasks until ctx is cancelled or the
// listener fails.
func (a *App) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", a.Config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Config.Address, err)
	}
	return a.Serve(ctx, listener)
}

// Serve is Run on an existing listener. The listener is closed on return.
func (a *App) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Go(func() {
		a.Generator.Run(ctx)
	})
	if a.Monitor != nil {
		a.Monitor.Run(ctx)
	}

	errChan := make(chan error, 1)
	go func() {
		a.logger.Infow("starting server", "address", listener.Addr().String())
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case serveErr = <-errChan:
		a.logger.Errorw("server error", "error", serveErr)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	cancel()
	shutdownErr := a.shutdown()

	wg.Wait()
	if a.Monitor != nil {
		a.Monitor.Wait()
	}

	a.logger.Info("shutdown complete")
	return errors.Join(serveErr, shutdownErr)
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down server: %w", err))
	}
	if a.Exporter != nil {
		if err := a.Exporter.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
