package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/tracery"
	"github.com/aretw0/tracery/internal/config"
	"github.com/aretw0/tracery/internal/telemetry"
	httpAdapter "github.com/aretw0/tracery/pkg/adapters/http"
	"github.com/aretw0/tracery/pkg/observability"
	"github.com/aretw0/tracery/pkg/session"
)

const (
	serviceName     = "tracery"
	shutdownTimeout = 5 * time.Second
	expireInterval  = time.Minute
)

// newManager builds the session manager shared by the HTTP and MCP servers.
// A nil registry skips metrics.
func newManager(cfg *config.Config, backend *Backend, reg prometheus.Registerer) (*session.Manager, error) {
	logger := createLogger(cfg)

	var engineOpts []tracery.Option
	if reg != nil {
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		engineOpts = engineOptions(cfg, logger, metrics.Hooks())
	} else {
		engineOpts = engineOptions(cfg, logger)
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithTTL(cfg.SessionTTL),
		session.WithEngineOptions(engineOpts...),
	}
	if backend.Locker != nil {
		opts = append(opts, session.WithLocker(backend.Locker))
	}
	return session.NewManager(backend.Loader, opts...), nil
}

// RunServe starts the HTTP API on cfg.Addr and blocks until ctx is done.
func RunServe(ctx context.Context, cfg *config.Config) error {
	logger := createLogger(cfg)

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, tracery.Version, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("Tracer shutdown failed", "err", err)
		}
	}()

	backend, err := OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	manager, err := newManager(cfg, backend, reg)
	if err != nil {
		return err
	}

	handler, err := httpAdapter.NewHandler(manager,
		httpAdapter.WithMetrics(reg),
		httpAdapter.WithMaxInputSize(cfg.MaxInputSize),
		httpAdapter.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := manager.Run(runCtx, expireInterval); err != nil {
			logger.Error("Session maintenance stopped", "err", err)
		}
	}()

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Tracery Server", "address", srv.Addr, "store", cfg.Store)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("Tracery Server stopped gracefully")
		return nil
	}
}
