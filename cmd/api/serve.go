package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"currency-crossover/internal/calculator"
	"currency-crossover/internal/observability"
	"currency-crossover/internal/rates"
	"currency-crossover/internal/server"
	"currency-crossover/internal/widget"

	"go.uber.org/zap"
)

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Logger
	if err := observability.InitLogger(cfg.Logging.Level); err != nil {
		return err
	}
	defer observability.SyncLogger()

	// Tracing, metrics and OTLP logs
	shutdownTelemetry, err := observability.Setup(ctx, cfg.Telemetry.Enabled, initMetrics)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			observability.Logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	a := newApp(ctx, cfg)
	if err := a.registerGauges(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// Router
	router := server.NewRouter(server.Options{CORSOrigins: cfg.Server.CORSOrigins},
		calculator.NewHandler(a.engine).RegisterRoutes,
		rates.RegisterRoutes(a.rates),
		widget.NewHandler(a.store, cfg.Server.CORSOrigins).RegisterRoutes,
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Server.Addr),
			zap.Bool("rates_loaded", a.rates.Loaded()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.close(context.Background())
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	return waitForShutdown(srv, a, cfg.Server.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, a *app, timeout time.Duration) error {
	observability.Logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := srv.Shutdown(ctx)
	a.close(ctx)
	return err
}
