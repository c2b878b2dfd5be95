package trackingservice

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"bus-fleet/internal/config"
	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/observability"
	"bus-fleet/internal/tracking-service/adapters/driver/myhttp"
)

func Execute(ctx context.Context, mylog mylogger.Logger, cfg *config.Config) error {
	newCtx, close := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer close()

	// Prometheus scrape endpoint and health probe run on their own port.
	go func() {
		if err := observability.StartMetricsServer(cfg.Srv.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mylog.Error("metrics server failed", err)
		}
	}()

	server := myhttp.NewServer(newCtx, ctx, mylog, cfg)

	// Run server in goroutine
	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- server.Run()
	}()

	// Wait for signal or server crash
	select {
	case <-newCtx.Done():
		mylog.Info("Shutdown signal received")
		return server.Stop(context.Background())
	case err := <-runErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			mylog.Error("Server failed unexpectedly", err)
			return err
		}
		mylog.Info("Server exited normally")
		return nil
	}
}
