package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clusterops/internal/metrics"
	"github.com/kailas-cloud/clusterops/internal/repository/memory"
	chitransport "github.com/kailas-cloud/clusterops/internal/transport/chi"
	"github.com/kailas-cloud/clusterops/internal/version"
)

func newEmulatorCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "emulator",
		Short: "Serve an in-memory emulator of the hosted API for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port > 0 {
				a.cfg.Emulator.Port = port
			}
			return a.serveEmulator(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default: emulator.port)")
	return cmd
}

// serveEmulator runs the emulator until ctx is canceled, then shuts down gracefully.
func (a *app) serveEmulator(ctx context.Context) error {
	cfg := a.cfg.Emulator
	logger := a.logger

	logger.Info("Starting clusterops emulator",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.Port),
		zap.Int("api_keys", len(cfg.APIKeys)),
	)
	if len(cfg.APIKeys) == 0 {
		_, _ = color.New(color.FgYellow).Println("emulator.api_keys is empty: authentication is disabled")
	}

	metrics.RegisterEmulatorMetrics()
	handler := chitransport.NewRouter(chitransport.NewServer(memory.New(), logger), cfg.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped gracefully")
	return nil
}
