package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/internal/di"
	"github.com/gtemgoua/property-manager-app/pkg/config"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/gtemgoua/property-manager-app/pkg/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the overdue payment scanner",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Get().Component("server")

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		log.Warn("telemetry disabled", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	if cfg.Alerts.Enabled {
		container.AlertScanner.Start(ctx)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      container.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
			zap.Bool("in_memory", cfg.Database.InMemory),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case serveErr = <-errCh:
		log.Error("HTTP server failed", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	container.Close(shutdownCtx)
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Warn("telemetry shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
	_ = logger.Sync()

	return serveErr
}
