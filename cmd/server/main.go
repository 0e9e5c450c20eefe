package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/fileformatter/internal/config"
	"github.com/JonMunkholm/fileformatter/internal/core"
	_ "github.com/JonMunkholm/fileformatter/internal/core/formats" // Register all formats
	"github.com/JonMunkholm/fileformatter/internal/logging"
	"github.com/JonMunkholm/fileformatter/internal/remote"
	"github.com/JonMunkholm/fileformatter/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"mode", cfg.Processing.Mode,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Info("formats registered", "extensions", core.Extensions())

	service := core.NewService(newProcessor(cfg), core.ServiceConfig{
		MaxFileSize:       cfg.Upload.MaxFileSize,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		MaxConcurrent:     cfg.Upload.MaxConcurrent,
		MaxWait:           cfg.Upload.MaxWaitTime,
		JobTimeout:        cfg.Upload.Timeout,
		Path:              cfg.Processing.Mode,
	})
	server := web.NewServer(service, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		service.StartRetentionSweeper(gctx, core.RetentionConfig{
			MaxAge:        cfg.Processing.JobRetention,
			CheckInterval: cfg.Processing.SweepInterval,
		})
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}

		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for jobs to complete", "active", status.Active)
		}
		if err := service.Shutdown(shutdownCtx); err != nil {
			slog.Warn("jobs did not complete in time", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newProcessor returns the processing path selected by PROCESSING_MODE.
func newProcessor(cfg *config.Config) core.Processor {
	if cfg.Processing.IsRemote() {
		slog.Info("using remote processor", "url", cfg.Remote.URL)
		return remote.New(cfg.Remote.URL, remote.Options{
			Timeout:    cfg.Remote.Timeout,
			Attempts:   cfg.Remote.Attempts,
			RetryDelay: cfg.Remote.RetryDelay,
		})
	}
	return core.Pipeline{Engine: core.Engine{DateLayout: cfg.Processing.DateLayout}}.Processor()
}
