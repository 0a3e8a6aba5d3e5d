package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noirclub/noird/internal/config"
	"github.com/noirclub/noird/internal/events"
	"github.com/noirclub/noird/internal/server"
	"github.com/noirclub/noird/internal/store"
	"github.com/noirclub/noird/internal/store/memory"
	"github.com/noirclub/noird/internal/store/postgres"
	noirsync "github.com/noirclub/noird/internal/sync"
	"github.com/spf13/cobra"
)

var serveMemory bool

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the noird HTTP server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create an HTTP client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		// Load configuration.
		var cfg *config.Config
		if serveMemory {
			cfg = config.LoadMemory()
		} else {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
		}

		// Open the event store.
		var st store.Store
		if serveMemory {
			st = memory.New()
			logger.Info("using in-memory store; the log is gone on exit")
		} else {
			pg, err := postgres.New(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			st = pg
		}

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (NOIRD_NATS_URL not set)")
		}

		// Create server.
		noirServer := server.NewNoirServer(st, publisher)
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: noirServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start sync scheduler if a destination is configured.
		var scheduler *noirsync.Scheduler
		if cfg.SyncInterval > 0 && cfg.SyncS3Bucket != "" {
			s3Dest, err := noirsync.NewS3Destination(
				context.Background(),
				cfg.SyncS3Bucket,
				cfg.SyncS3Prefix,
				cfg.SyncS3Region,
				cfg.SyncS3Endpoint,
			)
			if err != nil {
				logger.Error("failed to create S3 sync destination", "err", err)
			} else {
				scheduler = noirsync.NewScheduler(st, []noirsync.Destination{s3Dest}, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("sync scheduler started", "bucket", cfg.SyncS3Bucket, "interval", cfg.SyncInterval)
			}
		}

		logger.Info("noird server started", "http_addr", cfg.HTTPAddr)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown.
		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "run with an in-memory store (development only)")
}
