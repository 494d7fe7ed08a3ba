package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rifqialba/urilaga/config"
	urilagahttp "github.com/Rifqialba/urilaga/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the gallery HTTP server.

Routes:
  POST /login       check a username and password
  POST /upload      store an image and its metadata
  GET  /images      list images with page, limit, filter and search
  GET  /files/*     signed object downloads (filesystem storage only)
  GET  /healthz     database liveness`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 3000, "HTTP server port (env: URILAGA_SERVER_PORT or PORT)")
	serveCmd.Flags().String("public-dir", "", "directory of static files served for unmatched GET requests")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	objects, err := openObjectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = objects.close() }()

	service, err := newGalleryService(cfg, db.GetRepo(), objects.store)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handlerConfig := urilagahttp.HandlerConfig{
		MaxUploadSize:  cfg.Server.MaxUploadSize,
		Objects:        objects.files,
		FileVerifier:   objects.verifier,
		FilesPrefix:    objects.filesPrefix,
		LoginRateLimit: cfg.Server.LoginRateLimit,
		LoginBurst:     cfg.Server.LoginBurst,
		TrustProxy:     cfg.Server.TrustProxy,
		HealthCheck:    db.Ping,
		CORS:           cfg.Server.CORS,
	}

	if cfg.Server.PublicDir != "" {
		publicRoot, openErr := os.OpenRoot(cfg.Server.PublicDir)
		if openErr != nil {
			return fmt.Errorf("open public directory: %w", openErr)
		}
		defer func() { _ = publicRoot.Close() }()
		handlerConfig.PublicDir = publicRoot.FS()
	}

	if cfg.Cleanup.Schedule != "" {
		scheduler, schedErr := scheduleSweep(cfg.Cleanup.Schedule, service, cfg.Cleanup.GracePeriod, cfg.Service.CleanupTimeout)
		if schedErr != nil {
			return schedErr
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		slog.Info("scheduled orphan cleanup", "schedule", cfg.Cleanup.Schedule, "grace_period", cfg.Cleanup.GracePeriod)
	}

	handler := urilagahttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "storage", cfg.Storage.Backend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
