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

	"github.com/swapspace/membership-backend/internal/airtable"
	"github.com/swapspace/membership-backend/internal/api"
	"github.com/swapspace/membership-backend/internal/config"
	"github.com/swapspace/membership-backend/internal/email"
	"github.com/swapspace/membership-backend/internal/sweep"
	"github.com/swapspace/membership-backend/internal/workflow"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	// All required credentials are validated here, once. A handler can only
	// exist if its configuration does — nothing checks env vars at request
	// time.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	// ── Record store (Airtable) ───────────────────────────────────────────────
	store := airtable.NewClient(cfg.AirtableToken, cfg.AirtableBaseID, cfg.AirtableTableID)

	// ── Email (Resend) ────────────────────────────────────────────────────────
	// Optional for the submission path: without a key the acknowledgment
	// email is skipped and submissions still work.
	var mailer email.Sender
	if cfg.ResendAPIKey != "" {
		mailer = email.NewResendClient(
			cfg.ResendAPIKey,
			cfg.EmailFromAddr,
			cfg.EmailFromName,
			cfg.EmailReplyTo,
		)
		logger.Info("email: acknowledgment and approval emails enabled")
	} else {
		logger.Warn("email: RESEND_API_KEY not set, no emails will be sent")
	}

	// ── Workflow services ─────────────────────────────────────────────────────
	submitter := workflow.NewSubmitter(store, mailer, logger)
	uploader := workflow.NewUploader(store, logger)
	sweeper := workflow.NewSweeper(store, mailer, logger)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		submitter,
		uploader,
		sweeper,
		api.Config{
			CronSecret: cfg.CronSecret,
			Env:        cfg.Env,
		},
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second, // photo uploads can be slow on bad links
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	// Root context cancelled by OS signal. Sweep runner and HTTP server both
	// respect it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Sweep runner (optional) ───────────────────────────────────────────────
	// Most deployments leave this off and let the platform scheduler hit the
	// cron endpoint instead.
	if cfg.SweepInterval > 0 {
		runner := sweep.NewRunner(sweeper, cfg.SweepInterval, logger)
		go runner.Start(ctx)
	}

	// Start the HTTP server in a background goroutine.
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until either a signal arrives or the server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
