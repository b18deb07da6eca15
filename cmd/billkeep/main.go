package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"billkeep/internal/chat"
	"billkeep/internal/config"
	apphttp "billkeep/internal/http"
	applog "billkeep/internal/log"
	"billkeep/internal/push"
	"billkeep/internal/services"
	"billkeep/internal/store"
	"billkeep/internal/worker"
)

func main() {
	// Load .env for local development (ignore errors in production/docker).
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: "billkeep",
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Corrupt state must surface at startup, never silently start empty.
	st, err := store.Load(cfg.StateFile)
	if err != nil {
		logger.Error("Failed to load state", "error", err, "path", cfg.StateFile)
		os.Exit(1)
	}
	logger.Info("State loaded", "path", cfg.StateFile, "bills", len(st.Bills()), "tokens", len(st.Tokens()))

	chatClient := chat.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if !chatClient.Configured() {
		logger.Warn("No chat credential configured; /api/chat will answer 503")
	}
	notifier := services.NewNotifier(st, push.NewClient(cfg.ExpoPushURL))

	srv := apphttp.NewServer(":"+cfg.Port, st, chatClient, notifier, cfg.PublicBaseURL)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting billkeep server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.ReminderEnabled() {
		reminder, err := worker.NewReminder(cfg.ReminderCron, notifier, logger.WithComponent("reminder"))
		if err != nil {
			logger.Error("Failed to build reminder scheduler", "error", err, "spec", cfg.ReminderCron)
			os.Exit(1)
		}
		g.Go(func() error {
			return reminder.Run(gctx)
		})
	} else {
		logger.Info("Reminder scheduler disabled")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
