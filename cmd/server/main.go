// Command server starts the UPIShield fraud-defense API.
//
// Usage:
//
//	go run ./cmd/server
//
// Configuration is read entirely from the environment (see
// internal/config); a .env file in the working directory is loaded
// best-effort.
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

	"upishield/internal/api"
	"upishield/internal/chat"
	"upishield/internal/config"
	"upishield/internal/honeypot"
	"upishield/internal/llm"
	"upishield/internal/mlclient"
	"upishield/internal/store"
)

func main() {
	// Structured logging — slog text handler on stdout at Info level.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := config.Load()

	// ── Wire dependencies ─────────────────────────────────────────────────────
	blacklist := store.NewBlacklistStore()
	domains := store.NewPhishingDomainStore()
	sessions := store.NewChatSessionStore()

	var llmClient *llm.Client
	if cfg.LLM.Enabled {
		llmClient = llm.NewClient(cfg.LLM)
	}
	mlClient := mlclient.New(cfg.ML)

	orch := chat.New(sessions, blacklist, domains, llmClient, cfg.Scoring.ScamThreshold)

	notifier := honeypot.NewNotifier(cfg.Honeypot.CallbackURL)
	hpEngine := honeypot.New(llmClient, notifier, cfg.Scoring.ScamThreshold, cfg.Honeypot.MinMessagesForCallback, cfg.Honeypot.SessionTimeout)

	sweeper := honeypot.NewSweeper(hpEngine, cfg.Honeypot.SweepInterval)
	go sweeper.Start()
	defer sweeper.Stop()

	handler := api.NewHandler(blacklist, domains, orch, hpEngine, llmClient, mlClient, cfg.Scoring.ScamThreshold)
	router := api.NewRouter(handler, cfg.Auth.APIKey)

	// ── Start HTTP server ─────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server listening", "port", cfg.Server.Port, "auth_enabled", cfg.Auth.APIKey != "", "llm_enabled", cfg.LLM.Enabled, "ml_enabled", cfg.ML.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
