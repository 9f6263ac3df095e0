package main

import (
	"context"
	"jsonstore/internal/app"
	"jsonstore/internal/config"
	"jsonstore/internal/http/server"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

const (
	envDev   = "dev"
	envProd  = "prod"
	envLocal = "local"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting application", "env", cfg.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := app.NewApp(ctx, log, cfg)
	if err != nil {
		log.Error("failed to init app", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("failed to close app", slog.String("error", err.Error()))
		}
	}()

	err = server.StartServer(ctx, &cfg.HTTPServer, log, app.JSONStoreService, app.EmailVerifyService, cfg.AdminToken)
	if err != nil {
		log.Error("failed to start server", "error", err)
		cancel()
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
