package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"
	"github.com/vadimbarashkov/shorty/internal/app"
	"github.com/vadimbarashkov/shorty/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env file", "err", err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := httplog.NewLogger("shorty", httplog.Options{
		JSON:     cfg.Env != config.EnvDev,
		LogLevel: logLevel(cfg.Env),
		Concise:  true,
	})

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("application stopped", "err", err)
		os.Exit(1)
	}
}

func logLevel(env string) slog.Level {
	if env == config.EnvDev {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
