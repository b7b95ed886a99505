package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vadimbarashkov/shorty/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/shorty/internal/config"
	"github.com/vadimbarashkov/shorty/pkg/postgres"

	postgresrepo "github.com/vadimbarashkov/shorty/internal/adapter/repository/postgres"
	redisrepo "github.com/vadimbarashkov/shorty/internal/adapter/repository/redis"
	redisclient "github.com/vadimbarashkov/shorty/pkg/redis"
)

type recordStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Exists(ctx context.Context, key string) (bool, error)
	SetNX(ctx context.Context, key, value string) (bool, error)
	Update(ctx context.Context, key string, fn func(string) (string, error)) (string, error)
}

func noopClose() error { return nil }

// openStore connects to the backend selected in cfg. The returned func
// releases the connection.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (recordStore, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := redisclient.New(
			ctx,
			cfg.Redis.URL(),
			redisclient.WithDialTimeout(cfg.Redis.DialTimeout),
			redisclient.WithReadTimeout(cfg.Redis.ReadTimeout),
			redisclient.WithWriteTimeout(cfg.Redis.WriteTimeout),
			redisclient.WithPoolSize(cfg.Redis.PoolSize),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		return redisrepo.NewRecordRepository(client, redisrepo.WithMaxTxRetries(cfg.Redis.MaxTxRetries)), client.Close, nil

	case config.BackendPostgres:
		db, err := postgres.New(
			ctx,
			cfg.Postgres.DSN(),
			postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		version, err := postgres.RunMigrations(cfg.Store.MigrationsPath, cfg.Postgres.DSN())
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("migrations applied", "version", version)

		return postgresrepo.NewRecordRepository(db), db.Close, nil

	default:
		return memory.NewRecordRepository(), noopClose, nil
	}
}
