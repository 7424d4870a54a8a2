package app

import (
	"context"
	"fmt"
	"time"
	"todoBot/internal/config"
	"todoBot/internal/logger"
	"todoBot/internal/repository/task/inmemory"
	"todoBot/internal/repository/task/postgres"
	"todoBot/internal/service"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type Repository interface {
	service.TaskRepository
	Close()
}

const (
	RepositoryInMemory = "inmemory"
	RepositoryPostgres = "postgres"
)

func OpenRepository(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.Repository.Type {
	case RepositoryInMemory:
		logger.Info("Хранилище: in-memory")
		return inmemory.NewTaskStorage(), nil
	case RepositoryPostgres:
		return connectPostgres(ctx, cfg.Database)
	default:
		return nil, fmt.Errorf("неизвестный тип хранилища %q", cfg.Repository.Type)
	}
}

// connectPostgres повторяет подключение с экспоненциальной паузой: база может подниматься дольше бота
func connectPostgres(ctx context.Context, db config.DatabaseConfig) (*postgres.Storage, error) {
	if db.AutoMigrate {
		err := retry(ctx, db.ConnectRetries, "migrate", func() error {
			return postgres.Migrate(db.URL)
		})
		if err != nil {
			return nil, fmt.Errorf("миграции: %w", err)
		}
	}

	var storage *postgres.Storage
	err := retry(ctx, db.ConnectRetries, "connect", func() error {
		s, err := postgres.New(ctx, db.URL,
			postgres.WithMaxConns(db.MaxConnections),
			postgres.WithMinConns(db.MinConnections),
			postgres.WithMaxConnIdleTime(db.IdleTimeout),
		)
		if err != nil {
			return err
		}
		storage = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Хранилище: PostgreSQL подключен",
		zap.Int32("max_connections", db.MaxConnections))
	return storage, nil
}

func retry(ctx context.Context, retries uint64, operation string, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second

	b := backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx)

	return backoff.RetryNotify(op, b, func(err error, next time.Duration) {
		logger.Warn("Хранилище: попытка не удалась, повтор",
			zap.String("operation", operation),
			zap.Error(err),
			zap.Duration("next_in", next))
	})
}
