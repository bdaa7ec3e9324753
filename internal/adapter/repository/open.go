package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/script-workspace/internal/domain/repositories"
	"github.com/johnquangdev/script-workspace/internal/infrastructure/cache"
	"github.com/johnquangdev/script-workspace/internal/infrastructure/database"
	"github.com/johnquangdev/script-workspace/pkg/config"
)

// OpenSnapshotRepository opens the store selected by STORE_DRIVER.
func OpenSnapshotRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.SnapshotRepository, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return NewMemorySnapshotRepository(cache.NewMemoryStore(0), cfg.Store.Key), nil
	case config.StoreDriverFile:
		repo, err := NewFileSnapshotRepository(cfg.Store.FilePath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.StoreDriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLSnapshotRepository(db, cfg.Store.Key), nil
	case config.StoreDriverPostgres:
		db, err := database.NewPostgresDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := database.AutoMigrate(db, logger); err != nil {
				_ = database.CloseDB(db)
				return nil, err
			}
		} else if logger != nil {
			logger.Info("skipping migrations; DB_AUTO_MIGRATE is disabled")
		}
		return NewGormSnapshotRepository(db, cfg.Store.Key), nil
	case config.StoreDriverRedis:
		client, err := cache.NewRedisClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewRedisSnapshotRepository(client, cfg.Store.Key), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
