package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/db"
	"github.com/geocoder89/userhub/internal/repo/memory"
	"github.com/geocoder89/userhub/internal/repo/metered"
	"github.com/geocoder89/userhub/internal/repo/mongodb"
	"github.com/geocoder89/userhub/internal/repo/postgres"
)

type pingableStore interface {
	metered.Store
	Ping(ctx context.Context) error
}

// openStore connects the backend named by cfg.StoreDriver and prepares its schema.
// The returned close func releases the connection.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (pingableStore, func(), error) {
	switch cfg.StoreDriver {
	case "mongo", "mongodb":
		client, err := db.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}

		repo := mongodb.NewUsersRepo(client.Database(cfg.MongoDB))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}

		log.Info("store ready", "driver", "mongo", "db", cfg.MongoDB)
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil

	case "postgres", "pg":
		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}

		repo := postgres.NewUsersRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure postgres schema: %w", err)
		}

		log.Info("store ready", "driver", "postgres")
		return repo, pool.Close, nil

	case "memory":
		log.Warn("store is in-memory, data is lost on restart")
		return memory.NewUsersRepo(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
