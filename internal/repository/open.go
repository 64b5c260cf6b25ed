package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/emi-tracker/internal/config"
)

// Open builds the RecordStore selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (RecordStore, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendSQLite, config.BackendPostgres:
		db, err := initDB(cfg)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(client, cfg.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.SQLDriver(), cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Store.Backend, err)
	}

	if cfg.Store.Backend == config.BackendSQLite {
		// sqlite allows one writer; serializing here avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}

	return db, nil
}
