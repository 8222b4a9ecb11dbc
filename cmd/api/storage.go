package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/app"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/config"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/storage/badgerdb"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/storage/memory"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/storage/postgres"
	transporthttp "github.com/cimillas/ultimate-ticket/services/inventory/internal/transport/http"
	"github.com/cimillas/ultimate-ticket/services/inventory/migrations"
)

type storage struct {
	repo   app.Repository
	checks []transporthttp.HealthCheck
	close  func() error
}

func openStorage(ctx context.Context, cfg config.StorageConfig, logger *logrus.Logger) (*storage, error) {
	switch cfg.Driver {
	case "memory":
		logger.Warn("using in-memory storage, data is lost on restart")
		return &storage{repo: memory.NewStore(), close: func() error { return nil }}, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to db: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		applied, err := migrations.Apply(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		for _, name := range applied {
			logger.WithField("migration", name).Info("applied migration")
		}
		store := postgres.NewStore(pool)
		return &storage{
			repo:   store,
			checks: []transporthttp.HealthCheck{store.Ping},
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil

	case "badger":
		store, err := badgerdb.Open(cfg.BadgerPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open badger: %w", err)
		}
		return &storage{repo: store, close: store.Close}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
