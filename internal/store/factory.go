package store

import (
	"context"
	"fmt"

	"finance_tracker/internal/config"
	"finance_tracker/internal/db"

	"github.com/sirupsen/logrus"
)

// Opened is a ready Store plus the function that releases its resources
type Opened struct {
	Store   Store
	Cleanup func() error
}

// Open builds the Store selected by cfg.StoreBackend. projectID comes from the
// service account and is only used by the firestore backend.
func Open(ctx context.Context, cfg *config.Config, projectID string) (*Opened, error) {
	log := logrus.WithField("backend", cfg.StoreBackend)

	switch cfg.StoreBackend {
	case config.BackendFirestore:
		fs, err := NewFirestoreStore(ctx, projectID, cfg.ServiceAccountPath, cfg.FirestoreCollection)
		if err != nil {
			return nil, err
		}
		log.WithField("collection", cfg.FirestoreCollection).Info("Initialized Firestore store")
		return &Opened{Store: fs, Cleanup: fs.Close}, nil

	case config.BackendMySQL:
		gdb, err := db.OpenMySQL(cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("connect to mysql: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("mysql handle: %w", err)
		}
		log.WithField("host", cfg.DBHost).Info("Initialized MySQL store")
		return &Opened{Store: NewGormStore(gdb), Cleanup: sqlDB.Close}, nil

	case config.BackendSQLite:
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.SQLitePath).Info("Initialized SQLite store")
		return &Opened{Store: NewSQLiteStore(conn), Cleanup: conn.Close}, nil

	case config.BackendPostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("Initialized Postgres store")
		return &Opened{Store: NewPostgresStore(pool), Cleanup: func() error { pool.Close(); return nil }}, nil

	case config.BackendMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		return &Opened{Store: NewMemoryStore(), Cleanup: func() error { return nil }}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.StoreBackend)
	}
}
