package main

import (
	"context" // Context for Postgres

	"finance_tracker/internal/config"  // Custom import path (Config)
	"finance_tracker/internal/db"      // Custom import path (Database)
	"finance_tracker/internal/logging" // Logger setup

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logging.Setup(cfg.LogLevel, cfg.IsProd)

	log := logrus.WithField("backend", cfg.StoreBackend)
	switch cfg.StoreBackend {
	case config.BackendMySQL:
		gdb, err := db.OpenMySQL(cfg.MySQLDSN()) // Connect with the Data Source Name (DSN)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := db.MigrateMySQL(gdb); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	case config.BackendSQLite:
		if err := db.MigrateSQLite(cfg.SQLitePath); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	case config.BackendPostgres:
		ctx := context.Background()
		pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer pool.Close()
		if err := db.MigratePostgres(ctx, pool); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	default:
		log.Info("Backend has no schema to migrate")
		return
	}
	log.Info("Schema is up to date")
}
