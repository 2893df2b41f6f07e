package db

import (
	"finance_tracker/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// OpenMySQL opens a GORM connection to MySQL
func OpenMySQL(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{}) // Open a connection to the database
}

// MigrateMySQL performs automatic migration for the MySQL schema
func MigrateMySQL(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.Transaction{}); err != nil {
		return err
	}
	logrus.WithField("backend", "mysql").Info("Migration completed.") // Log successful migration
	return nil
}
