// Package database owns the process-wide database handle.
//
// The handle is constructed once by the composition root and injected into
// every repository. When no database path is configured the handle is still
// valid but reports Available() == false: repositories then return empty
// results for reads and ErrUnavailable for writes, so the application keeps
// serving in a degraded read-only-empty mode instead of crashing.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/honiara/homefinder/internal/entities"
)

// ErrUnavailable is returned by write operations when no database is configured.
var ErrUnavailable = errors.New("database not available")

type Database struct {
	DB *gorm.DB
}

// New opens the sqlite database at dbPath and migrates the schema.
// An empty dbPath yields an unavailable handle, not an error.
func New(dbPath string) (*Database, error) {
	if dbPath == "" {
		log.Printf("WARNING: no database path configured, running without persistence")
		return &Database{}, nil
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Property{},
		&entities.PropertyImage{},
		&entities.Favorite{},
		&entities.Inquiry{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized at %s", dbPath)

	return &Database{DB: db}, nil
}

// Available reports whether a backing database is configured.
func (d *Database) Available() bool {
	return d != nil && d.DB != nil
}

// SQLDB exposes the underlying *sql.DB, used by the session store.
// Returns nil when the database is unavailable.
func (d *Database) SQLDB() (*sql.DB, error) {
	if !d.Available() {
		return nil, nil
	}
	return d.DB.DB()
}

func (d *Database) Close() error {
	if !d.Available() {
		return nil
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
