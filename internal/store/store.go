package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kmehta-dev/drivehub/internal/models"
)

// DatabaseType selects the persistence backend.
type DatabaseType string

const (
	// DatabaseTypeSQLite is used for tests and single-node development.
	DatabaseTypeSQLite DatabaseType = "sqlite"

	// DatabaseTypePostgres is the production backend.
	DatabaseTypePostgres DatabaseType = "postgres"
)

// Config describes the database connection.
type Config struct {
	Type DatabaseType
	// DSN is the connection string: a postgres URL, or a file path /
	// ":memory:" for sqlite.
	DSN string
}

// Store wraps the database and owns all persistence operations for users,
// the folder/file hierarchy, shares and share links.
type Store struct {
	db *gorm.DB
}

// New opens the configured database and runs migrations.
func New(cfg *Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case DatabaseTypeSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case DatabaseTypePostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Type == DatabaseTypeSQLite {
		// A single connection keeps in-memory databases coherent and
		// serializes sqlite writes.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.File{},
		&models.Share{},
		&models.ShareLink{},
	); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// convertNotFoundError maps gorm's record-not-found onto a domain error.
func convertNotFoundError(err, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}

// isUniqueConstraintError detects unique violations across sqlite and
// postgres without importing driver-specific error types.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
