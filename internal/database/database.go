// Package database opens the relational store and keeps its schema current.
package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"userhub/internal/config"
	"userhub/internal/logger"
	"userhub/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open connects to the store selected by driver.
func Open(driver, dsn string, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Gorm(log)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// Migrate brings the schema up to date. Postgres runs the embedded goose
// migrations; sqlite, used locally and in tests, is auto-migrated from the
// models.
func Migrate(ctx context.Context, db *gorm.DB, driver string, log zerolog.Logger) error {
	switch driver {
	case config.DriverPostgres:
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}

		goose.SetBaseFS(migrations)
		if err := goose.SetDialect("postgres"); err != nil {
			return fmt.Errorf("failed to set goose dialect: %w", err)
		}
		if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	case config.DriverSQLite:
		if err := db.WithContext(ctx).AutoMigrate(&models.User{}); err != nil {
			return fmt.Errorf("failed to auto-migrate database: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	log.Info().Str("driver", driver).Msg("database schema is up to date")
	return nil
}

// Ping checks that the store answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
