package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"infinite-experiment/gazetteer/internal/config"
	"infinite-experiment/gazetteer/internal/logging"
)

// InitORM opens the destination database through GORM.
func InitORM(opts config.DatabaseOptions) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres":
		dialector = postgres.Open(opts.DSN())
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(opts.DSN()))
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Driver, err)
	}

	if opts.Driver == "sqlite" {
		// one writer; the import holds a transaction for its whole run
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	logging.Info("Connected to destination database via GORM", "driver", opts.Driver)
	return db, nil
}

// sqliteDSN turns on foreign key enforcement so the cascade deletes on
// states, cities and locations behave as they do on postgres.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// SQLXFromORM wraps the GORM connection pool for sqlx users (health checks
// on sqlite, where no separate postgres handle exists).
func SQLXFromORM(gdb *gorm.DB, driverName string) (*sqlx.DB, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, driverName), nil
}
