// Package dbtest opens throwaway destination databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"infinite-experiment/gazetteer/internal/config"
	"infinite-experiment/gazetteer/internal/db"

	"gorm.io/gorm"
)

// Open returns a migrated SQLite destination in t's temp dir. A file is used
// rather than :memory: so the index rebuild and the transaction share one
// database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.InitORM(config.DatabaseOptions{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "gazetteer.sqlite3"),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}
