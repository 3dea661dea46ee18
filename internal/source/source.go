// Package source reads the flat geographic reference dataset (a SQLite
// file with countries, states, counties and zipcodes tables).
package source

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver used for source files.
const DriverName = "sqlite"

// ErrSourceNotFound is returned when the source dataset file does not exist.
var ErrSourceNotFound = errors.New("source: dataset file not found")

// tuningPragmas trade durability for read speed; the source is opened
// read-only, so nothing is at risk.
var tuningPragmas = []string{
	"PRAGMA cache_size = -2000000",
	"PRAGMA temp_store = MEMORY",
}

// Open checks that path exists and opens it read-only. The existence check
// happens before any connection is attempted.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat source %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path)
	}

	db, err := sqlx.Open(DriverName, "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", path, err)
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to source %s: %w", path, err)
	}
	return db, nil
}

// Tune applies read-side performance pragmas to the source connection.
func Tune(ctx context.Context, db *sqlx.DB) error {
	for _, pragma := range tuningPragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return nil
}
