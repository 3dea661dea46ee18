package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"infinite-experiment/gazetteer/internal/config"
)

var DB *sqlx.DB

// InitPostgres opens the sqlx handle used for health checks. Postgres is
// retried for a few seconds to ride out container start ordering.
func InitPostgres(opts config.DatabaseOptions) error {
	if opts.Driver != "postgres" {
		return fmt.Errorf("sqlx handle requires postgres driver, got %s", opts.Driver)
	}

	var err error
	for i := 0; i < 10; i++ {
		DB, err = sqlx.Connect("postgres", opts.DSN())
		if err == nil {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return err
}
