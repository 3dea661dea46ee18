package importer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"infinite-experiment/gazetteer/internal/metrics"
	gormModels "infinite-experiment/gazetteer/internal/models/gorm"
)

// locationIndexes are dropped for the duration of a load and rebuilt after.
var locationIndexes = []string{
	gormModels.LocationZipCodeIndex,
	gormModels.LocationCityIndex,
}

// Loader writes normalized entities in fixed-size batches and manages the
// Location indexes around a load.
type Loader struct {
	db        *gorm.DB
	batchSize int
	log       *zap.SugaredLogger
	metrics   *metrics.MetricsRegistry
}

// WithLocationIndexesDropped drops the Location indexes, runs fn and then
// rebuilds the indexes whether fn succeeded, failed or panicked. A rebuild
// failure is joined to fn's error.
//
// Index DDL runs on the base connection, outside any transaction fn opens.
func (l *Loader) WithLocationIndexesDropped(ctx context.Context, fn func() error) (err error) {
	migrator := l.db.WithContext(ctx).Migrator()

	for _, name := range locationIndexes {
		if !migrator.HasIndex(&gormModels.Location{}, name) {
			continue
		}
		if dropErr := migrator.DropIndex(&gormModels.Location{}, name); dropErr != nil {
			// put back whatever was already dropped
			return errors.Join(fmt.Errorf("failed to drop index %s: %w", name, dropErr), l.rebuildIndexes(ctx))
		}
		l.log.Infow("Dropped index", "index", name)
	}

	defer func() {
		if rebuildErr := l.rebuildIndexes(ctx); rebuildErr != nil {
			err = errors.Join(err, rebuildErr)
		}
	}()

	return fn()
}

func (l *Loader) rebuildIndexes(ctx context.Context) error {
	// the caller's context may already be cancelled; the indexes must come back
	migrator := l.db.WithContext(context.WithoutCancel(ctx)).Migrator()

	var errs []error
	for _, name := range locationIndexes {
		if migrator.HasIndex(&gormModels.Location{}, name) {
			continue
		}
		if err := migrator.CreateIndex(&gormModels.Location{}, name); err != nil {
			errs = append(errs, fmt.Errorf("failed to rebuild index %s: %w", name, err))
			continue
		}
		l.log.Infow("Rebuilt index", "index", name)
	}
	return errors.Join(errs...)
}

// maxBindVars is SQLite's default SQLITE_MAX_VARIABLE_NUMBER. Postgres
// allows 65535, so staying under it suits both destinations.
const maxBindVars = 32766

// rowsPerStatement caps a multi-row INSERT so its bound parameters fit in
// maxBindVars.
func rowsPerStatement[T any](tx *gorm.DB, batchSize int) (int, error) {
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(new(T)); err != nil {
		return 0, err
	}
	cols := max(len(stmt.Schema.DBNames), 1)
	return max(min(batchSize, maxBindVars/cols), 1), nil
}

// insertBatches creates rows in chunks of the loader's batch size inside tx
// and reports progress after every chunk. A chunk wider than the bind
// variable limit is split across several statements. Generated ids are
// written back into rows.
func insertBatches[T any](ctx context.Context, l *Loader, tx *gorm.DB, tier string, rows []*T) error {
	perStmt, err := rowsPerStatement[T](tx, l.batchSize)
	if err != nil {
		return fmt.Errorf("failed to parse %s model: %w", tier, err)
	}

	for start := 0; start < len(rows); start += l.batchSize {
		end := min(start+l.batchSize, len(rows))

		if err := tx.WithContext(ctx).Omit(clause.Associations).CreateInBatches(rows[start:end], perStmt).Error; err != nil {
			return fmt.Errorf("failed to insert %s batch at offset %d: %w", tier, start, err)
		}

		if l.metrics != nil {
			l.metrics.ImportRowsTotal.WithLabelValues(tier).Add(float64(end - start))
		}
		l.log.Infow("Inserted batch", "tier", tier, "batch_rows", end-start, "progress", end, "total", len(rows))
	}
	return nil
}
