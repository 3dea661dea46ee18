// Package importer loads the flat source dataset into the normalized
// Country, State, City and Location tables in one atomic run.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"infinite-experiment/gazetteer/internal/constants"
	"infinite-experiment/gazetteer/internal/logging"
	"infinite-experiment/gazetteer/internal/metrics"
	gormModels "infinite-experiment/gazetteer/internal/models/gorm"
	"infinite-experiment/gazetteer/internal/source"
)

// SourceReader is the read side of an import. *source.Reader implements it.
type SourceReader interface {
	Countries(ctx context.Context) ([]source.CountryRow, error)
	States(ctx context.Context) ([]source.StateRow, error)
	EachCityPair(ctx context.Context, fn func(source.CityPairRow) error) error
	EachZipPage(ctx context.Context, fn func([]source.ZipRow) error) error
}

// ImportResult summarizes a completed run.
type ImportResult struct {
	RunID     uuid.UUID     `json:"run_id"`
	Countries int           `json:"countries"`
	States    int           `json:"states"`
	Cities    int           `json:"cities"`
	Locations int           `json:"locations"`
	Dropped   DroppedCounts `json:"dropped"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Importer runs bulk imports into a destination database.
type Importer struct {
	dest      *gorm.DB
	batchSize int
	log       *zap.SugaredLogger
	metrics   *metrics.MetricsRegistry
}

type Option func(*Importer)

// WithBatchSize overrides the rows-per-insert batch size.
func WithBatchSize(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.batchSize = n
		}
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(im *Importer) {
		im.log = log
	}
}

func WithMetrics(m *metrics.MetricsRegistry) Option {
	return func(im *Importer) {
		im.metrics = m
	}
}

// New creates an importer writing to dest, which must already be migrated.
func New(dest *gorm.DB, opts ...Option) *Importer {
	im := &Importer{
		dest:      dest,
		batchSize: constants.ImportBatchSize,
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.log == nil {
		im.log = logging.GetLogger()
	}
	return im
}

// Run imports the source file at path. The file must exist and pass
// structural validation before anything is written.
func (im *Importer) Run(ctx context.Context, path string) (*ImportResult, error) {
	db, err := source.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := source.Validate(ctx, db); err != nil {
		return nil, err
	}
	if err := source.Tune(ctx, db); err != nil {
		return nil, err
	}

	return im.load(ctx, source.NewReader(db, im.batchSize), path)
}

// Load imports from an already opened and validated source.
func (im *Importer) Load(ctx context.Context, src SourceReader) (*ImportResult, error) {
	return im.load(ctx, src, "")
}

func (im *Importer) load(ctx context.Context, src SourceReader, path string) (*ImportResult, error) {
	runID := uuid.New()
	log := im.log.With("run_id", runID.String())
	if path != "" {
		log = log.With("source", path)
	}

	started := time.Now()
	result := &ImportResult{RunID: runID}
	norm := NewNormalizer(log)
	loader := &Loader{db: im.dest, batchSize: im.batchSize, log: log, metrics: im.metrics}

	log.Infow("Starting import", "batch_size", im.batchSize)

	err := loader.WithLocationIndexesDropped(ctx, func() error {
		return im.dest.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return im.loadTiers(ctx, tx, loader, norm, src, result)
		})
	})

	result.Dropped = norm.Dropped()
	result.Elapsed = time.Since(started)
	im.observe(result, err)

	if err != nil {
		log.Errorw("Import failed, all changes rolled back", "error", err, "elapsed", result.Elapsed)
		return nil, fmt.Errorf("import failed: %w", err)
	}

	log.Infow("Import completed",
		"countries", result.Countries,
		"states", result.States,
		"cities", result.Cities,
		"locations", result.Locations,
		"dropped", result.Dropped.Total(),
		"elapsed", result.Elapsed,
	)
	return result, nil
}

// loadTiers runs every tier inside tx. Each tier's map is complete before
// the next one starts.
func (im *Importer) loadTiers(ctx context.Context, tx *gorm.DB, loader *Loader, norm *Normalizer, src SourceReader, result *ImportResult) error {
	countryRows, err := src.Countries(ctx)
	if err != nil {
		return err
	}
	countries := norm.Countries(countryRows)
	if err := insertBatches(ctx, loader, tx, TierCountries, countries); err != nil {
		return err
	}
	result.Countries = len(countries)

	stateRows, err := src.States(ctx)
	if err != nil {
		return err
	}
	states := norm.States(stateRows)
	if err := insertBatches(ctx, loader, tx, TierStates, states); err != nil {
		return err
	}
	result.States = len(states)

	cities := make([]*gormModels.City, 0, im.batchSize)
	flushCities := func() error {
		if err := insertBatches(ctx, loader, tx, TierCities, cities); err != nil {
			return err
		}
		result.Cities += len(cities)
		cities = cities[:0]
		return nil
	}
	err = src.EachCityPair(ctx, func(pair source.CityPairRow) error {
		city, ok := norm.City(pair)
		if !ok {
			return nil
		}
		cities = append(cities, city)
		if len(cities) >= im.batchSize {
			return flushCities()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flushCities(); err != nil {
		return err
	}

	// Resolve locations against what was actually persisted.
	var persisted []gormModels.City
	err = tx.WithContext(ctx).
		Select("id", "name", "state_id").
		FindInBatches(&persisted, im.batchSize, func(_ *gorm.DB, _ int) error {
			for _, c := range persisted {
				norm.IndexCity(c)
			}
			return nil
		}).Error
	if err != nil {
		return fmt.Errorf("failed to read persisted cities: %w", err)
	}

	return src.EachZipPage(ctx, func(page []source.ZipRow) error {
		locations := make([]*gormModels.Location, 0, len(page))
		for _, row := range page {
			if loc, ok := norm.Location(row); ok {
				locations = append(locations, loc)
			}
		}
		if err := insertBatches(ctx, loader, tx, TierLocations, locations); err != nil {
			return err
		}
		result.Locations += len(locations)
		return nil
	})
}

func (im *Importer) observe(result *ImportResult, err error) {
	if im.metrics == nil {
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	im.metrics.ImportRunsTotal.WithLabelValues(outcome).Inc()
	im.metrics.ImportDuration.Observe(result.Elapsed.Seconds())

	im.metrics.ImportDroppedRowsTotal.WithLabelValues(TierStates).Add(float64(result.Dropped.States))
	im.metrics.ImportDroppedRowsTotal.WithLabelValues(TierCities).Add(float64(result.Dropped.Cities))
	im.metrics.ImportDroppedRowsTotal.WithLabelValues(TierLocations).Add(float64(result.Dropped.Locations))
}

// IsValidationError reports whether err came from source structure checks.
func IsValidationError(err error) bool {
	var verr *source.ValidationError
	return errors.As(err, &verr)
}
