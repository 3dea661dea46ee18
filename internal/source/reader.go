package source

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"infinite-experiment/gazetteer/internal/constants"
)

// Reader streams source rows tier by tier. Countries and states are small
// enough to load whole; city pairs are walked with a cursor and zip rows in
// fixed-size keyset pages.
type Reader struct {
	db       *sqlx.DB
	pageSize int
}

// NewReader creates a reader that fetches zip rows pageSize at a time.
func NewReader(db *sqlx.DB, pageSize int) *Reader {
	if pageSize <= 0 {
		pageSize = constants.ImportBatchSize
	}
	return &Reader{db: db, pageSize: pageSize}
}

// Countries returns every source country row.
func (r *Reader) Countries(ctx context.Context) ([]CountryRow, error) {
	var rows []CountryRow
	if err := r.db.SelectContext(ctx, &rows, constants.SelectSourceCountries); err != nil {
		return nil, fmt.Errorf("failed to read source countries: %w", err)
	}
	return rows, nil
}

// States returns every source state row ordered by country id.
func (r *Reader) States(ctx context.Context) ([]StateRow, error) {
	var rows []StateRow
	if err := r.db.SelectContext(ctx, &rows, constants.SelectSourceStates); err != nil {
		return nil, fmt.Errorf("failed to read source states: %w", err)
	}
	return rows, nil
}

// EachCityPair calls fn for every distinct non-empty (city, state_id) pair.
func (r *Reader) EachCityPair(ctx context.Context, fn func(CityPairRow) error) error {
	rows, err := r.db.QueryxContext(ctx, constants.SelectSourceCityPairs)
	if err != nil {
		return fmt.Errorf("failed to query source city pairs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pair CityPairRow
		if err := rows.StructScan(&pair); err != nil {
			return fmt.Errorf("failed to scan source city pair: %w", err)
		}
		if err := fn(pair); err != nil {
			return err
		}
	}
	return rows.Err()
}

// EachZipPage calls fn with consecutive pages of usable zip rows. The page
// slice is only valid for the duration of the call.
func (r *Reader) EachZipPage(ctx context.Context, fn func([]ZipRow) error) error {
	var lastID int64
	page := make([]ZipRow, 0, r.pageSize)

	for {
		page = page[:0]
		if err := r.db.SelectContext(ctx, &page, constants.SelectSourceZipPage, lastID, r.pageSize); err != nil {
			return fmt.Errorf("failed to read source zipcodes after id %d: %w", lastID, err)
		}
		if len(page) == 0 {
			return nil
		}
		lastID = page[len(page)-1].ID

		if err := fn(page); err != nil {
			return err
		}
		if len(page) < r.pageSize {
			return nil
		}
	}
}
