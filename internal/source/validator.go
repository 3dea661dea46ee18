package source

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"infinite-experiment/gazetteer/internal/constants"
)

// TableSpec names a required source table and the columns it must expose.
type TableSpec struct {
	Name    string
	Columns []string
}

// RequiredTables is the source layout the importer depends on. counties is
// not read by the import but its absence means the file is not the
// expected dataset.
var RequiredTables = []TableSpec{
	{Name: "countries", Columns: []string{"id", "alpha2", "alpha3", "iso", "name"}},
	{Name: "states", Columns: []string{"id", "country_id", "abbr", "name"}},
	{Name: "counties", Columns: []string{"id", "state_id", "abbr", "name", "county_seat"}},
	{Name: "zipcodes", Columns: []string{"id", "code", "state_id", "city", "area_code", "lat", "lon", "accuracy"}},
}

// ValidationError lists everything missing from the source in one pass.
type ValidationError struct {
	MissingTables  []string
	MissingColumns map[string][]string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingTables) > 0 {
		parts = append(parts, "missing tables: "+strings.Join(e.MissingTables, ", "))
	}

	tables := make([]string, 0, len(e.MissingColumns))
	for table := range e.MissingColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		parts = append(parts, fmt.Sprintf("missing columns in %s: %s", table, strings.Join(e.MissingColumns[table], ", ")))
	}

	return "source: invalid dataset structure: " + strings.Join(parts, "; ")
}

func (e *ValidationError) empty() bool {
	return len(e.MissingTables) == 0 && len(e.MissingColumns) == 0
}

// Validate checks the source against RequiredTables. It returns nil when
// the structure is complete, a *ValidationError describing every missing
// table and column otherwise, or the underlying error if the catalog could
// not be read. It never writes.
func Validate(ctx context.Context, db *sqlx.DB) error {
	return validateTables(ctx, db, RequiredTables)
}

func validateTables(ctx context.Context, db *sqlx.DB, specs []TableSpec) error {
	var tables []string
	if err := db.SelectContext(ctx, &tables, constants.SelectSourceTables); err != nil {
		return fmt.Errorf("failed to list source tables: %w", err)
	}
	existing := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		existing[t] = struct{}{}
	}

	verr := &ValidationError{MissingColumns: map[string][]string{}}
	for _, spec := range specs {
		if _, ok := existing[spec.Name]; !ok {
			verr.MissingTables = append(verr.MissingTables, spec.Name)
			continue
		}

		var columns []string
		if err := db.SelectContext(ctx, &columns, constants.SelectSourceColumns, spec.Name); err != nil {
			return fmt.Errorf("failed to read columns of %s: %w", spec.Name, err)
		}
		have := make(map[string]struct{}, len(columns))
		for _, c := range columns {
			have[c] = struct{}{}
		}
		for _, want := range spec.Columns {
			if _, ok := have[want]; !ok {
				verr.MissingColumns[spec.Name] = append(verr.MissingColumns[spec.Name], want)
			}
		}
	}

	if verr.empty() {
		return nil
	}
	return verr
}
