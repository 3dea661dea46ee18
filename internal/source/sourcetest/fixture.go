// Package sourcetest builds small source dataset files for tests.
package sourcetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Schema is the full source layout expected by the importer.
const Schema = `
CREATE TABLE countries (id INTEGER PRIMARY KEY, alpha2 TEXT, alpha3 TEXT, iso TEXT, name TEXT);
CREATE TABLE states (id INTEGER PRIMARY KEY, country_id INTEGER, abbr TEXT, name TEXT);
CREATE TABLE counties (id INTEGER PRIMARY KEY, state_id INTEGER, abbr TEXT, name TEXT, county_seat TEXT);
CREATE TABLE zipcodes (id INTEGER PRIMARY KEY, code TEXT, state_id INTEGER, city TEXT, area_code TEXT, lat REAL, lon REAL, accuracy INTEGER);
`

type Country struct {
	ID     int64
	Name   string
	Alpha2 sql.NullString
	Alpha3 sql.NullString
}

type State struct {
	ID        int64
	CountryID int64
	Abbr      string
	Name      string
}

type Zip struct {
	ID      int64
	Code    string
	StateID int64
	City    string
	Lat     sql.NullFloat64
	Lon     sql.NullFloat64
}

// Dataset is the content of a fixture file.
type Dataset struct {
	Countries []Country
	States    []State
	Zips      []Zip
}

// Float wraps a coordinate for Zip literals.
func Float(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }

// Str wraps an optional string for Country literals.
func Str(v string) sql.NullString { return sql.NullString{String: v, Valid: true} }

// Write creates a source file in a temp dir containing ds and returns its path.
func Write(t testing.TB, ds Dataset) string {
	t.Helper()
	return WriteSchema(t, Schema, ds)
}

// WriteSchema is Write with a custom DDL, for validation tests.
func WriteSchema(t testing.TB, schema string, ds Dataset) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "source.sqlite3")
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}
	for _, c := range ds.Countries {
		db.MustExec(`INSERT INTO countries (id, name, alpha2, alpha3, iso) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Alpha2, c.Alpha3, "")
	}
	for _, s := range ds.States {
		db.MustExec(`INSERT INTO states (id, country_id, abbr, name) VALUES (?, ?, ?, ?)`,
			s.ID, s.CountryID, s.Abbr, s.Name)
	}
	for _, z := range ds.Zips {
		db.MustExec(`INSERT INTO zipcodes (id, code, state_id, city, area_code, lat, lon, accuracy) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			z.ID, z.Code, z.StateID, z.City, "", z.Lat, z.Lon, 4)
	}
	return path
}

// Basic is one country, one state, two cities and three zip rows, with two
// rows in the first city and one in the second.
func Basic() Dataset {
	return Dataset{
		Countries: []Country{{ID: 1, Name: "United States", Alpha2: Str("US"), Alpha3: Str("USA")}},
		States:    []State{{ID: 10, CountryID: 1, Abbr: "IL", Name: "Illinois"}},
		Zips: []Zip{
			{ID: 1, Code: "62701", StateID: 10, City: "Springfield", Lat: Float(39.80), Lon: Float(-89.64)},
			{ID: 2, Code: "62702", StateID: 10, City: "Springfield", Lat: Float(39.82), Lon: Float(-89.65)},
			{ID: 3, Code: "60601", StateID: 10, City: "Chicago", Lat: Float(41.88), Lon: Float(-87.62)},
		},
	}
}
