package source

import "database/sql"

// CountryRow is one row of the source countries table.
type CountryRow struct {
	ID     int64          `db:"id"`
	Name   sql.NullString `db:"name"`
	Alpha2 sql.NullString `db:"alpha2"`
	Alpha3 sql.NullString `db:"alpha3"`
	ISO    sql.NullString `db:"iso"`
}

// StateRow is one row of the source states table.
type StateRow struct {
	ID        int64          `db:"id"`
	Name      sql.NullString `db:"name"`
	CountryID sql.NullInt64  `db:"country_id"`
	Abbr      sql.NullString `db:"abbr"`
}

// CityPairRow is one distinct (city, state_id) pair from zipcodes.
type CityPairRow struct {
	City    string `db:"city"`
	StateID int64  `db:"state_id"`
}

// ZipRow is one zipcodes row as consumed by the location tier.
type ZipRow struct {
	ID       int64           `db:"id"`
	Code     string          `db:"code"`
	City     string          `db:"city"`
	StateID  int64           `db:"state_id"`
	Lat      sql.NullFloat64 `db:"lat"`
	Lon      sql.NullFloat64 `db:"lon"`
	AreaCode sql.NullString  `db:"area_code"`
}
