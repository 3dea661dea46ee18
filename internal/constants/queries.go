package constants

// Source dataset queries. The source is a SQLite file laid out as
// countries / states / counties / zipcodes.
const (
	SelectSourceTables = `
	SELECT name FROM sqlite_master WHERE type = 'table'
	`

	SelectSourceColumns = `
	SELECT name FROM pragma_table_info(?)
	`

	SelectSourceCountries = `
	SELECT id, name, alpha2, alpha3, iso FROM countries
	`

	SelectSourceStates = `
	SELECT id, name, country_id, abbr
	FROM states
	ORDER BY country_id
	`

	SelectSourceCityPairs = `
	SELECT DISTINCT city, state_id
	FROM zipcodes
	WHERE city IS NOT NULL
	  AND state_id IS NOT NULL
	  AND city != ''
	ORDER BY state_id, city
	`

	// Keyset paging on id keeps each page query independent of the last.
	SelectSourceZipPage = `
	SELECT id, code, city, state_id, lat, lon, area_code
	FROM zipcodes
	WHERE city IS NOT NULL
	  AND state_id IS NOT NULL
	  AND code IS NOT NULL
	  AND city != ''
	  AND id > ?
	ORDER BY id
	LIMIT ?
	`
)

// Destination read queries that do not fit the GORM query builder well.
const (
	SelectCityNameByLocationCityID = `
	SELECT cities.name
	FROM locations
	JOIN cities ON cities.id = locations.city_id
	WHERE locations.city_id = ?
	LIMIT 1
	`
)
