package store

import (
	"context"
	"database/sql"
	"fmt"

	"georesolve/internal/geonames"
	"georesolve/internal/hierarchy"
)

// Candidate is one lookup hit, carrying the population used for ranking and
// the admin1 code the city tier filters on.
type Candidate struct {
	GeonameID  int64
	Name       string
	Population int64
	Admin1Code string
}

// Counts reports per-table row totals.
type Counts struct {
	States     int64
	Cities     int64
	StateNames int64
	CityNames  int64
}

// TableCounts returns row totals for all four tables.
func (s *Store) TableCounts(ctx context.Context) (Counts, error) {
	var counts Counts
	queries := []struct {
		table string
		dest  *int64
	}{
		{"states", &counts.States},
		{"cities", &counts.Cities},
		{"state_names", &counts.StateNames},
		{"city_names", &counts.CityNames},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+q.table).Scan(q.dest); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return counts, nil
}

// DuplicateGroup is a (country, name) alias shared by multiple entities.
type DuplicateGroup struct {
	CountryCode string
	Name        string
	GeonameIDs  string
	Entities    int64
}

// DuplicateNameGroups lists alias keys pointing at more than one entity in
// the given index table ("state_names" or "city_names"). Read-only: the index
// itself is never deduplicated.
func (s *Store) DuplicateNameGroups(ctx context.Context, table string) ([]DuplicateGroup, error) {
	if table != "state_names" && table != "city_names" {
		return nil, fmt.Errorf("unknown name table %q", table)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
        SELECT country_code, name, GROUP_CONCAT(DISTINCT geonameid), COUNT(DISTINCT geonameid)
        FROM %s
        GROUP BY country_code, name COLLATE NOCASE
        HAVING COUNT(DISTINCT geonameid) > 1
        ORDER BY COUNT(DISTINCT geonameid) DESC, country_code, name`, table))
	if err != nil {
		return nil, fmt.Errorf("query duplicates in %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var groups []DuplicateGroup
	for rows.Next() {
		var g DuplicateGroup
		if err := rows.Scan(&g.CountryCode, &g.Name, &g.GeonameIDs, &g.Entities); err != nil {
			return nil, fmt.Errorf("scan duplicate group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duplicates: %w", err)
	}
	return groups, nil
}

// States returns every state record ordered by id, for export.
func (s *Store) States(ctx context.Context) ([]geonames.Record, error) {
	return s.placeRows(ctx, "states")
}

// Cities returns every city record ordered by id, for export.
func (s *Store) Cities(ctx context.Context) ([]geonames.Record, error) {
	return s.placeRows(ctx, "cities")
}

func (s *Store) placeRows(ctx context.Context, table string) ([]geonames.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY geonameid", placeColumns, table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var records []geonames.Record
	for rows.Next() {
		var r geonames.Record
		var elevation sql.NullInt64
		err := rows.Scan(
			&r.GeonameID, &r.Name, &r.ASCIIName, &r.AlternateNames, &r.Latitude, &r.Longitude,
			&r.FeatureClass, &r.FeatureCode, &r.CountryCode, &r.CC2,
			&r.Admin1Code, &r.Admin2Code, &r.Admin3Code, &r.Admin4Code,
			&r.Population, &elevation, &r.DEM, &r.Timezone, &r.ModificationDate)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		r.Elevation = elevation.Int64
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return records, nil
}

// StateNames returns every state alias row, for export.
func (s *Store) StateNames(ctx context.Context) ([]hierarchy.StateName, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT country_code, name, geonameid FROM state_names ORDER BY country_code, name, geonameid")
	if err != nil {
		return nil, fmt.Errorf("query state_names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []hierarchy.StateName
	for rows.Next() {
		var row hierarchy.StateName
		if err := rows.Scan(&row.CountryCode, &row.Name, &row.GeonameID); err != nil {
			return nil, fmt.Errorf("scan state_names row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state_names: %w", err)
	}
	return out, nil
}

// CityNames returns every city alias row, for export.
func (s *Store) CityNames(ctx context.Context) ([]hierarchy.CityName, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT country_code, state_geonameid, admin1_code, name, geonameid FROM city_names ORDER BY country_code, name, geonameid")
	if err != nil {
		return nil, fmt.Errorf("query city_names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []hierarchy.CityName
	for rows.Next() {
		var row hierarchy.CityName
		if err := rows.Scan(&row.CountryCode, &row.StateGeonameID, &row.Admin1Code, &row.Name, &row.GeonameID); err != nil {
			return nil, fmt.Errorf("scan city_names row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate city_names: %w", err)
	}
	return out, nil
}
