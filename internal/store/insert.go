package store

import (
	"context"
	"database/sql"
	"fmt"

	"georesolve/internal/geonames"
	"georesolve/internal/hierarchy"
)

const placeColumns = `geonameid, name, asciiname, alternatenames, latitude, longitude,
    feature_class, feature_code, country_code, cc2,
    admin1_code, admin2_code, admin3_code, admin4_code,
    population, elevation, dem, timezone, modification_date`

const placePlaceholders = "?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?"

// InsertStates writes state records in a single transaction. INSERT OR IGNORE
// preserves first-wins semantics if an id slips through upstream dedup.
func (s *Store) InsertStates(ctx context.Context, records []geonames.Record) error {
	return s.insertPlaces(ctx, "states", records)
}

// InsertCities writes city records in a single transaction.
func (s *Store) InsertCities(ctx context.Context, records []geonames.Record) error {
	return s.insertPlaces(ctx, "cities", records)
}

func (s *Store) insertPlaces(ctx context.Context, table string, records []geonames.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s tx: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)", table, placeColumns, placePlaceholders))
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.GeonameID, r.Name, r.ASCIIName, r.AlternateNames, r.Latitude, r.Longitude,
			r.FeatureClass, r.FeatureCode, r.CountryCode, r.CC2,
			r.Admin1Code, r.Admin2Code, r.Admin3Code, r.Admin4Code,
			r.Population, nullableInt64(r.Elevation), r.DEM, r.Timezone, r.ModificationDate)
		if err != nil {
			return fmt.Errorf("insert %s %d: %w", table, r.GeonameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

// AppendStateNames writes alias rows without dedup.
func (s *Store) AppendStateNames(ctx context.Context, rows []hierarchy.StateName) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state_names tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO state_names (country_code, name, geonameid) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare state_names insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.CountryCode, row.Name, row.GeonameID); err != nil {
			return fmt.Errorf("insert state name %q: %w", row.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state_names: %w", err)
	}
	return nil
}

// AppendCityNames writes alias rows without dedup.
func (s *Store) AppendCityNames(ctx context.Context, rows []hierarchy.CityName) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin city_names tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO city_names (country_code, state_geonameid, admin1_code, name, geonameid) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare city_names insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.CountryCode, row.StateGeonameID, row.Admin1Code, row.Name, row.GeonameID); err != nil {
			return fmt.Errorf("insert city name %q: %w", row.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit city_names: %w", err)
	}
	return nil
}

func nullableInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
