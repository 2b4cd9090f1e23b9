package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Lookup ranking: population-weighted, id as the stable tiebreak. Two rows
// are fetched so callers can tell an unambiguous hit from a contested one.
const (
	matchStatesSQL = `
        SELECT DISTINCT s.geonameid, s.name, s.population, s.admin1_code
        FROM state_names sn
        JOIN states s ON s.geonameid = sn.geonameid
        WHERE sn.country_code = ? AND sn.name = ? COLLATE NOCASE
        ORDER BY s.population DESC, s.geonameid ASC
        LIMIT 2`

	matchCitiesAdmin1SQL = `
        SELECT DISTINCT c.geonameid, c.name, c.population, c.admin1_code
        FROM city_names cn
        JOIN cities c ON c.geonameid = cn.geonameid
        WHERE cn.country_code = ? AND cn.admin1_code = ? AND cn.name = ? COLLATE NOCASE
        ORDER BY c.population DESC, c.geonameid ASC
        LIMIT 2`

	matchCitiesStateSQL = `
        SELECT DISTINCT c.geonameid, c.name, c.population, c.admin1_code
        FROM city_names cn
        JOIN cities c ON c.geonameid = cn.geonameid
        WHERE cn.country_code = ? AND cn.state_geonameid = ? AND cn.name = ? COLLATE NOCASE
        ORDER BY c.population DESC, c.geonameid ASC
        LIMIT 2`

	matchCitiesCountrySQL = `
        SELECT DISTINCT c.geonameid, c.name, c.population, c.admin1_code
        FROM city_names cn
        JOIN cities c ON c.geonameid = cn.geonameid
        WHERE cn.country_code = ? AND cn.name = ? COLLATE NOCASE
        ORDER BY c.population DESC, c.geonameid ASC
        LIMIT 2`
)

// MatchSession bundles the prepared lookup statements used during matching.
// Each worker in a batch run holds its own session.
type MatchSession struct {
	states        *sql.Stmt
	citiesAdmin1  *sql.Stmt
	citiesState   *sql.Stmt
	citiesCountry *sql.Stmt
}

// NewMatchSession prepares the lookup statements.
func (s *Store) NewMatchSession(ctx context.Context) (*MatchSession, error) {
	session := &MatchSession{}
	var err error
	if session.states, err = s.db.PrepareContext(ctx, matchStatesSQL); err != nil {
		return nil, fmt.Errorf("prepare state lookup: %w", err)
	}
	if session.citiesAdmin1, err = s.db.PrepareContext(ctx, matchCitiesAdmin1SQL); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("prepare admin1 city lookup: %w", err)
	}
	if session.citiesState, err = s.db.PrepareContext(ctx, matchCitiesStateSQL); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("prepare state-id city lookup: %w", err)
	}
	if session.citiesCountry, err = s.db.PrepareContext(ctx, matchCitiesCountrySQL); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("prepare country city lookup: %w", err)
	}
	return session, nil
}

// Close releases the prepared statements.
func (ms *MatchSession) Close() error {
	var firstErr error
	for _, stmt := range []*sql.Stmt{ms.states, ms.citiesAdmin1, ms.citiesState, ms.citiesCountry} {
		if stmt == nil {
			continue
		}
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MatchStates returns up to two state candidates for a (country, name) pair,
// best first.
func (ms *MatchSession) MatchStates(ctx context.Context, countryCode, name string) ([]Candidate, error) {
	return ms.candidates(ctx, ms.states, countryCode, name)
}

// MatchCitiesInAdmin1 returns up to two city candidates restricted to one
// admin1 division.
func (ms *MatchSession) MatchCitiesInAdmin1(ctx context.Context, countryCode, admin1Code, name string) ([]Candidate, error) {
	return ms.candidates(ctx, ms.citiesAdmin1, countryCode, admin1Code, name)
}

// MatchCitiesInState returns up to two city candidates restricted to one
// parent state id. Alternate to the admin1-based tier; the matcher prefers
// MatchCitiesInAdmin1 but both stay available.
func (ms *MatchSession) MatchCitiesInState(ctx context.Context, countryCode string, stateGeonameID int64, name string) ([]Candidate, error) {
	return ms.candidates(ctx, ms.citiesState, countryCode, stateGeonameID, name)
}

// MatchCitiesInCountry returns up to two city candidates from the whole
// country.
func (ms *MatchSession) MatchCitiesInCountry(ctx context.Context, countryCode, name string) ([]Candidate, error) {
	return ms.candidates(ctx, ms.citiesCountry, countryCode, name)
}

func (ms *MatchSession) candidates(ctx context.Context, stmt *sql.Stmt, args ...any) ([]Candidate, error) {
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.GeonameID, &c.Name, &c.Population, &c.Admin1Code); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}
