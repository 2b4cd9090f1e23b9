package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"georesolve/internal/geonames"
	"georesolve/internal/hierarchy"
	"georesolve/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "places.db")
	s, err := store.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()

	states := []geonames.Record{
		{GeonameID: 100, Name: "California", CountryCode: "US", Admin1Code: "CA", Population: 39000000},
		{GeonameID: 200, Name: "Georgia", CountryCode: "US", Admin1Code: "GA", Population: 10000000},
	}
	cities := []geonames.Record{
		{GeonameID: 1000, Name: "Springfield", CountryCode: "US", Admin1Code: "CA", Population: 5000},
		{GeonameID: 2000, Name: "Springfield", CountryCode: "US", Admin1Code: "GA", Population: 90000},
	}
	if err := s.InsertStates(ctx, states); err != nil {
		t.Fatalf("insert states: %v", err)
	}
	if err := s.InsertCities(ctx, cities); err != nil {
		t.Fatalf("insert cities: %v", err)
	}

	stateNames := []hierarchy.StateName{
		{CountryCode: "US", Name: "California", GeonameID: 100},
		{CountryCode: "US", Name: "Georgia", GeonameID: 200},
	}
	cityNames := []hierarchy.CityName{
		{CountryCode: "US", StateGeonameID: 100, Admin1Code: "CA", Name: "Springfield", GeonameID: 1000},
		{CountryCode: "US", StateGeonameID: 200, Admin1Code: "GA", Name: "Springfield", GeonameID: 2000},
	}
	if err := s.AppendStateNames(ctx, stateNames); err != nil {
		t.Fatalf("append state names: %v", err)
	}
	if err := s.AppendCityNames(ctx, cityNames); err != nil {
		t.Fatalf("append city names: %v", err)
	}
}

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "places.db")

	s, err := store.Open(ctx, path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	s, err = store.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = s.Close() }()

	counts, err := s.TableCounts(ctx)
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	if counts.States != 0 || counts.CityNames != 0 {
		t.Fatalf("fresh database should be empty: %#v", counts)
	}
}

func TestInsertAndCounts(t *testing.T) {
	s := openStore(t)
	seed(t, s)

	counts, err := s.TableCounts(context.Background())
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	if counts.States != 2 || counts.Cities != 2 || counts.StateNames != 2 || counts.CityNames != 2 {
		t.Fatalf("unexpected counts: %#v", counts)
	}
}

func TestAppendStateNamesKeepsDuplicates(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	rows := []hierarchy.StateName{
		{CountryCode: "US", Name: "California", GeonameID: 100},
		{CountryCode: "US", Name: "California", GeonameID: 100},
	}
	if err := s.AppendStateNames(ctx, rows); err != nil {
		t.Fatalf("append state names: %v", err)
	}

	counts, err := s.TableCounts(ctx)
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	if counts.StateNames != 2 {
		t.Fatalf("alias index must be append-only, got %d rows", counts.StateNames)
	}
}

func TestMatchStatesCaseInsensitive(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	ctx := context.Background()

	session, err := s.NewMatchSession(ctx)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer func() { _ = session.Close() }()

	candidates, err := session.MatchStates(ctx, "US", "cAlIfOrNiA")
	if err != nil {
		t.Fatalf("match states: %v", err)
	}
	if len(candidates) != 1 || candidates[0].GeonameID != 100 {
		t.Fatalf("unexpected candidates: %#v", candidates)
	}
}

func TestMatchCitiesAdmin1Filter(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	ctx := context.Background()

	session, err := s.NewMatchSession(ctx)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer func() { _ = session.Close() }()

	candidates, err := session.MatchCitiesInAdmin1(ctx, "US", "CA", "Springfield")
	if err != nil {
		t.Fatalf("match cities: %v", err)
	}
	if len(candidates) != 1 || candidates[0].GeonameID != 1000 {
		t.Fatalf("admin1 filter leaked: %#v", candidates)
	}
}

func TestMatchCitiesCountryRanksByPopulation(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	ctx := context.Background()

	session, err := s.NewMatchSession(ctx)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer func() { _ = session.Close() }()

	candidates, err := session.MatchCitiesInCountry(ctx, "US", "Springfield")
	if err != nil {
		t.Fatalf("match cities: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected two candidates: %#v", candidates)
	}
	if candidates[0].GeonameID != 2000 {
		t.Fatalf("highest population must rank first: %#v", candidates)
	}
}

func TestDuplicateNameGroups(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	ctx := context.Background()

	groups, err := s.DuplicateNameGroups(ctx, "city_names")
	if err != nil {
		t.Fatalf("duplicate groups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected one duplicate group: %#v", groups)
	}
	if groups[0].Name != "Springfield" || groups[0].Entities != 2 {
		t.Fatalf("unexpected group: %#v", groups[0])
	}

	groups, err = s.DuplicateNameGroups(ctx, "state_names")
	if err != nil {
		t.Fatalf("duplicate groups: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("state names have no duplicates: %#v", groups)
	}
}

func TestResetClearsRows(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	ctx := context.Background()

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	counts, err := s.TableCounts(ctx)
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	if counts.States != 0 || counts.Cities != 0 || counts.StateNames != 0 || counts.CityNames != 0 {
		t.Fatalf("reset left rows behind: %#v", counts)
	}
}

func TestExportRowReaders(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	ctx := context.Background()

	states, err := s.States(ctx)
	if err != nil {
		t.Fatalf("states: %v", err)
	}
	if len(states) != 2 || states[0].GeonameID != 100 {
		t.Fatalf("unexpected states: %#v", states)
	}

	cityNames, err := s.CityNames(ctx)
	if err != nil {
		t.Fatalf("city names: %v", err)
	}
	if len(cityNames) != 2 {
		t.Fatalf("unexpected city names: %#v", cityNames)
	}
	if cityNames[0].Admin1Code == "" {
		t.Fatalf("admin1 code lost on round trip: %#v", cityNames[0])
	}
}
