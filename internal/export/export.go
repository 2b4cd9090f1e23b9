package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"georesolve/internal/geonames"
	"georesolve/internal/hierarchy"
	"georesolve/internal/logging"
	"georesolve/internal/store"
)

// Summary describes one export run.
type Summary struct {
	ExportedAt time.Time      `json:"exported_at"`
	Directory  string         `json:"directory"`
	RowCounts  map[string]int `json:"row_counts"`
}

// Tables writes states.csv, cities.csv, state_names.csv, and city_names.csv
// into dir, plus export_summary.json.
func Tables(ctx context.Context, s *store.Store, dir string, logger *slog.Logger) (*Summary, error) {
	log := logging.NewComponentLogger(logger, "export")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	summary := &Summary{
		ExportedAt: time.Now().UTC(),
		Directory:  dir,
		RowCounts:  make(map[string]int),
	}

	states, err := s.States(ctx)
	if err != nil {
		return nil, err
	}
	if err := writePlaces(filepath.Join(dir, "states.csv"), states); err != nil {
		return nil, err
	}
	summary.RowCounts["states"] = len(states)

	cities, err := s.Cities(ctx)
	if err != nil {
		return nil, err
	}
	if err := writePlaces(filepath.Join(dir, "cities.csv"), cities); err != nil {
		return nil, err
	}
	summary.RowCounts["cities"] = len(cities)

	stateNames, err := s.StateNames(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeStateNames(filepath.Join(dir, "state_names.csv"), stateNames); err != nil {
		return nil, err
	}
	summary.RowCounts["state_names"] = len(stateNames)

	cityNames, err := s.CityNames(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeCityNames(filepath.Join(dir, "city_names.csv"), cityNames); err != nil {
		return nil, err
	}
	summary.RowCounts["city_names"] = len(cityNames)

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "export_summary.json"), data, 0o644); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}

	log.Info("tables exported",
		logging.String("dir", dir),
		logging.Int("states", len(states)),
		logging.Int("cities", len(cities)),
		logging.Int("state_names", len(stateNames)),
		logging.Int("city_names", len(cityNames)))
	return summary, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writePlaces(path string, records []geonames.Record) error {
	header := []string{
		"geonameid", "name", "asciiname", "country_code",
		"admin1_code", "admin2_code", "latitude", "longitude",
		"feature_class", "feature_code", "population", "timezone",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.GeonameID, 10), r.Name, r.ASCIIName, r.CountryCode,
			r.Admin1Code, r.Admin2Code,
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			r.FeatureClass, r.FeatureCode,
			strconv.FormatInt(r.Population, 10), r.Timezone,
		})
	}
	return writeCSV(path, header, rows)
}

func writeStateNames(path string, names []hierarchy.StateName) error {
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{n.CountryCode, n.Name, strconv.FormatInt(n.GeonameID, 10)})
	}
	return writeCSV(path, []string{"country_code", "name", "geonameid"}, rows)
}

func writeCityNames(path string, names []hierarchy.CityName) error {
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{
			n.CountryCode,
			strconv.FormatInt(n.StateGeonameID, 10),
			n.Admin1Code,
			n.Name,
			strconv.FormatInt(n.GeonameID, 10),
		})
	}
	return writeCSV(path, []string{"country_code", "state_geonameid", "admin1_code", "name", "geonameid"}, rows)
}
