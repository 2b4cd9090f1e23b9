package match

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Input is a loaded CSV batch: the verbatim file contents plus the extracted
// triples, one per record.
type Input struct {
	Header  []string
	Records [][]string
	Rows    []Row
}

// Mapping column keys, matching the [matching] config section.
const (
	ColumnCountry = "country_code"
	ColumnState   = "state_name"
	ColumnCity    = "city_name"
)

// LoadCSV reads the input file and extracts triples through the column
// mapping. A mapped column missing from the header is a configuration error
// and fails before any row is processed.
func LoadCSV(path string, mapping map[string]string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := func(key string) (int, error) {
		column := mapping[key]
		if column == "" {
			return 0, fmt.Errorf("no column mapped for %s", key)
		}
		for i, name := range header {
			if strings.TrimSpace(name) == column {
				return i, nil
			}
		}
		return 0, fmt.Errorf("mapped column %q for %s not in header", column, key)
	}

	countryIdx, err := index(ColumnCountry)
	if err != nil {
		return nil, err
	}
	stateIdx, err := index(ColumnState)
	if err != nil {
		return nil, err
	}
	cityIdx, err := index(ColumnCity)
	if err != nil {
		return nil, err
	}

	input := &Input{Header: header}
	field := func(record []string, idx int) string {
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(input.Records)+1, err)
		}
		input.Records = append(input.Records, record)
		input.Rows = append(input.Rows, Row{
			CountryCode: field(record, countryIdx),
			StateName:   field(record, stateIdx),
			CityName:    field(record, cityIdx),
		})
	}
	return input, nil
}

// WriteResults writes the input records back out with a geonameid column
// appended; unmatched rows get an empty value. Original columns pass through
// untouched.
func WriteResults(path string, input *Input, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() { _ = f.Close() }()

	writer := csv.NewWriter(f)
	if err := writer.Write(append(append([]string{}, input.Header...), "geonameid")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, record := range input.Records {
		id := ""
		if i < len(results) && results[i].CityGeonameID != 0 {
			id = strconv.FormatInt(results[i].CityGeonameID, 10)
		}
		if err := writer.Write(append(append([]string{}, record...), id)); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// WriteFailed exports failed rows with their reason and suggestion. Returns
// the number of rows written.
func WriteFailed(path string, results []Result) (int, error) {
	var failed []Result
	for _, r := range results {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return 0, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create failed-rows file: %w", err)
	}
	defer func() { _ = f.Close() }()

	writer := csv.NewWriter(f)
	header := []string{"country_code", "state_name", "city_name", "state_geonameid", "failure_reason", "suggestion"}
	if err := writer.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, r := range failed {
		stateID := ""
		if r.StateGeonameID != 0 {
			stateID = strconv.FormatInt(r.StateGeonameID, 10)
		}
		record := []string{r.Row.CountryCode, r.Row.StateName, r.Row.CityName, stateID, string(r.FailureReason), r.Suggestion}
		if err := writer.Write(record); err != nil {
			return 0, fmt.Errorf("write failed row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("flush failed-rows file: %w", err)
	}
	return len(failed), nil
}

// WriteReport writes the run report as indented JSON.
func WriteReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
