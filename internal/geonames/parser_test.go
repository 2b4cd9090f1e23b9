package geonames_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"georesolve/internal/geonames"
	"georesolve/internal/logging"
)

func writeDump(t *testing.T, rows []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "allCountries.txt")
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return path
}

func dumpRow(id, name, ascii, alternates, lat, lon, featureCode, country, admin1, admin2, population string) string {
	return strings.Join([]string{
		id, name, ascii, alternates, lat, lon, "A", featureCode, country, "",
		admin1, admin2, "", "", population, "", "", "America/Los_Angeles", "2024-01-01",
	}, "\t")
}

func TestChunksParsesAndChunks(t *testing.T) {
	path := writeDump(t, []string{
		dumpRow("5332921", "California", "California", "CA,Golden State", "36.17", "-119.74", "ADM1", "us", "CA", "", "39538223"),
		dumpRow("5368381", "Los Angeles County", "Los Angeles County", "LA County", "34.19", "-118.26", "ADM2", "US", "CA", "037", "10014009"),
		dumpRow("1850144", "Tōkyō-to", "Tokyo", "東京都,Tokyo To", "35.68", "139.69", "ADM1", "JP", "40", "", "13929286"),
	})

	parser := geonames.NewParser(path, 2, logging.NewNop())
	var chunks [][]geonames.Record
	if err := parser.Chunks(func(records []geonames.Record) error {
		copied := make([]geonames.Record, len(records))
		copy(copied, records)
		chunks = append(chunks, copied)
		return nil
	}); err != nil {
		t.Fatalf("Chunks failed: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	first := chunks[0][0]
	if first.GeonameID != 5332921 {
		t.Fatalf("unexpected id %d", first.GeonameID)
	}
	if first.CountryCode != "US" {
		t.Fatalf("country code should be uppercased, got %q", first.CountryCode)
	}
	if first.Population != 39538223 {
		t.Fatalf("unexpected population %d", first.Population)
	}
	if first.Latitude == 0 || first.Longitude == 0 {
		t.Fatal("coordinates not parsed")
	}
}

func TestChunksSkipsMalformedRows(t *testing.T) {
	path := writeDump(t, []string{
		"not-a-number\tBroken",
		dumpRow("100", "Somewhere", "Somewhere", "", "1.0", "2.0", "ADM2", "US", "CA", "001", ""),
	})

	parser := geonames.NewParser(path, 10, logging.NewNop())
	var total int
	if err := parser.Chunks(func(records []geonames.Record) error {
		total += len(records)
		return nil
	}); err != nil {
		t.Fatalf("Chunks failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 record, got %d", total)
	}
	if parser.Skipped() != 1 {
		t.Fatalf("expected 1 skipped row, got %d", parser.Skipped())
	}
}

func TestLookupIDs(t *testing.T) {
	path := writeDump(t, []string{
		dumpRow("1", "Alpha", "Alpha", "", "1.0", "1.0", "PPL", "US", "CA", "", ""),
		dumpRow("2", "Beta", "Beta", "", "2.0", "2.0", "ADM2", "US", "CA", "002", ""),
		dumpRow("3", "Gamma", "Gamma", "", "3.0", "3.0", "ADM2", "US", "CA", "003", ""),
	})

	parser := geonames.NewParser(path, 1, logging.NewNop())
	found, err := parser.LookupIDs(map[int64]struct{}{2: {}, 99: {}})
	if err != nil {
		t.Fatalf("LookupIDs failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 found record, got %d", len(found))
	}
	if found[2].Name != "Beta" {
		t.Fatalf("unexpected record: %#v", found[2])
	}
}

func TestSplitAlternateNames(t *testing.T) {
	names := geonames.SplitAlternateNames(" Tokyo , ,東京,  ")
	if len(names) != 2 || names[0] != "Tokyo" || names[1] != "東京" {
		t.Fatalf("unexpected names: %#v", names)
	}
	if geonames.SplitAlternateNames("   ") != nil {
		t.Fatal("blank input should yield nil")
	}
}

func TestIsStateLevel(t *testing.T) {
	cases := []struct {
		name   string
		record geonames.Record
		want   bool
	}{
		{"adm1", geonames.Record{FeatureCode: "ADM1", Admin1Code: "CA"}, true},
		{"adm1_historic", geonames.Record{FeatureCode: "ADM1H", Admin1Code: "07"}, true},
		{"adm2", geonames.Record{FeatureCode: "ADM2", Admin1Code: "CA"}, false},
		{"missing_admin1", geonames.Record{FeatureCode: "ADM2", Admin1Code: ""}, true},
		{"sentinel_admin1", geonames.Record{FeatureCode: "PPL", Admin1Code: "00"}, true},
		{"populated_place", geonames.Record{FeatureCode: "PPL", Admin1Code: "13"}, false},
	}
	for _, tc := range cases {
		if got := geonames.IsStateLevel(tc.record); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
