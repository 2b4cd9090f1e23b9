package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"georesolve/internal/geonames"
)

// WritePlacesFile writes records to path in the tab-separated bulk dump
// layout the parser reads.
func WritePlacesFile(t testing.TB, path string, records []geonames.Record) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir places dir: %v", err)
	}

	var b strings.Builder
	for _, r := range records {
		fields := []string{
			fmt.Sprintf("%d", r.GeonameID),
			r.Name,
			r.ASCIIName,
			r.AlternateNames,
			fmt.Sprintf("%g", r.Latitude),
			fmt.Sprintf("%g", r.Longitude),
			r.FeatureClass,
			r.FeatureCode,
			r.CountryCode,
			r.CC2,
			r.Admin1Code,
			r.Admin2Code,
			r.Admin3Code,
			r.Admin4Code,
			fmt.Sprintf("%d", r.Population),
			fmt.Sprintf("%d", r.Elevation),
			fmt.Sprintf("%d", r.DEM),
			r.Timezone,
			r.ModificationDate,
		}
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write places file: %v", err)
	}
}
