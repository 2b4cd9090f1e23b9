package geonames

import "strings"

// Record is one row of the bulk place catalog. Fields mirror the dump
// columns; the full set is carried through to the hierarchy tables for
// lossless export.
type Record struct {
	GeonameID        int64
	Name             string
	ASCIIName        string
	AlternateNames   string
	Latitude         float64
	Longitude        float64
	FeatureClass     string
	FeatureCode      string
	CountryCode      string
	CC2              string
	Admin1Code       string
	Admin2Code       string
	Admin3Code       string
	Admin4Code       string
	Population       int64
	Elevation        int64
	DEM              int64
	Timezone         string
	ModificationDate string
}

// SplitAlternateNames expands the comma-joined alternate names column into a
// slice, dropping blanks.
func SplitAlternateNames(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

// NameInputs returns the raw alias inputs for a record: the primary name, the
// ASCII name, and every alternate name.
func (r Record) NameInputs() []string {
	inputs := make([]string, 0, 2)
	if r.Name != "" {
		inputs = append(inputs, r.Name)
	}
	if r.ASCIIName != "" {
		inputs = append(inputs, r.ASCIIName)
	}
	return append(inputs, SplitAlternateNames(r.AlternateNames)...)
}

// IsStateLevel reports whether a record belongs to the state (ADM1) level of
// the hierarchy. Records explicitly coded ADM1/ADM1H qualify; so does any
// record whose admin1 code is missing or the "00" sentinel, because the
// upstream catalog ships such rows without a usable parent. That second rule
// is a data-quality workaround inherited from the catalog, not domain logic.
func IsStateLevel(r Record) bool {
	switch r.FeatureCode {
	case "ADM1", "ADM1H":
		return true
	}
	return r.Admin1Code == "" || r.Admin1Code == "00"
}
