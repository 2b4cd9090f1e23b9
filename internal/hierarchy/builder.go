package hierarchy

import (
	"log/slog"
	"strings"

	"georesolve/internal/geonames"
	"georesolve/internal/logging"
)

// StateName is one row of the state alias index.
type StateName struct {
	CountryCode string
	Name        string
	GeonameID   int64
}

// CityName is one row of the city alias index. StateGeonameID is the resolved
// parent state (0 when no parent exists); Admin1Code is carried alongside
// because tiered matching filters on it directly.
type CityName struct {
	CountryCode    string
	StateGeonameID int64
	Admin1Code     string
	Name           string
	GeonameID      int64
}

// BuildStates filters and deduplicates state-level records. Rows without an
// id or country code are dropped; duplicates by id keep the first occurrence.
func BuildStates(records []geonames.Record, logger *slog.Logger) []geonames.Record {
	return dedupByID(records, logging.NewComponentLogger(logger, "hierarchy"), "state")
}

// BuildCities filters and deduplicates city-level records and normalizes
// missing admin codes to the empty string. Two cities sharing the same
// (country, admin1, admin2) but different ids both survive; the only dedup
// key is the id.
func BuildCities(records []geonames.Record, logger *slog.Logger) []geonames.Record {
	cities := dedupByID(records, logging.NewComponentLogger(logger, "hierarchy"), "city")
	for i := range cities {
		cities[i].Admin1Code = strings.TrimSpace(cities[i].Admin1Code)
		cities[i].Admin2Code = strings.TrimSpace(cities[i].Admin2Code)
	}
	return cities
}

func dedupByID(records []geonames.Record, logger *slog.Logger, kind string) []geonames.Record {
	out := make([]geonames.Record, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	dropped := 0
	for _, record := range records {
		if record.GeonameID == 0 || strings.TrimSpace(record.CountryCode) == "" {
			dropped++
			continue
		}
		if _, dup := seen[record.GeonameID]; dup {
			continue
		}
		seen[record.GeonameID] = struct{}{}
		out = append(out, record)
	}
	if dropped > 0 {
		logger.Warn("dropped records missing id or country",
			logging.String("level", kind),
			logging.Int("count", dropped))
	}
	return out
}

// StateLookup builds the (countryCode, admin1Code) -> state id map used to
// resolve city parents.
func StateLookup(states []geonames.Record) map[string]int64 {
	lookup := make(map[string]int64, len(states))
	for _, state := range states {
		key := stateKey(state.CountryCode, state.Admin1Code)
		if _, exists := lookup[key]; !exists {
			lookup[key] = state.GeonameID
		}
	}
	return lookup
}

func stateKey(countryCode, admin1Code string) string {
	return countryCode + "\x00" + admin1Code
}

// BuildStateNames creates the state alias index. Per state the alias set is
// the union of the internal and external alias maps; when both are empty the
// primary name (and a distinct asciiname) stand in so no state goes
// unindexed. Rows are appended without dedup.
func BuildStateNames(states []geonames.Record, internalAliases, externalAliases map[int64][]string) []StateName {
	rows := make([]StateName, 0, len(states))
	for _, state := range states {
		for _, name := range aliasSet(state, internalAliases, externalAliases) {
			rows = append(rows, StateName{
				CountryCode: state.CountryCode,
				Name:        name,
				GeonameID:   state.GeonameID,
			})
		}
	}
	return rows
}

// BuildCityNames creates the city alias index. Parent states are resolved
// through the (country, admin1) lookup; a city with no parent keeps its
// alias rows with state id 0 rather than being dropped.
func BuildCityNames(cities, states []geonames.Record, internalAliases, externalAliases map[int64][]string, logger *slog.Logger) []CityName {
	log := logging.NewComponentLogger(logger, "hierarchy")
	lookup := StateLookup(states)

	rows := make([]CityName, 0, len(cities))
	orphans := 0
	for _, city := range cities {
		stateID, ok := lookup[stateKey(city.CountryCode, city.Admin1Code)]
		if !ok {
			orphans++
			stateID = 0
			log.Debug("city without parent state",
				logging.Int64("geonameid", city.GeonameID),
				logging.String("country", city.CountryCode),
				logging.String("admin1", city.Admin1Code))
		}
		for _, name := range aliasSet(city, internalAliases, externalAliases) {
			rows = append(rows, CityName{
				CountryCode:    city.CountryCode,
				StateGeonameID: stateID,
				Admin1Code:     city.Admin1Code,
				Name:           name,
				GeonameID:      city.GeonameID,
			})
		}
	}
	if orphans > 0 {
		log.Warn("cities without a matching parent state", logging.Int("count", orphans))
	}
	return rows
}

func aliasSet(record geonames.Record, internalAliases, externalAliases map[int64][]string) []string {
	merged := make([]string, 0, 4)
	merged = append(merged, internalAliases[record.GeonameID]...)
	merged = append(merged, externalAliases[record.GeonameID]...)

	if len(merged) == 0 {
		merged = append(merged, record.Name)
		if record.ASCIIName != "" && record.ASCIIName != record.Name {
			merged = append(merged, record.ASCIIName)
		}
	}

	names := merged[:0]
	for _, name := range merged {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
