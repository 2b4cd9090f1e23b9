package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"georesolve/internal/alias"
	"georesolve/internal/logging"
)

// Candidate is one secondary-catalog row. ExternalRef carries the
// knowledge-base identifier (Q-number); GeonameID is filled in after
// reconciliation.
type Candidate struct {
	ID          int64
	Name        string
	StateCode   string
	StateName   string
	CountryCode string
	CountryName string
	Latitude    float64
	Longitude   float64
	HasCoords   bool
	ExternalRef string
}

var externalRefPattern = regexp.MustCompile(`^Q\d+$`)

// ValidExternalRef reports whether ref has the Q-number shape.
func ValidExternalRef(ref string) bool {
	return externalRefPattern.MatchString(strings.TrimSpace(ref))
}

// columns of the catalog file, in order.
var columns = []string{
	"id", "name", "state_id", "state_code", "state_name",
	"country_id", "country_code", "country_name",
	"latitude", "longitude", "wikiDataId",
}

// Read loads the catalog CSV. Rows missing an id, name, or country code are
// dropped and counted; rows with a malformed external ref are kept with the
// ref blanked so their names still feed the alias index.
func Read(path string, logger *slog.Logger) ([]Candidate, error) {
	log := logging.NewComponentLogger(logger, "catalog")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(columns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	for i, want := range columns {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("catalog column %d: got %q, want %q", i, header[i], want)
		}
	}

	var (
		candidates  []Candidate
		dropped     int
		invalidRefs int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row: %w", err)
		}

		c, ok := parseRow(record)
		if !ok {
			dropped++
			continue
		}
		if c.ExternalRef != "" && !ValidExternalRef(c.ExternalRef) {
			invalidRefs++
			c.ExternalRef = ""
		}
		candidates = append(candidates, c)
	}

	log.Info("catalog loaded",
		logging.Int("rows", len(candidates)),
		logging.Int("dropped", dropped),
		logging.Int("invalid_refs", invalidRefs))
	return candidates, nil
}

func parseRow(record []string) (Candidate, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return Candidate{}, false
	}

	c := Candidate{
		ID:          id,
		Name:        CleanName(record[1]),
		StateCode:   strings.ToUpper(strings.TrimSpace(record[3])),
		StateName:   CleanName(record[4]),
		CountryCode: strings.ToUpper(strings.TrimSpace(record[6])),
		CountryName: CleanName(record[7]),
		ExternalRef: strings.TrimSpace(record[10]),
	}
	if c.Name == "" || c.CountryCode == "" {
		return Candidate{}, false
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[8]), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(record[9]), 64)
	if latErr == nil && lonErr == nil && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
		c.Latitude, c.Longitude, c.HasCoords = lat, lon, true
	}
	return c, true
}

// CleanName normalizes a catalog name: NFC form, quotes and control
// characters removed, whitespace trimmed. "NULL" markers become empty.
func CleanName(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// ExternalRefs returns the deduplicated, sorted valid refs across candidates.
func ExternalRefs(candidates []Candidate) []string {
	seen := make(map[string]struct{})
	for _, c := range candidates {
		if c.ExternalRef != "" {
			seen[c.ExternalRef] = struct{}{}
		}
	}
	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// ExternalAliases builds per-entity alias sets from catalog names, using the
// reconciled (externalRef -> geonameid) map. Names run through the alias
// normalizer so catalog spellings get the same variant expansion as the bulk
// dump's names.
func ExternalAliases(candidates []Candidate, resolved map[string]int64) map[int64][]string {
	raw := make(map[int64][]string)
	for _, c := range candidates {
		id, ok := resolved[c.ExternalRef]
		if !ok || c.ExternalRef == "" {
			continue
		}
		raw[id] = append(raw[id], c.Name)
	}

	aliases := make(map[int64][]string, len(raw))
	for id, names := range raw {
		aliases[id] = alias.Normalize(names)
	}
	return aliases
}

// ByRef indexes candidates by external ref. Multiple rows may share one ref;
// all are kept, the reconciler checks coordinates against each.
func ByRef(candidates []Candidate) map[string][]Candidate {
	byRef := make(map[string][]Candidate)
	for _, c := range candidates {
		if c.ExternalRef == "" {
			continue
		}
		byRef[c.ExternalRef] = append(byRef[c.ExternalRef], c)
	}
	return byRef
}
