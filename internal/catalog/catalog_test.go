package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"georesolve/internal/catalog"
	"georesolve/internal/logging"
)

const header = "id,name,state_id,state_code,state_name,country_id,country_code,country_name,latitude,longitude,wikiDataId\n"

func writeCatalog(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cities.csv")
	if err := os.WriteFile(path, []byte(header+rows), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestReadParsesRows(t *testing.T) {
	path := writeCatalog(t, `1,Los Angeles,5,CA,California,1,us,United States,34.05,-118.24,Q65
2,Tokyo,13,13,Tokyo,2,JP,Japan,35.68,139.69,Q1490
`)
	candidates, err := catalog.Read(path, logging.NewNop())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 rows, got %#v", candidates)
	}
	first := candidates[0]
	if first.CountryCode != "US" {
		t.Fatalf("country code must be uppercased: %#v", first)
	}
	if !first.HasCoords || first.Latitude != 34.05 {
		t.Fatalf("coordinates not parsed: %#v", first)
	}
	if first.ExternalRef != "Q65" {
		t.Fatalf("external ref lost: %#v", first)
	}
}

func TestReadRejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("a,b,c,d,e,f,g,h,i,j,k\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := catalog.Read(path, logging.NewNop()); err == nil {
		t.Fatal("expected header validation error")
	}
}

func TestReadDropsIncompleteRows(t *testing.T) {
	path := writeCatalog(t, `x,Nowhere,1,AA,State,1,XX,Country,0,0,Q1
3,,1,AA,State,1,XX,Country,0,0,Q2
4,Kept,1,AA,State,1,XX,Country,bad,bad,Q3
`)
	candidates, err := catalog.Read(path, logging.NewNop())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != 4 {
		t.Fatalf("expected only the parseable row, got %#v", candidates)
	}
	if candidates[0].HasCoords {
		t.Fatalf("unparseable coordinates should leave HasCoords false: %#v", candidates[0])
	}
}

func TestReadBlanksInvalidRefs(t *testing.T) {
	path := writeCatalog(t, `5,Springfield,1,AA,State,1,US,United States,40,-90,NotAQid
`)
	candidates, err := catalog.Read(path, logging.NewNop())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("row with a bad ref must survive: %#v", candidates)
	}
	if candidates[0].ExternalRef != "" {
		t.Fatalf("invalid ref should be blanked: %#v", candidates[0])
	}
}

func TestValidExternalRef(t *testing.T) {
	valid := []string{"Q1", "Q65", " Q123456 "}
	for _, ref := range valid {
		if !catalog.ValidExternalRef(ref) {
			t.Fatalf("%q should be valid", ref)
		}
	}
	invalid := []string{"", "Q", "65", "q65", "Q65x", "WD:Q65"}
	for _, ref := range invalid {
		if catalog.ValidExternalRef(ref) {
			t.Fatalf("%q should be invalid", ref)
		}
	}
}

func TestCleanName(t *testing.T) {
	if got := catalog.CleanName(` "São Paulo" `); got != "São Paulo" {
		t.Fatalf("quote stripping failed: %q", got)
	}
	if got := catalog.CleanName("NULL"); got != "" {
		t.Fatalf("NULL marker should clean to empty, got %q", got)
	}
	if got := catalog.CleanName("Lyon\x00"); got != "Lyon" {
		t.Fatalf("control characters should be removed, got %q", got)
	}
}

func TestExternalRefsDedupsAndSorts(t *testing.T) {
	refs := catalog.ExternalRefs([]catalog.Candidate{
		{ExternalRef: "Q9"},
		{ExternalRef: "Q1490"},
		{ExternalRef: "Q9"},
		{ExternalRef: ""},
	})
	if len(refs) != 2 || refs[0] != "Q1490" || refs[1] != "Q9" {
		t.Fatalf("unexpected refs: %#v", refs)
	}
}

func TestExternalAliasesNormalizes(t *testing.T) {
	candidates := []catalog.Candidate{
		{Name: "Los Angeles County", ExternalRef: "Q65"},
		{Name: "Unresolved", ExternalRef: "Q999"},
	}
	aliases := catalog.ExternalAliases(candidates, map[string]int64{"Q65": 5368361})

	got, ok := aliases[5368361]
	if !ok {
		t.Fatalf("resolved ref missing from aliases: %#v", aliases)
	}
	found := false
	for _, name := range got {
		if name == "LosAngeles" {
			found = true
		}
	}
	if !found {
		t.Fatalf("catalog names must run through the normalizer: %#v", got)
	}
	if _, ok := aliases[0]; ok {
		t.Fatal("unresolved refs must not contribute aliases")
	}
}
