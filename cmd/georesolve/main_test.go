package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"georesolve/internal/geonames"
	"georesolve/internal/testsupport"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q

[sources]
places_file = %q
chunk_size = 100

[matching]
workers = 2

[logging]
format = "json"
level = "warn"
`,
		filepath.Join(base, "output"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "allCountries.txt"))

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestBuildAndMatchCLI(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	testsupport.WritePlacesFile(t, filepath.Join(base, "allCountries.txt"), []geonames.Record{
		{
			GeonameID: 6093943, Name: "Ontario", ASCIIName: "Ontario",
			FeatureClass: "A", FeatureCode: "ADM1",
			CountryCode: "CA", Admin1Code: "08", Population: 12861940,
		},
		{
			GeonameID: 6167865, Name: "Toronto", ASCIIName: "Toronto",
			FeatureClass: "P", FeatureCode: "PPL",
			CountryCode: "CA", Admin1Code: "08", Population: 2600000,
		},
	})

	out, err := runCLI(t, "build", "--config", configPath, "--skip-export")
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	requireContains(t, out, "Database written to")

	inputPath := filepath.Join(base, "input.csv")
	input := "country_code,state_name,city_name\nCA,Ontario,Toronto\n"
	if err := os.WriteFile(inputPath, []byte(input), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	outputPath := filepath.Join(base, "matched.csv")
	reportPath := filepath.Join(base, "report.json")
	out, err = runCLI(t, "match", "--config", configPath, inputPath,
		"--output", outputPath,
		"--failed", filepath.Join(base, "failed.csv"),
		"--report", reportPath)
	if err != nil {
		t.Fatalf("match: %v\n%s", err, out)
	}
	requireContains(t, out, "Results written to")

	matched, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read matched output: %v", err)
	}
	requireContains(t, string(matched), "6167865")

	if _, err := os.Stat(reportPath); err != nil {
		t.Fatalf("expected report at %s: %v", reportPath, err)
	}
	if _, err := os.Stat(filepath.Join(base, "failed.csv")); !os.IsNotExist(err) {
		t.Fatalf("expected no failed file for a clean run, stat err: %v", err)
	}
}

func TestDupesCLIOnCleanDatabase(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	testsupport.WritePlacesFile(t, filepath.Join(base, "allCountries.txt"), []geonames.Record{
		{
			GeonameID: 2510769, Name: "Valencia", ASCIIName: "Valencia",
			FeatureClass: "A", FeatureCode: "ADM1",
			CountryCode: "ES", Admin1Code: "60", Population: 4974000,
		},
	})

	out, err := runCLI(t, "build", "--config", configPath, "--skip-export")
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}

	out, err = runCLI(t, "dupes", "--config", configPath)
	if err != nil {
		t.Fatalf("dupes: %v\n%s", err, out)
	}
	requireContains(t, out, "No shared aliases found.")
}

func TestConfigInitCLI(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error for existing config without --overwrite")
	}
	if out, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v\n%s", err, out)
	}
}
