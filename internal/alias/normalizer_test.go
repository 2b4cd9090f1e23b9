package alias_test

import (
	"testing"

	"georesolve/internal/alias"
)

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func TestNormalizeKeepsOriginals(t *testing.T) {
	input := []string{"New York", "NYC", "Большое Яблоко"}
	output := alias.Normalize(input)
	for _, name := range input {
		if !contains(output, name) {
			t.Fatalf("output missing original %q: %#v", name, output)
		}
	}
}

func TestNormalizeCountyVariant(t *testing.T) {
	output := alias.Normalize([]string{"Los Angeles County"})
	if !contains(output, "LosAngeles") {
		t.Fatalf("expected LosAngeles variant, got %#v", output)
	}
	// The symbol rule collapses whitespace instead of deleting it; both
	// behaviors must coexist.
	if !contains(output, "Los Angeles County") {
		t.Fatalf("original dropped: %#v", output)
	}
}

func TestNormalizeASCIISymbolVariant(t *testing.T) {
	output := alias.Normalize([]string{"L.A.  County"})
	if !contains(output, "LA County") {
		t.Fatalf("expected symbol-stripped variant with collapsed space, got %#v", output)
	}
	if !contains(output, "LA") {
		t.Fatalf("expected county+symbol variant, got %#v", output)
	}
}

func TestNormalizeCJKSuffix(t *testing.T) {
	cases := map[string]string{
		"北京市": "北京",
		"東京都": "東京",
		"서울시": "서울",
	}
	for input, want := range cases {
		output := alias.Normalize([]string{input})
		if !contains(output, want) {
			t.Fatalf("%s: expected %s in %#v", input, want, output)
		}
	}
}

func TestNormalizeRomanizedSuffix(t *testing.T) {
	output := alias.Normalize([]string{"Tokyo Shi"})
	if !contains(output, "Tokyo") {
		t.Fatalf("expected Tokyo variant, got %#v", output)
	}

	// Suffix matching is word-boundary anchored: names merely ending in a
	// listed syllable stay intact.
	output = alias.Normalize([]string{"Kyoto"})
	if len(output) != 1 || output[0] != "Kyoto" {
		t.Fatalf("Kyoto should produce no variants, got %#v", output)
	}
}

func TestNormalizeCaseInsensitiveSuffix(t *testing.T) {
	output := alias.Normalize([]string{"Seoul SI"})
	if !contains(output, "Seoul") {
		t.Fatalf("expected Seoul variant, got %#v", output)
	}
}

func TestNormalizeDropsBlankContributions(t *testing.T) {
	// "County" alone cleans to nothing; only the original survives.
	output := alias.Normalize([]string{"County"})
	if len(output) != 1 || output[0] != "County" {
		t.Fatalf("unexpected output: %#v", output)
	}
}

func TestStripCountyIdempotent(t *testing.T) {
	once := alias.StripCounty("Orange County")
	if once != "Orange" {
		t.Fatalf("expected Orange, got %q", once)
	}
	if again := alias.StripCounty(once); again != once {
		t.Fatalf("StripCounty not idempotent: %q -> %q", once, again)
	}
}

func TestCleanASCIISymbolsIdempotent(t *testing.T) {
	once := alias.CleanASCIISymbols("San-Francisco (CA)")
	if once != "SanFrancisco CA" {
		t.Fatalf("unexpected cleaning result %q", once)
	}
	if again := alias.CleanASCIISymbols(once); again != once {
		t.Fatalf("CleanASCIISymbols not idempotent: %q -> %q", once, again)
	}
}

func TestCleanASCIISymbolsLeavesNonASCII(t *testing.T) {
	if got := alias.CleanASCIISymbols("北京-市"); got != "北京-市" {
		t.Fatalf("non-ASCII input should pass through, got %q", got)
	}
}

func TestNormalizeDeterministicOrder(t *testing.T) {
	a := alias.Normalize([]string{"Tokyo Shi", "東京都", "Tokyo"})
	b := alias.Normalize([]string{"東京都", "Tokyo", "Tokyo Shi"})
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %#v vs %#v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order differs at %d: %#v vs %#v", i, a, b)
		}
	}
}
