package alias

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	countyPattern = regexp.MustCompile(`(?i)\bcounty\b`)

	asciiSymbolPattern = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)

	// Administrative unit suffixes for Chinese, Japanese, and Korean place
	// names, pooled into one end-anchored alternation. The scripts attach
	// these directly to the name with no separator.
	cjkSuffixPattern = regexp.MustCompile(`(市|县|区|省|州|府|镇|乡|村|県|町|都|시|군|구|도|읍|면|동)$`)

	// Romanized forms of the same suffixes, matched as a trailing word.
	romanizedSuffixPattern = regexp.MustCompile(`(?i)\b(shi|ken|ku|machi|mura|fu|to|si|gun|gu|do|eup|myeon|dong)$`)
)

// Normalize expands raw names into the full set of search-key variants:
// every input unchanged plus each cleaning-rule output that differs from its
// input and is non-blank. The result is deduplicated and sorted so callers
// get deterministic output.
func Normalize(names []string) []string {
	seen := make(map[string]struct{}, len(names)*2)
	for _, name := range names {
		seen[name] = struct{}{}
		for _, variant := range Variants(name) {
			seen[variant] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for name := range seen {
		if strings.TrimSpace(name) != "" {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// Variants returns the cleaned versions of a single name, excluding the name
// itself. A rule contributes only when it actually changed the string and the
// result is non-blank.
func Variants(name string) []string {
	var variants []string

	noCounty := name
	if countyPattern.MatchString(name) {
		noCounty = StripCounty(name)
		if noCounty != name && strings.TrimSpace(noCounty) != "" {
			variants = append(variants, noCounty)
		}
	}

	if isASCII(name) {
		noSymbols := CleanASCIISymbols(name)
		if noSymbols != name && strings.TrimSpace(noSymbols) != "" {
			variants = append(variants, noSymbols)
		}
		if noCounty != name {
			cleaned := CleanASCIISymbols(noCounty)
			if cleaned != noCounty && strings.TrimSpace(cleaned) != "" {
				variants = append(variants, cleaned)
			}
		}
	}

	noCJK := StripCJKSuffix(name)
	if noCJK != name && strings.TrimSpace(noCJK) != "" {
		variants = append(variants, noCJK)
	}

	noRomanized := StripRomanizedSuffix(name)
	if noRomanized != name && strings.TrimSpace(noRomanized) != "" {
		variants = append(variants, noRomanized)
	}

	return variants
}

// StripCounty removes a whole-word "County" token (any case) and then deletes
// all remaining whitespace, so "Los Angeles County" becomes "LosAngeles".
// Whitespace is deleted outright, not collapsed.
func StripCounty(name string) string {
	cleaned := countyPattern.ReplaceAllString(name, "")
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cleaned)
	return strings.TrimSpace(cleaned)
}

// CleanASCIISymbols strips every character that is not a letter, digit, or
// whitespace from a pure-ASCII name and collapses whitespace runs to a single
// space. Non-ASCII input is returned unchanged.
func CleanASCIISymbols(name string) string {
	if !isASCII(name) {
		return name
	}
	cleaned := asciiSymbolPattern.ReplaceAllString(name, "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// StripCJKSuffix removes one trailing administrative glyph from the pooled
// CJK suffix table, so "北京市" becomes "北京".
func StripCJKSuffix(name string) string {
	return strings.TrimSpace(cjkSuffixPattern.ReplaceAllString(name, ""))
}

// StripRomanizedSuffix removes one trailing romanized unit suffix at a word
// boundary, so "Tokyo Shi" becomes "Tokyo" but "Kyoto" stays intact.
func StripRomanizedSuffix(name string) string {
	return strings.TrimSpace(romanizedSuffixPattern.ReplaceAllString(name, ""))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
