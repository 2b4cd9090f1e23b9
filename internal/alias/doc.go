// Package alias generates canonical search-key variants for place names.
//
// Every raw name is kept verbatim and augmented with cleaned variants:
// "County" removal, ASCII symbol stripping, and trailing administrative
// suffix removal for CJK scripts and their romanizations. Matching later in
// the pipeline is exact-match over these variants, so the quality of
// resolution rests on the variants produced here.
//
// All rules are heuristics inherited from the upstream data: in particular
// the romanized suffix rule can clip genuine names that end in a listed
// syllable at a word boundary. Changing rule scope is a product decision,
// not a refactor.
package alias
