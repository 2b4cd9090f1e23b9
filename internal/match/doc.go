// Package match resolves free-text (country, state, city) triples against
// the alias indexes.
//
// State lookup is a case-insensitive exact match with population-weighted
// tie-breaking. City lookup is tiered: admin1-filtered first when a state
// resolved, country-wide fallback otherwise. A state that fails to resolve
// never fails the triple on its own.
//
// Batch matching fans rows out over a fixed worker pool; each worker owns a
// prepared-statement session and a private stats accumulator, merged when the
// batch drains.
package match
