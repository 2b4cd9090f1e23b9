// Package hierarchy builds the two-level administrative tables from
// classified catalog records.
//
// States (ADM1 level) and cities (everything else) keep the full raw record
// for lossless export and are deduplicated strictly by id. The name index
// tables map (country, alias) pairs onto entity ids and are append-only:
// duplicate alias rows across entities or across alias sources are retained
// on purpose, and dedup exists only as a separate report. Every entity that
// survives building yields at least one index row via the name/asciiname
// fallback.
package hierarchy
