// Package export writes the four hierarchy tables to CSV files next to the
// database, plus a small JSON summary of what was written.
package export
