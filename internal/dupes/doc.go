// Package dupes reports alias keys shared by multiple entities. The alias
// tables are append-only by design, so this is a read-only diagnostic, not a
// cleanup pass.
package dupes
