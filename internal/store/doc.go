// Package store manages the SQLite database holding the resolved place
// hierarchy: the states and cities tables with full source records, and the
// append-only state_names and city_names alias indexes that matching queries
// run against.
//
// The database is rebuilt from scratch on every build run. A schema version
// guard refuses to open databases written by a different release instead of
// attempting migration.
package store
