// Package config loads, validates, and normalizes georesolve configuration.
//
// Configuration lives in a TOML file (default ~/.config/georesolve/config.toml
// or ./georesolve.toml). Load returns a Config with all path fields expanded
// to absolute paths and defaults applied for anything the file omits.
// Validation failures are configuration errors: they abort the run before any
// data is touched.
package config
