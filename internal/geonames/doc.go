// Package geonames reads the bulk place catalog in the GeoNames dump format.
//
// The dump is one tab-separated row per place with nineteen fixed columns.
// Parser streams it in chunks so arbitrarily large dumps never need to fit in
// memory, applies the baseline cleanup every consumer relies on (trimmed
// names, uppercased country codes, blanked missing admin codes), and leaves
// level classification to IsStateLevel so callers can partition records into
// the state/city hierarchy.
package geonames
