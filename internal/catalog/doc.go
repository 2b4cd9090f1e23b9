// Package catalog reads the secondary city catalog: an independently sourced
// CSV keyed by an external knowledge-base reference per row. Its names enrich
// the alias indexes once the references have been resolved to catalog ids.
package catalog
