// Package reconcile validates externally resolved candidate ids against the
// built hierarchy. Ids already present in the state or city tables pass
// through; others are recovered via admin-code lookup; a coordinate sanity
// check against the secondary catalog can reject either path. Failed pairs
// are dropped from the corrected mapping rather than kept with a suspect id.
package reconcile
