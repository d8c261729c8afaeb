// Package translate drives the whole pipeline over a crate: every
// transparent function and global initializer is validated, structured
// by reconstruct and cleaned up by simplify, independently of the
// others.
//
// A declaration that cannot be structured does not fail the crate. Its
// failure is recorded as a diagnostic keyed by the declaration and the
// remaining declarations still translate. Opaque declarations pass
// through untouched.
//
// Reindex handles the id handoff from the frontend: external
// declaration ids are sparse, and the translator assigns dense local
// ids in declaration-group order, keeping the mapping in both
// directions.
package translate
