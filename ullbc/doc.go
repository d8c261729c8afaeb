// Package ullbc models unstructured bodies: the branch-and-goto form the
// frontend hands over, one step above raw MIR. A body is an ordered list of
// typed locals plus basic blocks addressed by ir.BlockID, each block being
// a statement list ended by exactly one terminator. Block 0 is the entry.
//
// The package is a passive data carrier. Beyond construction, read access
// and structural validation it exposes no operations; the reconstruct
// package consumes it.
//
// Decode reads the JSON shape the frontend serializes crates in.
package ullbc
