// Package ir defines the core vocabulary shared by the unstructured and
// structured representations: identifiers, places, operands, rvalues,
// operators, scalar constants and the minimal type annotations carried by
// the frontend.
//
// Everything here is a passive value: nodes are built once by the stage
// that produces them and never mutated afterwards. Later pipeline stages
// build new trees instead of rewriting in place, which keeps intermediate
// stages diffable.
//
// Identifiers are dense integer indices assigned by the frontend (or by
// the translator's remapping stage). There are no process-wide counters;
// fresh ids come from explicit Generator values.
package ir
