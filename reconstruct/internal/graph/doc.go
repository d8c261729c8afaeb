// Package graph provides the control-flow-graph utilities the
// reconstruction engine is built on: reverse postorder, an iterative
// dominator tree (Cooper-Harvey-Kennedy), back-edge detection and natural
// loops.
//
// Nodes are plain uint32 indices; the package knows nothing about the IR
// vocabulary, only about successor lists. Node 0 is the entry.
package graph
