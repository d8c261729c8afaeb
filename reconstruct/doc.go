// Package reconstruct rebuilds structured control flow from unstructured
// bodies: nested conditionals and loops with indexed break/continue in
// place of the frontend's branch-and-goto graph.
//
// The engine works off the dominator tree. Natural loops become Loop
// nodes whose back edges turn into Continue and whose exit edges turn
// into Break; a branching block becomes an If or SwitchInt whose arms are
// structured independently, with the branches' unique convergence block
// (the dominator-tree child of the branch with two or more forward
// predecessors) appended after the switch as the continuation.
//
// The output tree executes identically to the input graph: same statement
// sequence under the same branch decisions, same terminal effect.
//
// Irreducible control flow is a hard failure, reported per function with
// the offending block; the engine never duplicates blocks to force a
// tree. Every block of a body is structured at most once.
package reconstruct
