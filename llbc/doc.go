// Package llbc models structured bodies: statement trees with nested
// conditionals and loops in place of the branch-and-goto form, plus
// indexed Break/Continue statements referencing enclosing loops.
//
// The MIR split between statements and terminators disappears here;
// everything is a Statement. Sequences are right-associated: the first
// component of a Sequence is never itself a Sequence. Build sequences
// with NewSequence or Chain to keep that invariant.
//
// Break and Continue carry the index of the targeted loop counting
// outward from 0 (0 = innermost). CheckLoopIndices verifies the indices
// of a finished tree are in bounds.
package llbc
