// Package simplify rewrites structured bodies into their final surface
// form.
//
// Two passes run in order. MergeDiscriminantReads folds the pattern
// "read a discriminant into a temporary, then switch on the temporary"
// into a Match over the enum place itself. Guards collapses the
// three-statement guard idioms the frontend emits around fallible
// arithmetic: an overflow-checked operation writing a (result, flag)
// tuple followed by an assert on the flag and a move of the result, and
// a divisor zero-test followed by an assert and the division. Each
// collapsed operation is marked Checked on its rvalue, so running the
// passes again is a no-op.
//
// A fallible operation whose surrounding statements do not form its
// guard is a malformed input and fails the body; so does a fallible
// operation that survives the pass unguarded and unmarked.
package simplify
