// Package errors provides structured error types for the translation pipeline.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: the declaration being
// translated, the offending basic block, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseReconstruct, errors.KindIrreducible).
//		Decl("fun @3").
//		Block(7).
//		Detail("goto re-enters a structured region").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DanglingBlock("fun @3", 7, 12)
//	err := errors.Irreducible("fun @3", 7)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two errors match under errors.Is when their Phase and Kind agree, so
// callers can classify failures without string inspection.
package errors
