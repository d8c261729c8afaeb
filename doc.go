// Package candyforcharon reconstructs structured control flow from
// basic-block intermediate representations.
//
// The input is an unstructured crate as produced by a MIR-level frontend:
// functions are arrays of basic blocks ending in gotos, switches and
// fallible terminators. The output is the same code with loops,
// conditionals and matches rebuilt as a statement tree, and with the
// frontend's guard idioms (overflow checks, division-by-zero checks,
// discriminant reads) collapsed back into single operations.
//
// # Architecture Overview
//
// The pipeline is organized into packages with distinct responsibilities:
//
//	candy-for-charon/
//	├── ir/          Shared leaves: ids, types, scalars, places, operands, rvalues
//	├── ullbc/       Unstructured (basic-block) bodies, crate model, JSON decoding
//	├── llbc/        Structured bodies, canonical sequences, JSON encoding
//	├── reconstruct/ Control-flow structuring over the dominator tree
//	├── simplify/    Guard collapsing and discriminant-read merging
//	├── translate/   Per-declaration orchestration, id remapping, diagnostics
//	├── errors/      Phase and kind taxonomy for pipeline failures
//	└── cmd/inspect/ Crate browser: plain dumps or an interactive TUI
//
// # Quick Start
//
// Translate a crate:
//
//	crate, err := ullbc.DecodeCrate(file)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := translate.New().Crate(ctx, crate)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for id, body := range out.Funs {
//	    fmt.Println(llbc.FormatBody(crate.FormatEnv(), body))
//	    _ = id
//	}
//
// Failed declarations do not abort the crate: they are reported in
// out.Diagnostics and skipped in the result maps.
package candyforcharon
