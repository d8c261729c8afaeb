package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the pipeline the error occurred
type Phase string

const (
	PhaseDecode      Phase = "decode"      // frontend JSON loading
	PhaseValidate    Phase = "validate"    // structural preconditions
	PhaseReconstruct Phase = "reconstruct" // control-flow structuring
	PhaseSimplify    Phase = "simplify"    // guard-pattern collapsing
	PhaseTranslate   Phase = "translate"   // crate orchestration
)

// Kind categorizes the error
type Kind string

const (
	KindDanglingBlock  Kind = "dangling_block"
	KindNoTerminator   Kind = "no_terminator"
	KindIrreducible    Kind = "irreducible_cfg"
	KindAmbiguousJoin  Kind = "ambiguous_join"
	KindAmbiguousExit  Kind = "ambiguous_loop_exit"
	KindMalformedGuard Kind = "malformed_guard"
	KindUncheckedBinop Kind = "unchecked_binop"
	KindBadProjection  Kind = "bad_projection"
	KindBadSequence    Kind = "non_canonical_sequence"
	KindBadLoopIndex   Kind = "loop_index_out_of_range"
	KindInvalidData    Kind = "invalid_data"
	KindOpaqueBody     Kind = "opaque_body"
	KindInternal       Kind = "internal"
)

// Error is the structured error type used throughout the pipeline.
// Decl names the declaration being translated (empty when the error is not
// tied to one); Block points at the offending basic block when there is one.
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Decl     string
	Block    uint32
	HasBlock bool
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Decl != "" {
		b.WriteString(" in ")
		b.WriteString(e.Decl)
	}
	if e.HasBlock {
		fmt.Fprintf(&b, " at block %d", e.Block)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Decl names the declaration the error is tied to
func (b *Builder) Decl(name string) *Builder {
	b.err.Decl = name
	return b
}

// Block points at the offending basic block
func (b *Builder) Block(id uint32) *Builder {
	b.err.Block = id
	b.err.HasBlock = true
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// DanglingBlock creates a dangling block reference error
func DanglingBlock(decl string, from, target uint32) *Error {
	return &Error{
		Phase:    PhaseValidate,
		Kind:     KindDanglingBlock,
		Decl:     decl,
		Block:    from,
		HasBlock: true,
		Detail:   fmt.Sprintf("terminator targets undefined block %d", target),
		Value:    target,
	}
}

// Irreducible creates an irreducible control flow error
func Irreducible(decl string, block uint32) *Error {
	return &Error{
		Phase:    PhaseReconstruct,
		Kind:     KindIrreducible,
		Decl:     decl,
		Block:    block,
		HasBlock: true,
		Detail:   "block is reachable from structurally independent paths",
	}
}

// AmbiguousJoin creates an unresolvable join error
func AmbiguousJoin(decl string, block uint32, candidates []uint32) *Error {
	return &Error{
		Phase:    PhaseReconstruct,
		Kind:     KindAmbiguousJoin,
		Decl:     decl,
		Block:    block,
		HasBlock: true,
		Detail:   fmt.Sprintf("branch join is not unique, candidates %v", candidates),
		Value:    candidates,
	}
}

// AmbiguousExit creates an unresolvable loop exit error
func AmbiguousExit(decl string, header uint32, candidates []uint32) *Error {
	return &Error{
		Phase:    PhaseReconstruct,
		Kind:     KindAmbiguousExit,
		Decl:     decl,
		Block:    header,
		HasBlock: true,
		Detail:   fmt.Sprintf("loop exit is not unique, candidates %v", candidates),
		Value:    candidates,
	}
}

// MalformedGuard creates a guard shape mismatch error
func MalformedGuard(decl string, what string) *Error {
	return &Error{
		Phase:  PhaseSimplify,
		Kind:   KindMalformedGuard,
		Decl:   decl,
		Detail: what,
	}
}

// UncheckedBinop reports a fallible operation that survived simplification
// without being collapsed
func UncheckedBinop(decl string, op string) *Error {
	return &Error{
		Phase:  PhaseSimplify,
		Kind:   KindUncheckedBinop,
		Decl:   decl,
		Detail: fmt.Sprintf("fallible operation %q was never guarded", op),
	}
}

// Internal reports a broken internal invariant
func Internal(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: fmt.Sprintf(detail, args...),
	}
}
