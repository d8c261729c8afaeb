package llbc

import (
	"github.com/pierrevial/candy-for-charon/ir"
)

// Statement is a node of a structured body.
type Statement interface {
	isStatement()
}

// Assign stores an rvalue into a place.
type Assign struct {
	Dest   ir.Place
	Source ir.Rvalue
}

// FakeRead is a liveness marker carried over from the unstructured form.
type FakeRead struct {
	Place ir.Place
}

// SetDiscriminant freezes an enum place to a variant.
type SetDiscriminant struct {
	Place   ir.Place
	Variant ir.VariantID
}

// Drop releases a place. Unstructured StorageDead and Deinit lower to
// this as well.
type Drop struct {
	Place ir.Place
}

// Assert aborts the program unless Cond equals Expected.
type Assert struct {
	Cond     ir.Operand
	Expected bool
}

// Call invokes a top-level function.
type Call struct {
	Fun     ir.FunID
	Regions []ir.ErasedRegion
	TyArgs  []ir.Ty
	Args    []ir.Operand
	Dest    ir.Place
}

// Panic aborts the program. Unreachable terminators lower to this too.
type Panic struct{}

// Return exits the function.
type Return struct{}

// Break exits Depth+1 enclosing loops (0 = just the innermost).
type Break struct {
	Depth int
}

// Continue restarts the loop Depth levels out (0 = innermost).
type Continue struct {
	Depth int
}

// Nop does nothing. Arms that fall through to the statement after their
// switch end in a Nop.
type Nop struct{}

// Sequence runs First then Rest. First is never itself a Sequence; use
// NewSequence to keep the canonical right-associated form.
type Sequence struct {
	First Statement
	Rest  Statement
}

// Loop runs Body forever; only Break statements leave it.
type Loop struct {
	Body Statement
}

// If branches on a boolean operand.
type If struct {
	Cond ir.Operand
	Then Statement
	Else Statement
}

// IntBranch is one arm of a SwitchInt. Several scalar values share one arm
// when the source program grouped them; values are never reordered.
type IntBranch struct {
	Values []ir.ScalarValue
	Stmt   Statement
}

// SwitchInt is an ordered multi-way branch over an integer operand.
type SwitchInt struct {
	Discr     ir.Operand
	IntTy     ir.IntegerTy
	Branches  []IntBranch
	Otherwise Statement
}

// MatchBranch is one arm of a Match.
type MatchBranch struct {
	Variants []ir.VariantID
	Stmt     Statement
}

// Match branches on the variant of an ADT place. It is introduced by the
// discriminant-merge pass, never directly by reconstruction.
type Match struct {
	Place     ir.Place
	Branches  []MatchBranch
	Otherwise Statement
}

func (Assign) isStatement()          {}
func (FakeRead) isStatement()        {}
func (SetDiscriminant) isStatement() {}
func (Drop) isStatement()            {}
func (Assert) isStatement()          {}
func (Call) isStatement()            {}
func (Panic) isStatement()           {}
func (Return) isStatement()          {}
func (Break) isStatement()           {}
func (Continue) isStatement()        {}
func (Nop) isStatement()             {}
func (Sequence) isStatement()        {}
func (Loop) isStatement()            {}
func (If) isStatement()              {}
func (SwitchInt) isStatement()       {}
func (Match) isStatement()           {}

// Body is a structured function or global-initializer body.
type Body struct {
	Locals   []Var
	ArgCount int
	Stmt     Statement
}

// Var is a typed local, same layout as the unstructured side.
type Var struct {
	ID   ir.VarID
	Name string
	Ty   ir.Ty
}
