package ullbc

import (
	"github.com/pierrevial/candy-for-charon/ir"
)

// Statement is one non-branching instruction inside a basic block.
type Statement interface {
	isStatement()
}

// Assign stores an rvalue into a place.
type Assign struct {
	Dest   ir.Place
	Source ir.Rvalue
}

// FakeRead is a liveness marker; it reads a place without effect.
type FakeRead struct {
	Place ir.Place
}

// SetDiscriminant freezes an enum place to a variant. It comes after the
// variant's fields have been initialized through downcast projections.
type SetDiscriminant struct {
	Place   ir.Place
	Variant ir.VariantID
}

// StorageDead marks the end of a local's storage. Lowered to a structured
// Drop during reconstruction.
type StorageDead struct {
	Var ir.VarID
}

// Deinit deinitializes a place. Lowered to a structured Drop during
// reconstruction.
type Deinit struct {
	Place ir.Place
}

func (Assign) isStatement()          {}
func (FakeRead) isStatement()        {}
func (SetDiscriminant) isStatement() {}
func (StorageDead) isStatement()     {}
func (Deinit) isStatement()          {}

// SwitchCase maps one scalar to its target block. Cases are kept in the
// frontend's emission order; branch grouping during reconstruction relies
// on that order being stable.
type SwitchCase struct {
	Value  ir.ScalarValue
	Target ir.BlockID
}

// SwitchTargets is either a boolean if/else pair or an ordered multi-way
// integer dispatch with a default.
type SwitchTargets struct {
	// If form: both set, Cases nil.
	IfTrue  ir.BlockID
	IfFalse ir.BlockID
	IsIf    bool

	// SwitchInt form.
	IntTy     ir.IntegerTy
	Cases     []SwitchCase
	Otherwise ir.BlockID
}

// Targets returns every target block referenced, in order.
func (st SwitchTargets) Targets() []ir.BlockID {
	if st.IsIf {
		return []ir.BlockID{st.IfTrue, st.IfFalse}
	}
	out := make([]ir.BlockID, 0, len(st.Cases)+1)
	for _, c := range st.Cases {
		out = append(out, c.Target)
	}
	return append(out, st.Otherwise)
}

// Terminator is the single branching instruction ending a basic block.
type Terminator interface {
	isTerminator()
	// Successors lists the blocks control can flow to. Terminal
	// terminators return nil.
	Successors() []ir.BlockID
}

// Goto jumps unconditionally.
type Goto struct {
	Target ir.BlockID
}

// Switch dispatches on an operand. Matches over enumerations arrive here
// as integer switches over the discriminant.
type Switch struct {
	Discr   ir.Operand
	Targets SwitchTargets
}

// Call invokes a top-level function and continues at Target. There is no
// unwind edge at this layer.
type Call struct {
	Fun     ir.FunID
	Regions []ir.ErasedRegion
	TyArgs  []ir.Ty
	Args    []ir.Operand
	Dest    ir.Place
	Target  ir.BlockID
}

// Assert checks that Cond equals Expected and continues at Target.
// Failing the check is a fatal runtime abort, not a branch.
type Assert struct {
	Cond     ir.Operand
	Expected bool
	Target   ir.BlockID
}

// Drop releases a place and continues at Target.
type Drop struct {
	Place  ir.Place
	Target ir.BlockID
}

// Return exits the function.
type Return struct{}

// Panic aborts the program.
type Panic struct{}

// Unreachable marks a path the frontend proved dead.
type Unreachable struct{}

func (Goto) isTerminator()        {}
func (Switch) isTerminator()      {}
func (Call) isTerminator()        {}
func (Assert) isTerminator()      {}
func (Drop) isTerminator()        {}
func (Return) isTerminator()      {}
func (Panic) isTerminator()       {}
func (Unreachable) isTerminator() {}

func (t Goto) Successors() []ir.BlockID   { return []ir.BlockID{t.Target} }
func (t Switch) Successors() []ir.BlockID { return t.Targets.Targets() }
func (t Call) Successors() []ir.BlockID   { return []ir.BlockID{t.Target} }
func (t Assert) Successors() []ir.BlockID { return []ir.BlockID{t.Target} }
func (t Drop) Successors() []ir.BlockID   { return []ir.BlockID{t.Target} }
func (Return) Successors() []ir.BlockID   { return nil }
func (Panic) Successors() []ir.BlockID    { return nil }
func (Unreachable) Successors() []ir.BlockID {
	return nil
}

// BasicBlock is an ordered statement list plus exactly one terminator.
type BasicBlock struct {
	Statements []Statement
	Terminator Terminator
}

// Var is a typed local variable. Index 0 is the return place, indices
// 1..ArgCount are the arguments.
type Var struct {
	ID   ir.VarID
	Name string // optional source name
	Ty   ir.Ty
}

// Body is an unstructured function or global-initializer body. Blocks are
// addressed by ir.BlockID as insertion index; ir.EntryBlock is the entry.
type Body struct {
	Locals   []Var
	ArgCount int
	Blocks   []BasicBlock
}

// Block returns the block with the given id, or nil when out of range.
func (b *Body) Block(id ir.BlockID) *BasicBlock {
	if int(id) >= len(b.Blocks) {
		return nil
	}
	return &b.Blocks[id]
}
