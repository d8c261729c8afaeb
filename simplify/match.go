package simplify

import (
	"github.com/pierrevial/candy-for-charon/ir"
	"github.com/pierrevial/candy-for-charon/llbc"
)

// VariantResolver reports how many variants an enum declaration has.
// Structs report zero.
type VariantResolver interface {
	VariantCount(id ir.TypeID) (int, bool)
}

// MergeDiscriminantReads folds "x := discriminant(p); switch x { ... }"
// into a Match over p. The pass is best-effort and conservative: it only
// fires when the enum type of p is known, every switch value names one
// of its variants, and the temporary x is used nowhere else in the body.
// Statements that do not fit are left alone.
func MergeDiscriminantReads(b *llbc.Body, variants VariantResolver) *llbc.Body {
	if variants == nil {
		return b
	}
	m := &merger{locals: b.Locals, variants: variants, uses: make(map[ir.VarID]int)}
	countUses(b.Stmt, m.uses)
	return &llbc.Body{Locals: b.Locals, ArgCount: b.ArgCount, Stmt: m.stmt(b.Stmt)}
}

type merger struct {
	locals   []llbc.Var
	variants VariantResolver
	uses     map[ir.VarID]int
}

func (m *merger) stmt(s llbc.Statement) llbc.Statement {
	switch s := s.(type) {
	case llbc.Sequence:
		if merged, rest, ok := m.tryMerge(s); ok {
			if rest == nil {
				return m.stmt(merged)
			}
			return llbc.NewSequence(m.stmt(merged), m.stmt(rest))
		}
		return llbc.NewSequence(m.stmt(s.First), m.stmt(s.Rest))
	case llbc.Loop:
		return llbc.Loop{Body: m.stmt(s.Body)}
	case llbc.If:
		return llbc.If{Cond: s.Cond, Then: m.stmt(s.Then), Else: m.stmt(s.Else)}
	case llbc.SwitchInt:
		branches := make([]llbc.IntBranch, len(s.Branches))
		for i, br := range s.Branches {
			branches[i] = llbc.IntBranch{Values: br.Values, Stmt: m.stmt(br.Stmt)}
		}
		return llbc.SwitchInt{Discr: s.Discr, IntTy: s.IntTy, Branches: branches, Otherwise: m.stmt(s.Otherwise)}
	case llbc.Match:
		branches := make([]llbc.MatchBranch, len(s.Branches))
		for i, br := range s.Branches {
			branches[i] = llbc.MatchBranch{Variants: br.Variants, Stmt: m.stmt(br.Stmt)}
		}
		return llbc.Match{Place: s.Place, Branches: branches, Otherwise: m.stmt(s.Otherwise)}
	default:
		return s
	}
}

// tryMerge recognizes the discriminant-read idiom at the head of a
// sequence and builds the Match replacing it.
func (m *merger) tryMerge(s llbc.Sequence) (llbc.Statement, llbc.Statement, bool) {
	read, ok := s.First.(llbc.Assign)
	if !ok {
		return nil, nil, false
	}
	disc, ok := read.Source.(ir.GetDiscriminant)
	if !ok || len(read.Dest.Projection) != 0 {
		return nil, nil, false
	}
	tmp := read.Dest.Var

	sw, rest, ok := headSwitch(s.Rest)
	if !ok {
		return nil, nil, false
	}
	mv, ok := sw.Discr.(ir.Move)
	if !ok || mv.Place.Var != tmp || len(mv.Place.Projection) != 0 {
		return nil, nil, false
	}
	// The read (1) and the switch operand (1) must be the only uses.
	if m.uses[tmp] != 2 {
		return nil, nil, false
	}

	count, ok := m.enumVariants(disc.Place)
	if !ok {
		return nil, nil, false
	}

	branches := make([]llbc.MatchBranch, len(sw.Branches))
	for i, br := range sw.Branches {
		ids := make([]ir.VariantID, len(br.Values))
		for j, v := range br.Values {
			id, ok := variantOf(v, count)
			if !ok {
				return nil, nil, false
			}
			ids[j] = id
		}
		branches[i] = llbc.MatchBranch{Variants: ids, Stmt: br.Stmt}
	}
	return llbc.Match{Place: disc.Place, Branches: branches, Otherwise: sw.Otherwise}, rest, true
}

// headSwitch splits off a SwitchInt at the head of a statement.
func headSwitch(s llbc.Statement) (llbc.SwitchInt, llbc.Statement, bool) {
	switch s := s.(type) {
	case llbc.SwitchInt:
		return s, nil, true
	case llbc.Sequence:
		if sw, ok := s.First.(llbc.SwitchInt); ok {
			return sw, s.Rest, true
		}
	}
	return llbc.SwitchInt{}, nil, false
}

// enumVariants resolves the variant count of the enum at place p. Only
// dereference projections can be followed without field type
// information, so anything else disables the merge.
func (m *merger) enumVariants(p ir.Place) (int, bool) {
	if int(p.Var) >= len(m.locals) {
		return 0, false
	}
	ty := m.locals[p.Var].Ty
	for _, elem := range p.Projection {
		switch elem.Kind {
		case ir.ProjDeref:
			r, ok := ty.(ir.TyRef)
			if !ok {
				return 0, false
			}
			ty = r.Pointee
		case ir.ProjDerefBox:
			b, ok := ty.(ir.TyBox)
			if !ok {
				return 0, false
			}
			ty = b.Pointee
		default:
			return 0, false
		}
	}
	adt, ok := ty.(ir.TyAdt)
	if !ok {
		return 0, false
	}
	count, ok := m.variants.VariantCount(adt.ID)
	if !ok || count == 0 {
		return 0, false
	}
	return count, true
}

// variantOf maps a discriminant scalar to a variant index.
func variantOf(v ir.ScalarValue, count int) (ir.VariantID, bool) {
	if v.Bits.Sign() < 0 || !v.Bits.IsUint64() {
		return 0, false
	}
	n := v.Bits.Uint64()
	if n >= uint64(count) {
		return 0, false
	}
	return ir.VariantID(n), true
}

// countUses tallies every reference to each local, destinations included.
func countUses(s llbc.Statement, uses map[ir.VarID]int) {
	switch s := s.(type) {
	case llbc.Assign:
		uses[s.Dest.Var]++
		countRvalueUses(s.Source, uses)
	case llbc.FakeRead:
		uses[s.Place.Var]++
	case llbc.SetDiscriminant:
		uses[s.Place.Var]++
	case llbc.Drop:
		uses[s.Place.Var]++
	case llbc.Assert:
		countOperandUses(s.Cond, uses)
	case llbc.Call:
		uses[s.Dest.Var]++
		for _, a := range s.Args {
			countOperandUses(a, uses)
		}
	case llbc.Sequence:
		countUses(s.First, uses)
		countUses(s.Rest, uses)
	case llbc.Loop:
		countUses(s.Body, uses)
	case llbc.If:
		countOperandUses(s.Cond, uses)
		countUses(s.Then, uses)
		countUses(s.Else, uses)
	case llbc.SwitchInt:
		countOperandUses(s.Discr, uses)
		for _, br := range s.Branches {
			countUses(br.Stmt, uses)
		}
		countUses(s.Otherwise, uses)
	case llbc.Match:
		uses[s.Place.Var]++
		for _, br := range s.Branches {
			countUses(br.Stmt, uses)
		}
		countUses(s.Otherwise, uses)
	}
}

func countRvalueUses(rv ir.Rvalue, uses map[ir.VarID]int) {
	switch rv := rv.(type) {
	case ir.Use:
		countOperandUses(rv.Operand, uses)
	case ir.Ref:
		uses[rv.Place.Var]++
	case ir.Unary:
		countOperandUses(rv.Operand, uses)
	case ir.Binary:
		countOperandUses(rv.Left, uses)
		countOperandUses(rv.Right, uses)
	case ir.GetDiscriminant:
		uses[rv.Place.Var]++
	case ir.Aggregate:
		for _, f := range rv.Fields {
			countOperandUses(f, uses)
		}
	}
}

func countOperandUses(op ir.Operand, uses map[ir.VarID]int) {
	switch op := op.(type) {
	case ir.Copy:
		uses[op.Place.Var]++
	case ir.Move:
		uses[op.Place.Var]++
	}
}
