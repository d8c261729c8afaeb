package simplify

import (
	"github.com/pierrevial/candy-for-charon/errors"
	"github.com/pierrevial/candy-for-charon/ir"
	"github.com/pierrevial/candy-for-charon/llbc"
)

// Guards collapses the frontend's guard idioms around fallible binary
// operations and verifies that none survive unguarded. The input body is
// not modified; on success the returned body has every fallible
// operation marked Checked.
func Guards(decl string, b *llbc.Body) (*llbc.Body, error) {
	g := &guarder{decl: decl}
	stmt, err := g.stmt(b.Stmt)
	if err != nil {
		return nil, err
	}
	return &llbc.Body{Locals: b.Locals, ArgCount: b.ArgCount, Stmt: stmt}, nil
}

type guarder struct {
	decl string
}

func (g *guarder) stmt(s llbc.Statement) (llbc.Statement, error) {
	switch s := s.(type) {
	case llbc.Sequence:
		return g.sequence(s)
	case llbc.Loop:
		body, err := g.stmt(s.Body)
		if err != nil {
			return nil, err
		}
		return llbc.Loop{Body: body}, nil
	case llbc.If:
		thenS, err := g.stmt(s.Then)
		if err != nil {
			return nil, err
		}
		elseS, err := g.stmt(s.Else)
		if err != nil {
			return nil, err
		}
		return llbc.If{Cond: s.Cond, Then: thenS, Else: elseS}, nil
	case llbc.SwitchInt:
		branches := make([]llbc.IntBranch, len(s.Branches))
		for i, br := range s.Branches {
			st, err := g.stmt(br.Stmt)
			if err != nil {
				return nil, err
			}
			branches[i] = llbc.IntBranch{Values: br.Values, Stmt: st}
		}
		otherwise, err := g.stmt(s.Otherwise)
		if err != nil {
			return nil, err
		}
		return llbc.SwitchInt{Discr: s.Discr, IntTy: s.IntTy, Branches: branches, Otherwise: otherwise}, nil
	case llbc.Match:
		branches := make([]llbc.MatchBranch, len(s.Branches))
		for i, br := range s.Branches {
			st, err := g.stmt(br.Stmt)
			if err != nil {
				return nil, err
			}
			branches[i] = llbc.MatchBranch{Variants: br.Variants, Stmt: st}
		}
		otherwise, err := g.stmt(s.Otherwise)
		if err != nil {
			return nil, err
		}
		return llbc.Match{Place: s.Place, Branches: branches, Otherwise: otherwise}, nil
	default:
		// A leaf. No unguarded, unmarked fallible operation may remain.
		if a, ok := s.(llbc.Assign); ok {
			if bin, ok := a.Source.(ir.Binary); ok && !bin.Checked && bin.Op.CanFail() {
				return nil, errors.UncheckedBinop(g.decl, bin.Op.String())
			}
		}
		return s, nil
	}
}

// sequence slides a three-statement window over the canonical
// right-associated sequence, collapsing guard idioms as it goes.
func (g *guarder) sequence(s llbc.Sequence) (llbc.Statement, error) {
	rest, ok := s.Rest.(llbc.Sequence)
	if !ok {
		first, err := g.stmt(s.First)
		if err != nil {
			return nil, err
		}
		restS, err := g.stmt(s.Rest)
		if err != nil {
			return nil, err
		}
		return llbc.Sequence{First: first, Rest: restS}, nil
	}

	var third, after llbc.Statement
	if r2, ok := rest.Rest.(llbc.Sequence); ok {
		third, after = r2.First, r2.Rest
	} else {
		third = rest.Rest
	}

	collapsed, ok, err := g.collapse(s.First, rest.First, third)
	if err != nil {
		return nil, err
	}
	if ok {
		if after == nil {
			return collapsed, nil
		}
		tail, err := g.stmt(after)
		if err != nil {
			return nil, err
		}
		return llbc.Sequence{First: collapsed, Rest: tail}, nil
	}

	first, err := g.stmt(s.First)
	if err != nil {
		return nil, err
	}
	tail, err := g.stmt(s.Rest)
	if err != nil {
		return nil, err
	}
	return llbc.NewSequence(first, tail), nil
}

// collapse tries both guard idioms on a window of three consecutive
// statements. A window whose shape commits to an idiom (an unmarked
// overflow-checked operation first, or an unmarked division last) but
// does not complete it is a malformed input.
func (g *guarder) collapse(s1, s2, s3 llbc.Statement) (llbc.Statement, bool, error) {
	if a1, bin, ok := unmarkedBinop(s1); ok && bin.Op.RequiresAssertAfter() {
		collapsed, err := g.opThenAssert(a1, bin, s2, s3)
		if err != nil {
			return nil, false, err
		}
		return collapsed, true, nil
	}
	if a3, bin, ok := unmarkedBinop(s3); ok && bin.Op.RequiresAssertBefore() {
		collapsed, err := g.assertThenOp(s1, s2, a3, bin)
		if err != nil {
			return nil, false, err
		}
		return collapsed, true, nil
	}
	return nil, false, nil
}

func unmarkedBinop(s llbc.Statement) (llbc.Assign, ir.Binary, bool) {
	a, ok := s.(llbc.Assign)
	if !ok {
		return llbc.Assign{}, ir.Binary{}, false
	}
	bin, ok := a.Source.(ir.Binary)
	if !ok || bin.Checked {
		return llbc.Assign{}, ir.Binary{}, false
	}
	return a, bin, true
}

// opThenAssert matches
//
//	tmp := x + y;
//	assert(move (tmp.1) == false);
//	dest := move (tmp.0);
//
// and collapses it to a single marked assignment `dest := x + y`.
func (g *guarder) opThenAssert(a1 llbc.Assign, bin ir.Binary, s2, s3 llbc.Statement) (llbc.Statement, error) {
	as, ok := s2.(llbc.Assert)
	if !ok {
		return nil, errors.MalformedGuard(g.decl, "overflow-checked operation not followed by an assert")
	}
	cond, ok := as.Cond.(ir.Move)
	if !ok || as.Expected {
		return nil, errors.MalformedGuard(g.decl, "overflow assert does not test a moved flag against false")
	}
	if !a1.Dest.ExtendsWith(ir.TupleField(1, 2), cond.Place) {
		return nil, errors.MalformedGuard(g.decl, "overflow assert reads a flag unrelated to the operation")
	}
	a3, ok := s3.(llbc.Assign)
	if !ok {
		return nil, errors.MalformedGuard(g.decl, "overflow-checked operation has no result extraction")
	}
	use, ok := a3.Source.(ir.Use)
	if !ok {
		return nil, errors.MalformedGuard(g.decl, "result extraction is not a plain use")
	}
	mv, ok := use.Operand.(ir.Move)
	if !ok || !a1.Dest.ExtendsWith(ir.TupleField(0, 2), mv.Place) {
		return nil, errors.MalformedGuard(g.decl, "result extraction does not move the operation result")
	}
	return llbc.Assign{
		Dest:   a3.Dest,
		Source: ir.Binary{Op: bin.Op, Checked: true, Left: bin.Left, Right: bin.Right},
	}, nil
}

// assertThenOp matches
//
//	tmp := (copy divisor) == 0;
//	assert((move tmp) == false);
//	dest := move dividend / move divisor;
//
// and collapses it to a single marked assignment `dest := dividend / divisor`.
func (g *guarder) assertThenOp(s1, s2 llbc.Statement, a3 llbc.Assign, bin ir.Binary) (llbc.Statement, error) {
	divisor, ok := bin.Right.(ir.Move)
	if !ok {
		return nil, errors.MalformedGuard(g.decl, "division does not move its divisor")
	}
	a1, ok := s1.(llbc.Assign)
	if !ok {
		return nil, errors.MalformedGuard(g.decl, "division not preceded by a divisor test")
	}
	eq, ok := a1.Source.(ir.Binary)
	if !ok || eq.Op != ir.Eq {
		return nil, errors.MalformedGuard(g.decl, "divisor test is not an equality")
	}
	eqLeft, ok := eq.Left.(ir.Copy)
	if !ok || !eqLeft.Place.Equal(divisor.Place) {
		return nil, errors.MalformedGuard(g.decl, "divisor test does not copy the divisor")
	}
	if !isZeroScalar(eq.Right) {
		return nil, errors.MalformedGuard(g.decl, "divisor test does not compare against zero")
	}
	as, ok := s2.(llbc.Assert)
	if !ok {
		return nil, errors.MalformedGuard(g.decl, "divisor test not followed by an assert")
	}
	cond, ok := as.Cond.(ir.Move)
	if !ok || as.Expected || !cond.Place.Equal(a1.Dest) {
		return nil, errors.MalformedGuard(g.decl, "divisor assert does not test the moved test result against false")
	}
	return llbc.Assign{
		Dest:   a3.Dest,
		Source: ir.Binary{Op: bin.Op, Checked: true, Left: bin.Left, Right: bin.Right},
	}, nil
}

func isZeroScalar(op ir.Operand) bool {
	c, ok := op.(ir.Const)
	if !ok {
		return false
	}
	s, ok := c.Value.(ir.ConstScalar)
	if !ok {
		return false
	}
	return s.Value.IsZero()
}
