package llbc_test

import (
	"testing"

	"github.com/pierrevial/candy-for-charon/ir"
	"github.com/pierrevial/candy-for-charon/llbc"
)

func assign(v ir.VarID) llbc.Statement {
	return llbc.Assign{
		Dest:   ir.PlaceOf(v),
		Source: ir.Use{Operand: ir.Const{Ty: ir.TyUnit{}, Value: ir.ConstUnit{}}},
	}
}

func TestNewSequenceReassociates(t *testing.T) {
	// (s0; s1); s2 must become s0; (s1; s2).
	inner := llbc.Sequence{First: assign(0), Rest: assign(1)}
	s := llbc.NewSequence(inner, assign(2))

	if err := llbc.CheckCanonical(s); err != nil {
		t.Fatalf("reassociated sequence not canonical: %v", err)
	}
	flat := llbc.Flatten(s)
	if len(flat) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(flat))
	}
	for i, st := range flat {
		a, ok := st.(llbc.Assign)
		if !ok || a.Dest.Var != ir.VarID(i) {
			t.Errorf("statement %d out of order: %#v", i, st)
		}
	}
}

func TestChain(t *testing.T) {
	if _, ok := llbc.Chain().(llbc.Nop); !ok {
		t.Error("empty chain is not a Nop")
	}
	if _, ok := llbc.Chain(assign(0)).(llbc.Assign); !ok {
		t.Error("single-statement chain is not the statement itself")
	}

	s := llbc.Chain(assign(0), assign(1), assign(2), llbc.Return{})
	if err := llbc.CheckCanonical(s); err != nil {
		t.Fatalf("chain not canonical: %v", err)
	}
	flat := llbc.Flatten(s)
	if len(flat) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(flat))
	}
	if _, ok := flat[3].(llbc.Return); !ok {
		t.Error("tail statement lost")
	}
}

func TestWalk(t *testing.T) {
	s := llbc.Chain(
		assign(0),
		llbc.Loop{Body: llbc.If{
			Cond: ir.Const{Ty: ir.TyBool{}, Value: ir.ConstBool{Value: true}},
			Then: llbc.Break{Depth: 0},
			Else: assign(1),
		}},
		llbc.Return{},
	)

	var assigns, breaks int
	llbc.Walk(s, func(st llbc.Statement) bool {
		switch st.(type) {
		case llbc.Assign:
			assigns++
		case llbc.Break:
			breaks++
		}
		return true
	})
	if assigns != 2 || breaks != 1 {
		t.Errorf("visited %d assigns and %d breaks, want 2 and 1", assigns, breaks)
	}

	// Returning false prunes the subtree.
	var seen int
	llbc.Walk(s, func(st llbc.Statement) bool {
		seen++
		_, isLoop := st.(llbc.Loop)
		return !isLoop
	})
	// assign, loop, return plus the two sequence nodes; nothing under the loop.
	if seen != 5 {
		t.Errorf("pruned walk visited %d statements, want 5", seen)
	}
}

func TestCheckCanonicalRejectsLeftNesting(t *testing.T) {
	bad := llbc.Sequence{
		First: llbc.Sequence{First: assign(0), Rest: assign(1)},
		Rest:  assign(2),
	}
	if err := llbc.CheckCanonical(bad); err == nil {
		t.Error("left-nested sequence accepted")
	}

	// Nesting hidden under a loop body is caught too.
	hidden := llbc.Loop{Body: bad}
	if err := llbc.CheckCanonical(hidden); err == nil {
		t.Error("left-nested sequence under loop accepted")
	}
}

func TestCheckLoopIndices(t *testing.T) {
	ok := llbc.Loop{Body: llbc.Sequence{
		First: llbc.Break{Depth: 0},
		Rest:  llbc.Continue{Depth: 0},
	}}
	if err := llbc.CheckLoopIndices(ok); err != nil {
		t.Errorf("valid loop indices rejected: %v", err)
	}

	nested := llbc.Loop{Body: llbc.Loop{Body: llbc.Break{Depth: 1}}}
	if err := llbc.CheckLoopIndices(nested); err != nil {
		t.Errorf("two-level break rejected: %v", err)
	}

	bad := llbc.Loop{Body: llbc.Break{Depth: 1}}
	if err := llbc.CheckLoopIndices(bad); err == nil {
		t.Error("out-of-range break accepted")
	}

	naked := llbc.If{
		Cond: ir.Const{Ty: ir.TyBool{}, Value: ir.ConstBool{Value: true}},
		Then: llbc.Continue{Depth: 0},
		Else: llbc.Nop{},
	}
	if err := llbc.CheckLoopIndices(naked); err == nil {
		t.Error("continue outside any loop accepted")
	}
}
