package reconstruct_test

import (
	stderrors "errors"
	"testing"

	"github.com/pierrevial/candy-for-charon/errors"
	"github.com/pierrevial/candy-for-charon/ir"
	"github.com/pierrevial/candy-for-charon/llbc"
	"github.com/pierrevial/candy-for-charon/reconstruct"
	"github.com/pierrevial/candy-for-charon/ullbc"
)

func mkBody(nLocals int, blocks ...ullbc.BasicBlock) *ullbc.Body {
	locals := make([]ullbc.Var, nLocals)
	for i := range locals {
		locals[i] = ullbc.Var{ID: ir.VarID(i), Ty: ir.TyInt{Int: ir.I32}}
	}
	return &ullbc.Body{Locals: locals, Blocks: blocks}
}

func bb(term ullbc.Terminator, stmts ...ullbc.Statement) ullbc.BasicBlock {
	return ullbc.BasicBlock{Statements: stmts, Terminator: term}
}

func assign(v ir.VarID, from ir.VarID) ullbc.Assign {
	return ullbc.Assign{
		Dest:   ir.PlaceOf(v),
		Source: ir.Use{Operand: ir.Copy{Place: ir.PlaceOf(from)}},
	}
}

func condOn(v ir.VarID) ir.Operand {
	return ir.Copy{Place: ir.PlaceOf(v)}
}

func boolSwitch(v ir.VarID, ifTrue, ifFalse ir.BlockID) ullbc.Switch {
	return ullbc.Switch{
		Discr:   condOn(v),
		Targets: ullbc.SwitchTargets{IsIf: true, IfTrue: ifTrue, IfFalse: ifFalse},
	}
}

func intSwitch(v ir.VarID, otherwise ir.BlockID, cases ...ullbc.SwitchCase) ullbc.Switch {
	return ullbc.Switch{
		Discr: condOn(v),
		Targets: ullbc.SwitchTargets{
			IntTy:     ir.I32,
			Cases:     cases,
			Otherwise: otherwise,
		},
	}
}

// seqParts flattens a statement into its canonical sequence elements.
func seqParts(t *testing.T, s llbc.Statement) []llbc.Statement {
	t.Helper()
	if err := llbc.CheckCanonical(s); err != nil {
		t.Fatalf("non-canonical result: %v", err)
	}
	return llbc.Flatten(s)
}

func TestLinearBody(t *testing.T) {
	b := mkBody(3, bb(ullbc.Return{}, assign(0, 1), assign(1, 2)))

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	parts := seqParts(t, out.Stmt)
	if len(parts) != 3 {
		t.Fatalf("got %d statements, want 3", len(parts))
	}
	if _, ok := parts[0].(llbc.Assign); !ok {
		t.Errorf("parts[0] = %T, want Assign", parts[0])
	}
	if _, ok := parts[2].(llbc.Return); !ok {
		t.Errorf("parts[2] = %T, want Return", parts[2])
	}
}

// A boolean branch whose arms both assign and converge on one successor.
// Each arm ends in a Nop so control falls through to the statement after
// the conditional.
func TestDiamond(t *testing.T) {
	b := mkBody(4,
		bb(boolSwitch(1, 1, 2)),
		bb(ullbc.Goto{Target: 3}, assign(0, 2)),
		bb(ullbc.Goto{Target: 3}, assign(0, 3)),
		bb(ullbc.Return{}),
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	parts := seqParts(t, out.Stmt)
	if len(parts) != 2 {
		t.Fatalf("got %d top-level statements, want 2", len(parts))
	}
	cond, ok := parts[0].(llbc.If)
	if !ok {
		t.Fatalf("parts[0] = %T, want If", parts[0])
	}
	if _, ok := parts[1].(llbc.Return); !ok {
		t.Fatalf("parts[1] = %T, want Return", parts[1])
	}
	for name, arm := range map[string]llbc.Statement{"then": cond.Then, "else": cond.Else} {
		armParts := llbc.Flatten(arm)
		if len(armParts) != 2 {
			t.Fatalf("%s arm has %d statements, want assign then nop", name, len(armParts))
		}
		if _, ok := armParts[0].(llbc.Assign); !ok {
			t.Errorf("%s arm starts with %T, want Assign", name, armParts[0])
		}
		if _, ok := armParts[1].(llbc.Nop); !ok {
			t.Errorf("%s arm ends with %T, want Nop", name, armParts[1])
		}
	}
}

func TestIfWithoutElse(t *testing.T) {
	b := mkBody(3,
		bb(boolSwitch(1, 1, 2)),
		bb(ullbc.Goto{Target: 2}, assign(0, 2)),
		bb(ullbc.Return{}),
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	parts := seqParts(t, out.Stmt)
	cond, ok := parts[0].(llbc.If)
	if !ok {
		t.Fatalf("parts[0] = %T, want If", parts[0])
	}
	if _, ok := cond.Else.(llbc.Nop); !ok {
		t.Errorf("else arm = %T, want Nop", cond.Else)
	}
	if _, ok := parts[len(parts)-1].(llbc.Return); !ok {
		t.Errorf("continuation does not end in Return")
	}
}

func TestNestedIf(t *testing.T) {
	// if a { if b { x } else { y } } else { z }; return
	b := mkBody(4,
		bb(boolSwitch(1, 1, 4)),
		bb(boolSwitch(2, 2, 3)),
		bb(ullbc.Goto{Target: 5}, assign(0, 1)),
		bb(ullbc.Goto{Target: 5}, assign(0, 2)),
		bb(ullbc.Goto{Target: 5}, assign(0, 3)),
		bb(ullbc.Return{}),
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	parts := seqParts(t, out.Stmt)
	outer, ok := parts[0].(llbc.If)
	if !ok {
		t.Fatalf("parts[0] = %T, want If", parts[0])
	}
	if _, ok := outer.Then.(llbc.If); !ok {
		t.Fatalf("then arm = %T, want nested If", outer.Then)
	}
}

// while cond { body }; after
func TestWhileLoop(t *testing.T) {
	b := mkBody(3,
		bb(ullbc.Goto{Target: 1}),
		bb(boolSwitch(1, 2, 3)),
		bb(ullbc.Goto{Target: 1}, assign(0, 2)),
		bb(ullbc.Return{}),
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	parts := seqParts(t, out.Stmt)
	if len(parts) != 2 {
		t.Fatalf("got %d top-level statements, want loop then return", len(parts))
	}
	loop, ok := parts[0].(llbc.Loop)
	if !ok {
		t.Fatalf("parts[0] = %T, want Loop", parts[0])
	}
	cond, ok := loop.Body.(llbc.If)
	if !ok {
		t.Fatalf("loop body = %T, want If", loop.Body)
	}
	thenParts := llbc.Flatten(cond.Then)
	last := thenParts[len(thenParts)-1]
	if c, ok := last.(llbc.Continue); !ok || c.Depth != 0 {
		t.Errorf("then arm ends with %#v, want Continue depth 0", last)
	}
	if br, ok := cond.Else.(llbc.Break); !ok || br.Depth != 0 {
		t.Errorf("else arm = %#v, want Break depth 0", cond.Else)
	}
	if _, ok := parts[1].(llbc.Return); !ok {
		t.Errorf("parts[1] = %T, want Return", parts[1])
	}
}

// while cond { if early { break } }; after — the exit block is the
// target of two distinct in-loop edges, one per break site. Both become
// Break statements, so no duplication is involved.
func TestLoopWithTwoBreakSites(t *testing.T) {
	b := mkBody(3,
		bb(boolSwitch(0, 1, 3)),   // 0: header, guard
		bb(boolSwitch(1, 3, 2)),   // 1: early exit or run the body
		bb(ullbc.Goto{Target: 0}), // 2: back edge
		bb(ullbc.Return{}),        // 3: shared exit
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	parts := seqParts(t, out.Stmt)
	if len(parts) != 2 {
		t.Fatalf("got %d top-level statements, want loop then return", len(parts))
	}
	loop, ok := parts[0].(llbc.Loop)
	if !ok {
		t.Fatalf("parts[0] = %T, want Loop", parts[0])
	}
	guard, ok := loop.Body.(llbc.If)
	if !ok {
		t.Fatalf("loop body = %T, want If", loop.Body)
	}
	if br, ok := guard.Else.(llbc.Break); !ok || br.Depth != 0 {
		t.Errorf("guard else = %#v, want Break depth 0", guard.Else)
	}
	early, ok := guard.Then.(llbc.If)
	if !ok {
		t.Fatalf("guard then = %T, want inner If", guard.Then)
	}
	if br, ok := early.Then.(llbc.Break); !ok || br.Depth != 0 {
		t.Errorf("early-exit arm = %#v, want Break depth 0", early.Then)
	}
	if c, ok := early.Else.(llbc.Continue); !ok || c.Depth != 0 {
		t.Errorf("body arm = %#v, want Continue depth 0", early.Else)
	}
	if _, ok := parts[1].(llbc.Return); !ok {
		t.Errorf("parts[1] = %T, want Return", parts[1])
	}
	if err := llbc.CheckLoopIndices(out.Stmt); err != nil {
		t.Errorf("loop indices: %v", err)
	}
}

// An unreachable block edging into a loop body must not enlarge the loop
// or add exit candidates.
func TestUnreachableEdgeIntoLoop(t *testing.T) {
	b := mkBody(2,
		bb(ullbc.Goto{Target: 1}), // 0: entry
		bb(boolSwitch(0, 2, 3)),   // 1: header
		bb(ullbc.Goto{Target: 1}), // 2: body, back edge
		bb(ullbc.Return{}),        // 3: exit
		bb(boolSwitch(1, 2, 5)),   // 4: unreachable, edges into the body
		bb(ullbc.Return{}),        // 5: unreachable
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	parts := seqParts(t, out.Stmt)
	if len(parts) != 2 {
		t.Fatalf("got %d top-level statements, want loop then return", len(parts))
	}
	loop, ok := parts[0].(llbc.Loop)
	if !ok {
		t.Fatalf("parts[0] = %T, want Loop", parts[0])
	}
	cond, ok := loop.Body.(llbc.If)
	if !ok {
		t.Fatalf("loop body = %T, want If", loop.Body)
	}
	if c, ok := cond.Then.(llbc.Continue); !ok || c.Depth != 0 {
		t.Errorf("then arm = %#v, want Continue depth 0", cond.Then)
	}
	if br, ok := cond.Else.(llbc.Break); !ok || br.Depth != 0 {
		t.Errorf("else arm = %#v, want Break depth 0", cond.Else)
	}
	if _, ok := parts[1].(llbc.Return); !ok {
		t.Errorf("parts[1] = %T, want Return", parts[1])
	}
}

func TestInfiniteLoop(t *testing.T) {
	b := mkBody(2,
		bb(ullbc.Goto{Target: 0}, assign(0, 1)),
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	loop, ok := out.Stmt.(llbc.Loop)
	if !ok {
		t.Fatalf("got %T, want bare Loop", out.Stmt)
	}
	parts := llbc.Flatten(loop.Body)
	last := parts[len(parts)-1]
	if c, ok := last.(llbc.Continue); !ok || c.Depth != 0 {
		t.Errorf("loop body ends with %#v, want Continue depth 0", last)
	}
}

// Two nested loops where the inner conditional leaves both at once. The
// transfer must come out as Break with depth 1.
func TestNestedLoopsMultiLevelBreak(t *testing.T) {
	b := mkBody(3,
		bb(ullbc.Goto{Target: 1}), // 0: entry
		bb(ullbc.Goto{Target: 2}), // 1: outer header
		bb(boolSwitch(1, 3, 5)),   // 2: inner header
		bb(boolSwitch(2, 2, 4)),   // 3: continue inner or fall to 4
		bb(ullbc.Goto{Target: 1}), // 4: back to outer
		bb(ullbc.Return{}),        // 5: leaves both loops
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	parts := seqParts(t, out.Stmt)
	outer, ok := parts[0].(llbc.Loop)
	if !ok {
		t.Fatalf("parts[0] = %T, want outer Loop", parts[0])
	}
	if _, ok := parts[1].(llbc.Return); !ok {
		t.Fatalf("parts[1] = %T, want Return", parts[1])
	}

	var breaks []llbc.Break
	var continues []llbc.Continue
	llbc.Walk(outer, func(s llbc.Statement) bool {
		switch s := s.(type) {
		case llbc.Break:
			breaks = append(breaks, s)
		case llbc.Continue:
			continues = append(continues, s)
		}
		return true
	})

	foundDeep := false
	for _, br := range breaks {
		if br.Depth == 1 {
			foundDeep = true
		}
	}
	if !foundDeep {
		t.Errorf("no Break with depth 1 found, breaks: %#v", breaks)
	}
	if len(continues) == 0 {
		t.Errorf("no Continue found in nested loops")
	}
}

// Cases mapping to the same target collapse into one branch. Branch order
// follows the first occurrence of each target and values keep their
// original order inside a branch.
func TestSwitchIntGrouping(t *testing.T) {
	b := mkBody(3,
		bb(intSwitch(1, 3,
			ullbc.SwitchCase{Value: ir.ScalarFromInt(ir.I32, 0), Target: 1},
			ullbc.SwitchCase{Value: ir.ScalarFromInt(ir.I32, 1), Target: 2},
			ullbc.SwitchCase{Value: ir.ScalarFromInt(ir.I32, 2), Target: 1},
		)),
		bb(ullbc.Goto{Target: 3}, assign(0, 1)),
		bb(ullbc.Goto{Target: 3}, assign(0, 2)),
		bb(ullbc.Return{}),
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	parts := seqParts(t, out.Stmt)
	sw, ok := parts[0].(llbc.SwitchInt)
	if !ok {
		t.Fatalf("parts[0] = %T, want SwitchInt", parts[0])
	}
	if len(sw.Branches) != 2 {
		t.Fatalf("got %d branches, want 2", len(sw.Branches))
	}
	want := [][]int64{{0, 2}, {1}}
	for i, w := range want {
		got := sw.Branches[i].Values
		if len(got) != len(w) {
			t.Fatalf("branch %d has %d values, want %d", i, len(got), len(w))
		}
		for j, v := range w {
			if !got[j].Equal(ir.ScalarFromInt(ir.I32, v)) {
				t.Errorf("branch %d value %d = %v, want %d", i, j, got[j], v)
			}
		}
	}
	if _, ok := sw.Otherwise.(llbc.Nop); !ok {
		t.Errorf("otherwise = %T, want Nop falling through to the join", sw.Otherwise)
	}
}

func TestReturnInsideLoop(t *testing.T) {
	b := mkBody(2,
		bb(boolSwitch(1, 1, 0)), // 0: header, loops on itself via false arm
		bb(ullbc.Return{}),
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	loop, ok := out.Stmt.(llbc.Loop)
	if !ok {
		parts := seqParts(t, out.Stmt)
		l, ok2 := parts[0].(llbc.Loop)
		if !ok2 {
			t.Fatalf("got %T, want Loop", out.Stmt)
		}
		loop = l
	}
	cond, ok := loop.Body.(llbc.If)
	if !ok {
		t.Fatalf("loop body = %T, want If", loop.Body)
	}
	if c, ok := cond.Else.(llbc.Continue); !ok || c.Depth != 0 {
		t.Errorf("else arm = %#v, want Continue depth 0", cond.Else)
	}
}

func TestCallAssertDropTerminators(t *testing.T) {
	b := mkBody(3,
		bb(ullbc.Call{
			Fun:    7,
			Args:   []ir.Operand{condOn(1)},
			Dest:   ir.PlaceOf(2),
			Target: 1,
		}),
		bb(ullbc.Assert{Cond: condOn(2), Expected: true, Target: 2}),
		bb(ullbc.Drop{Place: ir.PlaceOf(2), Target: 3}),
		bb(ullbc.Return{}),
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	parts := seqParts(t, out.Stmt)
	if len(parts) != 4 {
		t.Fatalf("got %d statements, want 4", len(parts))
	}
	if c, ok := parts[0].(llbc.Call); !ok || c.Fun != 7 {
		t.Errorf("parts[0] = %#v, want Call of fun 7", parts[0])
	}
	if a, ok := parts[1].(llbc.Assert); !ok || !a.Expected {
		t.Errorf("parts[1] = %#v, want Assert expecting true", parts[1])
	}
	if _, ok := parts[2].(llbc.Drop); !ok {
		t.Errorf("parts[2] = %T, want Drop", parts[2])
	}
	if _, ok := parts[3].(llbc.Return); !ok {
		t.Errorf("parts[3] = %T, want Return", parts[3])
	}
}

func TestStorageMarkersLowerToDrop(t *testing.T) {
	b := mkBody(3, bb(ullbc.Return{},
		ullbc.StorageDead{Var: 1},
		ullbc.Deinit{Place: ir.PlaceOf(2)},
	))

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	parts := seqParts(t, out.Stmt)
	d0, ok := parts[0].(llbc.Drop)
	if !ok || !d0.Place.Equal(ir.PlaceOf(1)) {
		t.Errorf("parts[0] = %#v, want Drop of local 1", parts[0])
	}
	d1, ok := parts[1].(llbc.Drop)
	if !ok || !d1.Place.Equal(ir.PlaceOf(2)) {
		t.Errorf("parts[1] = %#v, want Drop of place", parts[1])
	}
}

func TestUnreachableLowersToPanic(t *testing.T) {
	b := mkBody(1, bb(ullbc.Unreachable{}))

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.Stmt.(llbc.Panic); !ok {
		t.Fatalf("got %T, want Panic", out.Stmt)
	}
}

// The classic irreducible shape: two entries into a cycle neither of
// which dominates the other.
func TestIrreducibleFails(t *testing.T) {
	b := mkBody(2,
		bb(boolSwitch(1, 1, 2)),
		bb(ullbc.Goto{Target: 2}),
		bb(boolSwitch(1, 1, 3)),
		bb(ullbc.Return{}),
	)

	_, err := reconstruct.Body("f", b)
	if err == nil {
		t.Fatal("expected structuring failure")
	}
	want := &errors.Error{Phase: errors.PhaseReconstruct, Kind: errors.KindIrreducible}
	if !stderrors.Is(err, want) {
		t.Fatalf("got %v, want irreducible_cfg", err)
	}
	var e *errors.Error
	if stderrors.As(err, &e) && e.Decl != "f" {
		t.Errorf("error not attributed to declaration: %v", err)
	}
}

// A loop whose body leaves through two unrelated blocks has no single
// fall-through target.
func TestAmbiguousLoopExitFails(t *testing.T) {
	b := mkBody(3,
		bb(boolSwitch(1, 1, 3)), // 0: header, may leave to 3
		bb(boolSwitch(2, 0, 2)), // 1: back edge or leave to 2
		bb(ullbc.Return{}),
		bb(ullbc.Panic{}),
	)

	_, err := reconstruct.Body("f", b)
	if err == nil {
		t.Fatal("expected structuring failure")
	}
	want := &errors.Error{Phase: errors.PhaseReconstruct, Kind: errors.KindAmbiguousExit}
	if !stderrors.Is(err, want) {
		t.Fatalf("got %v, want ambiguous_loop_exit", err)
	}
}

func TestDanglingTargetFails(t *testing.T) {
	b := mkBody(1, bb(ullbc.Goto{Target: 9}))

	_, err := reconstruct.Body("f", b)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	want := &errors.Error{Phase: errors.PhaseValidate, Kind: errors.KindDanglingBlock}
	if !stderrors.Is(err, want) {
		t.Fatalf("got %v, want dangling_block", err)
	}
}

// Loop index validity of every successful reconstruction.
func TestLoopIndicesAlwaysValid(t *testing.T) {
	b := mkBody(3,
		bb(ullbc.Goto{Target: 1}),
		bb(boolSwitch(1, 2, 3)),
		bb(boolSwitch(2, 1, 4)),
		bb(ullbc.Return{}),
		bb(ullbc.Goto{Target: 1}, assign(0, 2)),
	)

	out, err := reconstruct.Body("f", b)
	if err != nil {
		t.Fatal(err)
	}
	if err := llbc.CheckLoopIndices(out.Stmt); err != nil {
		t.Fatalf("loop indices out of range: %v", err)
	}
}
