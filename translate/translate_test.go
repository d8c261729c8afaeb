package translate_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierrevial/candy-for-charon/errors"
	"github.com/pierrevial/candy-for-charon/ir"
	"github.com/pierrevial/candy-for-charon/llbc"
	"github.com/pierrevial/candy-for-charon/translate"
	"github.com/pierrevial/candy-for-charon/ullbc"
)

func intLocals(n int) []ullbc.Var {
	locals := make([]ullbc.Var, n)
	for i := range locals {
		locals[i] = ullbc.Var{ID: ir.VarID(i), Ty: ir.TyInt{Int: ir.I32}}
	}
	return locals
}

func returnBody() *ullbc.Body {
	return &ullbc.Body{
		Locals: intLocals(1),
		Blocks: []ullbc.BasicBlock{
			{Terminator: ullbc.Return{}},
		},
	}
}

// A body the engine cannot structure: a cycle with two entries.
func irreducibleBody() *ullbc.Body {
	cond := ir.Copy{Place: ir.PlaceOf(0)}
	sw := func(t, f ir.BlockID) ullbc.Terminator {
		return ullbc.Switch{
			Discr:   cond,
			Targets: ullbc.SwitchTargets{IsIf: true, IfTrue: t, IfFalse: f},
		}
	}
	return &ullbc.Body{
		Locals: intLocals(1),
		Blocks: []ullbc.BasicBlock{
			{Terminator: sw(1, 2)},
			{Terminator: ullbc.Goto{Target: 2}},
			{Terminator: sw(1, 3)},
			{Terminator: ullbc.Return{}},
		},
	}
}

// The unstructured form of an overflow-checked addition: the flag assert
// is a terminator, so collapsing it exercises reconstruction and
// simplification together.
func checkedAddBody() *ullbc.Body {
	const (
		vX ir.VarID = iota + 1
		vY
		vTmp
		vDest
	)
	return &ullbc.Body{
		Locals: intLocals(5),
		Blocks: []ullbc.BasicBlock{
			{
				Statements: []ullbc.Statement{
					ullbc.Assign{
						Dest: ir.PlaceOf(vTmp),
						Source: ir.Binary{
							Op:    ir.Add,
							Left:  ir.Copy{Place: ir.PlaceOf(vX)},
							Right: ir.Copy{Place: ir.PlaceOf(vY)},
						},
					},
				},
				Terminator: ullbc.Assert{
					Cond:     ir.Move{Place: ir.PlaceOf(vTmp, ir.TupleField(1, 2))},
					Expected: false,
					Target:   1,
				},
			},
			{
				Statements: []ullbc.Statement{
					ullbc.Assign{
						Dest:   ir.PlaceOf(vDest),
						Source: ir.Use{Operand: ir.Move{Place: ir.PlaceOf(vTmp, ir.TupleField(0, 2))}},
					},
				},
				Terminator: ullbc.Return{},
			},
		},
	}
}

func TestCrateTranslation(t *testing.T) {
	crate := &ullbc.Crate{
		Name: "demo",
		Funs: []ullbc.FunDecl{
			{ID: 0, Name: "demo::easy", Body: returnBody()},
			{ID: 1, Name: "demo::extern", Body: nil},
			{ID: 2, Name: "demo::add", Body: checkedAddBody()},
		},
		Globals: []ullbc.GlobalDecl{
			{ID: 0, Name: "demo::INIT", Ty: ir.TyInt{Int: ir.I32}, Body: returnBody()},
		},
	}

	out, err := translate.New().Crate(context.Background(), crate)
	require.NoError(t, err)

	assert.Empty(t, out.Diagnostics)
	require.Contains(t, out.Funs, ir.FunID(0))
	require.Contains(t, out.Funs, ir.FunID(2))
	assert.NotContains(t, out.Funs, ir.FunID(1), "opaque function must not be translated")
	require.Contains(t, out.Globals, ir.GlobalID(0))

	// The guard of demo::add collapsed into one marked operation.
	parts := llbc.Flatten(out.Funs[2].Stmt)
	require.Len(t, parts, 2)
	bin, ok := parts[0].(llbc.Assign).Source.(ir.Binary)
	require.True(t, ok)
	assert.True(t, bin.Checked)
}

func TestWithoutSimplifyKeepsGuards(t *testing.T) {
	crate := &ullbc.Crate{
		Funs: []ullbc.FunDecl{{ID: 0, Name: "f", Body: checkedAddBody()}},
	}

	out, err := translate.New(translate.WithoutSimplify()).Crate(context.Background(), crate)
	require.NoError(t, err)

	require.Contains(t, out.Funs, ir.FunID(0))
	hasAssert := false
	for _, s := range llbc.Flatten(out.Funs[0].Stmt) {
		if _, ok := s.(llbc.Assert); ok {
			hasAssert = true
		}
	}
	assert.True(t, hasAssert, "guard assert should survive with simplification off")
}

func TestFailureIsolation(t *testing.T) {
	crate := &ullbc.Crate{
		Funs: []ullbc.FunDecl{
			{ID: 0, Name: "demo::bad", Body: irreducibleBody()},
			{ID: 1, Name: "demo::good", Body: returnBody()},
		},
	}

	out, err := translate.New(translate.WithWorkers(2)).Crate(context.Background(), crate)
	require.NoError(t, err)

	assert.NotContains(t, out.Funs, ir.FunID(0))
	assert.Contains(t, out.Funs, ir.FunID(1), "one bad function must not block the rest")
	require.Len(t, out.Diagnostics, 1)
	diag := out.Diagnostics[0]
	assert.Equal(t, "demo::bad", diag.Decl)
	want := &errors.Error{Phase: errors.PhaseReconstruct, Kind: errors.KindIrreducible}
	assert.True(t, stderrors.Is(diag, want), "got %v", diag)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	crate := &ullbc.Crate{
		Funs: []ullbc.FunDecl{{ID: 0, Name: "f", Body: returnBody()}},
	}

	_, err := translate.New().Crate(ctx, crate)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVariantsResolver(t *testing.T) {
	crate := &ullbc.Crate{
		Types: []ullbc.TypeDecl{
			{ID: 0, Name: "Pair", Fields: []ullbc.FieldDecl{{Name: "a"}, {Name: "b"}}},
			{ID: 1, Name: "Opt", Variants: []ullbc.VariantDecl{{Name: "None"}, {Name: "Some"}}},
		},
	}

	v := translate.Variants(crate)

	_, ok := v.VariantCount(0)
	assert.False(t, ok, "structs have no variants")
	n, ok := v.VariantCount(1)
	require.True(t, ok)
	assert.Equal(t, 2, n)
	_, ok = v.VariantCount(9)
	assert.False(t, ok)
}
