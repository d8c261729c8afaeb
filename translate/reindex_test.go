package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierrevial/candy-for-charon/errors"
	"github.com/pierrevial/candy-for-charon/ir"
	"github.com/pierrevial/candy-for-charon/translate"
	"github.com/pierrevial/candy-for-charon/ullbc"
)

// A crate the way the frontend hands it over: sparse ids, arenas in
// arbitrary order, the ordering listing groups by frontend id.
func sparseCrate() *ullbc.Crate {
	callBody := &ullbc.Body{
		Locals: []ullbc.Var{
			{ID: 0, Ty: ir.TyUnit{}},
			{ID: 1, Ty: ir.TyAdt{ID: 20}},
		},
		Blocks: []ullbc.BasicBlock{
			{
				Statements: []ullbc.Statement{
					ullbc.Assign{
						Dest:   ir.PlaceOf(1, ir.AdtField(20, 0)),
						Source: ir.Use{Operand: ir.Const{Ty: ir.TyInt{Int: ir.I32}, Value: ir.ConstScalar{Value: ir.ScalarFromInt(ir.I32, 1)}}},
					},
				},
				Terminator: ullbc.Call{
					Fun:    5,
					Args:   []ir.Operand{ir.Move{Place: ir.PlaceOf(1)}},
					Dest:   ir.PlaceOf(0),
					Target: 1,
				},
			},
			{Terminator: ullbc.Return{}},
		},
	}
	return &ullbc.Crate{
		Name: "demo",
		Types: []ullbc.TypeDecl{
			{ID: 10, Name: "Opt", Variants: []ullbc.VariantDecl{
				{Name: "None"},
				{Name: "Some", Fields: []ullbc.FieldDecl{{Name: "0", Ty: ir.TyAdt{ID: 20}}}},
			}},
			{ID: 20, Name: "Pair", Fields: []ullbc.FieldDecl{{Name: "x", Ty: ir.TyInt{Int: ir.I32}}}},
		},
		Funs: []ullbc.FunDecl{
			{ID: 5, Name: "demo::recur", Body: callBody},
		},
		Globals: []ullbc.GlobalDecl{
			{ID: 7, Name: "demo::G", Ty: ir.TyAdt{ID: 10}},
		},
		Ordering: []ullbc.DeclGroup{
			{Kind: ullbc.DeclType, IDs: []uint32{20}},
			{Kind: ullbc.DeclType, IDs: []uint32{10}},
			{Kind: ullbc.DeclFun, IDs: []uint32{5}, Recursive: true},
			{Kind: ullbc.DeclGlobal, IDs: []uint32{7}},
		},
	}
}

func TestReindexAssignsDenseIDsInGroupOrder(t *testing.T) {
	out, m, err := translate.Reindex(sparseCrate())
	require.NoError(t, err)

	// Pair was ordered first, so it becomes type 0.
	require.Len(t, out.Types, 2)
	assert.Equal(t, "Pair", out.Types[0].Name)
	assert.Equal(t, ir.TypeID(0), out.Types[0].ID)
	assert.Equal(t, "Opt", out.Types[1].Name)
	assert.Equal(t, ir.TypeID(1), out.Types[1].ID)
	assert.Equal(t, ir.FunID(0), out.Funs[0].ID)
	assert.Equal(t, ir.GlobalID(0), out.Globals[0].ID)

	id, ok := m.LocalType(20)
	require.True(t, ok)
	assert.Equal(t, ir.TypeID(0), id)
	id, ok = m.LocalType(10)
	require.True(t, ok)
	assert.Equal(t, ir.TypeID(1), id)
	assert.Equal(t, uint32(20), m.ExternType(0))
	assert.Equal(t, uint32(10), m.ExternType(1))
	fid, ok := m.LocalFun(5)
	require.True(t, ok)
	assert.Equal(t, ir.FunID(0), fid)

	// The ordering itself now speaks local ids.
	assert.Equal(t, []uint32{0}, out.Ordering[0].IDs)
	assert.Equal(t, []uint32{1}, out.Ordering[1].IDs)
	assert.True(t, out.Ordering[2].Recursive)
}

func TestReindexRewritesReferences(t *testing.T) {
	out, _, err := translate.Reindex(sparseCrate())
	require.NoError(t, err)

	// Opt::Some's field referenced Pair by frontend id 20, now 0.
	some := out.Types[1].Variants[1]
	assert.Equal(t, ir.TyAdt{ID: 0}, some.Fields[0].Ty)
	// The global's type referenced Opt (10 -> 1).
	assert.Equal(t, ir.TyAdt{ID: 1}, out.Globals[0].Ty)

	body := out.Funs[0].Body
	require.NotNil(t, body)
	assert.Equal(t, ir.Ty(ir.TyAdt{ID: 0}), body.Locals[1].Ty)
	a := body.Blocks[0].Statements[0].(ullbc.Assign)
	assert.Equal(t, ir.TypeID(0), a.Dest.Projection[0].Adt)
	call := body.Blocks[0].Terminator.(ullbc.Call)
	assert.Equal(t, ir.FunID(0), call.Fun)
}

func TestReindexLeavesInputUntouched(t *testing.T) {
	in := sparseCrate()
	_, _, err := translate.Reindex(in)
	require.NoError(t, err)

	assert.Equal(t, ir.TypeID(10), in.Types[0].ID)
	call := in.Funs[0].Body.Blocks[0].Terminator.(ullbc.Call)
	assert.Equal(t, ir.FunID(5), call.Fun)
	a := in.Funs[0].Body.Blocks[0].Statements[0].(ullbc.Assign)
	assert.Equal(t, ir.TypeID(20), a.Dest.Projection[0].Adt)
}

func TestReindexRejectsIncompleteOrdering(t *testing.T) {
	in := sparseCrate()
	in.Ordering = in.Ordering[:2] // drops the function and the global

	_, _, err := translate.Reindex(in)
	require.Error(t, err)
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.KindInvalidData, e.Kind)
}

func TestReindexRejectsUnknownReference(t *testing.T) {
	in := sparseCrate()
	in.Globals[0].Ty = ir.TyAdt{ID: 99}

	_, _, err := translate.Reindex(in)
	require.Error(t, err)
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.KindInvalidData, e.Kind)
}
