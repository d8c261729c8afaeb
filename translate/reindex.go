package translate

import (
	"github.com/pierrevial/candy-for-charon/errors"
	"github.com/pierrevial/candy-for-charon/ir"
	"github.com/pierrevial/candy-for-charon/ullbc"
)

// IDMap records the correspondence between the frontend's own
// declaration ids and the dense local ids assigned during Reindex, in
// both directions.
type IDMap struct {
	typeTo   map[uint32]ir.TypeID
	funTo    map[uint32]ir.FunID
	globalTo map[uint32]ir.GlobalID

	typeFrom   []uint32
	funFrom    []uint32
	globalFrom []uint32
}

// LocalType maps a frontend type id to its local id.
func (m *IDMap) LocalType(extern uint32) (ir.TypeID, bool) {
	id, ok := m.typeTo[extern]
	return id, ok
}

// LocalFun maps a frontend function id to its local id.
func (m *IDMap) LocalFun(extern uint32) (ir.FunID, bool) {
	id, ok := m.funTo[extern]
	return id, ok
}

// LocalGlobal maps a frontend global id to its local id.
func (m *IDMap) LocalGlobal(extern uint32) (ir.GlobalID, bool) {
	id, ok := m.globalTo[extern]
	return id, ok
}

// ExternType maps a local type id back to the frontend's id.
func (m *IDMap) ExternType(id ir.TypeID) uint32 { return m.typeFrom[id] }

// ExternFun maps a local function id back to the frontend's id.
func (m *IDMap) ExternFun(id ir.FunID) uint32 { return m.funFrom[id] }

// ExternGlobal maps a local global id back to the frontend's id.
func (m *IDMap) ExternGlobal(id ir.GlobalID) uint32 { return m.globalFrom[id] }

// Reindex renumbers a crate whose declarations still carry the
// frontend's sparse ids. Local ids are assigned densely in
// declaration-group order, the arenas are reordered to match, and every
// reference inside types and bodies is rewritten. The input crate is
// left untouched.
//
// Every declaration must be covered by the ordering exactly once, and
// every reference must resolve; anything else is a malformed handoff.
func Reindex(c *ullbc.Crate) (*ullbc.Crate, *IDMap, error) {
	m := &IDMap{
		typeTo:   make(map[uint32]ir.TypeID),
		funTo:    make(map[uint32]ir.FunID),
		globalTo: make(map[uint32]ir.GlobalID),
	}
	typePos := make(map[uint32]int, len(c.Types))
	for i := range c.Types {
		typePos[uint32(c.Types[i].ID)] = i
	}
	funPos := make(map[uint32]int, len(c.Funs))
	for i := range c.Funs {
		funPos[uint32(c.Funs[i].ID)] = i
	}
	globalPos := make(map[uint32]int, len(c.Globals))
	for i := range c.Globals {
		globalPos[uint32(c.Globals[i].ID)] = i
	}

	out := &ullbc.Crate{
		Name:     c.Name,
		Ordering: make([]ullbc.DeclGroup, 0, len(c.Ordering)),
	}
	var typeGen ir.Generator[ir.TypeID]
	var funGen ir.Generator[ir.FunID]
	var globalGen ir.Generator[ir.GlobalID]

	for _, group := range c.Ordering {
		local := ullbc.DeclGroup{Kind: group.Kind, Recursive: group.Recursive}
		for _, extern := range group.IDs {
			switch group.Kind {
			case ullbc.DeclType:
				pos, ok := typePos[extern]
				if !ok {
					return nil, nil, badHandoff("ordering names unknown type %d", extern)
				}
				if _, dup := m.typeTo[extern]; dup {
					return nil, nil, badHandoff("type %d ordered twice", extern)
				}
				id := typeGen.Fresh()
				m.typeTo[extern] = id
				m.typeFrom = append(m.typeFrom, extern)
				decl := c.Types[pos]
				decl.ID = id
				out.Types = append(out.Types, decl)
				local.IDs = append(local.IDs, uint32(id))
			case ullbc.DeclFun:
				pos, ok := funPos[extern]
				if !ok {
					return nil, nil, badHandoff("ordering names unknown function %d", extern)
				}
				if _, dup := m.funTo[extern]; dup {
					return nil, nil, badHandoff("function %d ordered twice", extern)
				}
				id := funGen.Fresh()
				m.funTo[extern] = id
				m.funFrom = append(m.funFrom, extern)
				decl := c.Funs[pos]
				decl.ID = id
				out.Funs = append(out.Funs, decl)
				local.IDs = append(local.IDs, uint32(id))
			case ullbc.DeclGlobal:
				pos, ok := globalPos[extern]
				if !ok {
					return nil, nil, badHandoff("ordering names unknown global %d", extern)
				}
				if _, dup := m.globalTo[extern]; dup {
					return nil, nil, badHandoff("global %d ordered twice", extern)
				}
				id := globalGen.Fresh()
				m.globalTo[extern] = id
				m.globalFrom = append(m.globalFrom, extern)
				decl := c.Globals[pos]
				decl.ID = id
				out.Globals = append(out.Globals, decl)
				local.IDs = append(local.IDs, uint32(id))
			}
		}
		out.Ordering = append(out.Ordering, local)
	}

	if len(out.Types) != len(c.Types) || len(out.Funs) != len(c.Funs) || len(out.Globals) != len(c.Globals) {
		return nil, nil, badHandoff("ordering does not cover every declaration")
	}

	rw := &rewriter{m: m}
	for i := range out.Types {
		if err := rw.typeDecl(&out.Types[i]); err != nil {
			return nil, nil, err
		}
	}
	for i := range out.Funs {
		out.Funs[i].Body = cloneBody(out.Funs[i].Body)
		if err := rw.body(out.Funs[i].Body); err != nil {
			return nil, nil, err
		}
	}
	for i := range out.Globals {
		ty, err := rw.ty(out.Globals[i].Ty)
		if err != nil {
			return nil, nil, err
		}
		out.Globals[i].Ty = ty
		out.Globals[i].Body = cloneBody(out.Globals[i].Body)
		if err := rw.body(out.Globals[i].Body); err != nil {
			return nil, nil, err
		}
	}
	return out, m, nil
}

func badHandoff(detail string, args ...any) *errors.Error {
	return errors.New(errors.PhaseTranslate, errors.KindInvalidData).
		Detail(detail, args...).
		Build()
}

func cloneBody(b *ullbc.Body) *ullbc.Body {
	if b == nil {
		return nil
	}
	out := &ullbc.Body{
		Locals:   append([]ullbc.Var(nil), b.Locals...),
		ArgCount: b.ArgCount,
		Blocks:   make([]ullbc.BasicBlock, len(b.Blocks)),
	}
	for i, blk := range b.Blocks {
		out.Blocks[i] = ullbc.BasicBlock{
			Statements: append([]ullbc.Statement(nil), blk.Statements...),
			Terminator: blk.Terminator,
		}
	}
	return out
}

// rewriter maps every declaration reference in types, places, operands
// and terminators onto local ids.
type rewriter struct {
	m *IDMap
}

func (rw *rewriter) typeDecl(d *ullbc.TypeDecl) error {
	var err error
	d.Fields, err = rw.fields(d.Fields)
	if err != nil {
		return err
	}
	if d.Variants == nil {
		return nil
	}
	variants := make([]ullbc.VariantDecl, len(d.Variants))
	for i, v := range d.Variants {
		fields, err := rw.fields(v.Fields)
		if err != nil {
			return err
		}
		variants[i] = ullbc.VariantDecl{Name: v.Name, Fields: fields}
	}
	d.Variants = variants
	return nil
}

func (rw *rewriter) fields(fields []ullbc.FieldDecl) ([]ullbc.FieldDecl, error) {
	if fields == nil {
		return nil, nil
	}
	out := make([]ullbc.FieldDecl, len(fields))
	for i, f := range fields {
		ty, err := rw.ty(f.Ty)
		if err != nil {
			return nil, err
		}
		out[i] = ullbc.FieldDecl{Name: f.Name, Ty: ty}
	}
	return out, nil
}

func (rw *rewriter) typeID(extern ir.TypeID) (ir.TypeID, error) {
	id, ok := rw.m.LocalType(uint32(extern))
	if !ok {
		return 0, badHandoff("reference to unknown type %d", extern)
	}
	return id, nil
}

func (rw *rewriter) ty(t ir.Ty) (ir.Ty, error) {
	switch t := t.(type) {
	case ir.TyAdt:
		id, err := rw.typeID(t.ID)
		if err != nil {
			return nil, err
		}
		args := make([]ir.Ty, len(t.Args))
		for i, a := range t.Args {
			arg, err := rw.ty(a)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		if len(args) == 0 {
			args = nil
		}
		return ir.TyAdt{ID: id, Args: args}, nil
	case ir.TyTuple:
		elems := make([]ir.Ty, len(t.Elems))
		for i, e := range t.Elems {
			elem, err := rw.ty(e)
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return ir.TyTuple{Elems: elems}, nil
	case ir.TyRef:
		pointee, err := rw.ty(t.Pointee)
		if err != nil {
			return nil, err
		}
		return ir.TyRef{Pointee: pointee, Mutable: t.Mutable}, nil
	case ir.TyBox:
		pointee, err := rw.ty(t.Pointee)
		if err != nil {
			return nil, err
		}
		return ir.TyBox{Pointee: pointee}, nil
	default:
		return t, nil
	}
}

func (rw *rewriter) place(p ir.Place) (ir.Place, error) {
	if len(p.Projection) == 0 {
		return p, nil
	}
	proj := make([]ir.ProjectionElem, len(p.Projection))
	for i, elem := range p.Projection {
		if elem.Kind == ir.ProjField && elem.FieldKind == ir.FieldAdt {
			id, err := rw.typeID(elem.Adt)
			if err != nil {
				return ir.Place{}, err
			}
			elem.Adt = id
		}
		proj[i] = elem
	}
	return ir.Place{Var: p.Var, Projection: proj}, nil
}

func (rw *rewriter) operand(op ir.Operand) (ir.Operand, error) {
	switch op := op.(type) {
	case ir.Copy:
		p, err := rw.place(op.Place)
		if err != nil {
			return nil, err
		}
		return ir.Copy{Place: p}, nil
	case ir.Move:
		p, err := rw.place(op.Place)
		if err != nil {
			return nil, err
		}
		return ir.Move{Place: p}, nil
	case ir.Const:
		ty, err := rw.ty(op.Ty)
		if err != nil {
			return nil, err
		}
		value := op.Value
		if adt, ok := value.(ir.ConstAdt); ok {
			id, err := rw.typeID(adt.ID)
			if err != nil {
				return nil, err
			}
			value = ir.ConstAdt{ID: id}
		}
		return ir.Const{Ty: ty, Value: value}, nil
	default:
		return op, nil
	}
}

func (rw *rewriter) operands(ops []ir.Operand) ([]ir.Operand, error) {
	if ops == nil {
		return nil, nil
	}
	out := make([]ir.Operand, len(ops))
	for i, op := range ops {
		mapped, err := rw.operand(op)
		if err != nil {
			return nil, err
		}
		out[i] = mapped
	}
	return out, nil
}

func (rw *rewriter) rvalue(rv ir.Rvalue) (ir.Rvalue, error) {
	switch rv := rv.(type) {
	case ir.Use:
		op, err := rw.operand(rv.Operand)
		if err != nil {
			return nil, err
		}
		return ir.Use{Operand: op}, nil
	case ir.Ref:
		p, err := rw.place(rv.Place)
		if err != nil {
			return nil, err
		}
		return ir.Ref{Place: p, Kind: rv.Kind}, nil
	case ir.Unary:
		op, err := rw.operand(rv.Operand)
		if err != nil {
			return nil, err
		}
		return ir.Unary{Op: rv.Op, Operand: op}, nil
	case ir.Binary:
		left, err := rw.operand(rv.Left)
		if err != nil {
			return nil, err
		}
		right, err := rw.operand(rv.Right)
		if err != nil {
			return nil, err
		}
		return ir.Binary{Op: rv.Op, Checked: rv.Checked, Left: left, Right: right}, nil
	case ir.GetDiscriminant:
		p, err := rw.place(rv.Place)
		if err != nil {
			return nil, err
		}
		return ir.GetDiscriminant{Place: p}, nil
	case ir.Aggregate:
		kind := rv.Kind
		if !kind.Tuple {
			id, err := rw.typeID(kind.Adt)
			if err != nil {
				return nil, err
			}
			kind.Adt = id
		}
		fields, err := rw.operands(rv.Fields)
		if err != nil {
			return nil, err
		}
		return ir.Aggregate{Kind: kind, Fields: fields}, nil
	default:
		return rv, nil
	}
}

func (rw *rewriter) statement(st ullbc.Statement) (ullbc.Statement, error) {
	switch st := st.(type) {
	case ullbc.Assign:
		dest, err := rw.place(st.Dest)
		if err != nil {
			return nil, err
		}
		src, err := rw.rvalue(st.Source)
		if err != nil {
			return nil, err
		}
		return ullbc.Assign{Dest: dest, Source: src}, nil
	case ullbc.FakeRead:
		p, err := rw.place(st.Place)
		if err != nil {
			return nil, err
		}
		return ullbc.FakeRead{Place: p}, nil
	case ullbc.SetDiscriminant:
		p, err := rw.place(st.Place)
		if err != nil {
			return nil, err
		}
		return ullbc.SetDiscriminant{Place: p, Variant: st.Variant}, nil
	case ullbc.Deinit:
		p, err := rw.place(st.Place)
		if err != nil {
			return nil, err
		}
		return ullbc.Deinit{Place: p}, nil
	default:
		return st, nil
	}
}

func (rw *rewriter) terminator(t ullbc.Terminator) (ullbc.Terminator, error) {
	switch t := t.(type) {
	case ullbc.Switch:
		discr, err := rw.operand(t.Discr)
		if err != nil {
			return nil, err
		}
		return ullbc.Switch{Discr: discr, Targets: t.Targets}, nil
	case ullbc.Call:
		fun, ok := rw.m.LocalFun(uint32(t.Fun))
		if !ok {
			return nil, badHandoff("call to unknown function %d", t.Fun)
		}
		tyArgs := make([]ir.Ty, len(t.TyArgs))
		for i, a := range t.TyArgs {
			arg, err := rw.ty(a)
			if err != nil {
				return nil, err
			}
			tyArgs[i] = arg
		}
		if len(tyArgs) == 0 {
			tyArgs = nil
		}
		args, err := rw.operands(t.Args)
		if err != nil {
			return nil, err
		}
		dest, err := rw.place(t.Dest)
		if err != nil {
			return nil, err
		}
		return ullbc.Call{
			Fun:     fun,
			Regions: t.Regions,
			TyArgs:  tyArgs,
			Args:    args,
			Dest:    dest,
			Target:  t.Target,
		}, nil
	case ullbc.Assert:
		cond, err := rw.operand(t.Cond)
		if err != nil {
			return nil, err
		}
		return ullbc.Assert{Cond: cond, Expected: t.Expected, Target: t.Target}, nil
	case ullbc.Drop:
		p, err := rw.place(t.Place)
		if err != nil {
			return nil, err
		}
		return ullbc.Drop{Place: p, Target: t.Target}, nil
	default:
		return t, nil
	}
}

func (rw *rewriter) body(b *ullbc.Body) error {
	if b == nil {
		return nil
	}
	for i := range b.Locals {
		ty, err := rw.ty(b.Locals[i].Ty)
		if err != nil {
			return err
		}
		b.Locals[i].Ty = ty
	}
	for i := range b.Blocks {
		blk := &b.Blocks[i]
		for j, st := range blk.Statements {
			mapped, err := rw.statement(st)
			if err != nil {
				return err
			}
			blk.Statements[j] = mapped
		}
		term, err := rw.terminator(blk.Terminator)
		if err != nil {
			return err
		}
		blk.Terminator = term
	}
	return nil
}
