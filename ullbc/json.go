package ullbc

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrevial/candy-for-charon/errors"
	"github.com/pierrevial/candy-for-charon/ir"
)

// The frontend serializes crates with a "kind" tag on every sum-typed
// node, matching the encoders in package ir. Decoding is strict: an
// unknown kind or a missing field is a decode failure, not a zero value.

// DecodeCrate reads one crate from r.
func DecodeCrate(r io.Reader) (*Crate, error) {
	var raw crateJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Cause(err).
			Detail("malformed crate").
			Build()
	}
	c, err := raw.build()
	if err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Cause(err).
			Detail("malformed crate").
			Build()
	}
	return c, nil
}

type crateJSON struct {
	Name     string           `json:"name"`
	Types    []typeDeclJSON   `json:"types"`
	Funs     []funDeclJSON    `json:"funs"`
	Globals  []globalDeclJSON `json:"globals"`
	Ordering []declGroupJSON  `json:"ordering"`
}

type typeDeclJSON struct {
	ID       ir.TypeID         `json:"id"`
	Name     string            `json:"name"`
	Fields   []fieldDeclJSON   `json:"fields,omitempty"`
	Variants []variantDeclJSON `json:"variants,omitempty"`
}

type variantDeclJSON struct {
	Name   string          `json:"name"`
	Fields []fieldDeclJSON `json:"fields,omitempty"`
}

type fieldDeclJSON struct {
	Name string          `json:"name"`
	Ty   json.RawMessage `json:"ty"`
}

type funDeclJSON struct {
	ID   ir.FunID  `json:"id"`
	Name string    `json:"name"`
	Body *bodyJSON `json:"body,omitempty"`
}

type globalDeclJSON struct {
	ID   ir.GlobalID     `json:"id"`
	Name string          `json:"name"`
	Ty   json.RawMessage `json:"ty"`
	Body *bodyJSON       `json:"body,omitempty"`
}

type declGroupJSON struct {
	Kind      string   `json:"kind"`
	IDs       []uint32 `json:"ids"`
	Recursive bool     `json:"recursive,omitempty"`
}

type bodyJSON struct {
	Locals   []varJSON   `json:"locals"`
	ArgCount int         `json:"arg_count"`
	Blocks   []blockJSON `json:"blocks"`
}

type varJSON struct {
	ID   ir.VarID        `json:"id"`
	Name string          `json:"name,omitempty"`
	Ty   json.RawMessage `json:"ty"`
}

type blockJSON struct {
	Statements []json.RawMessage `json:"statements,omitempty"`
	Terminator json.RawMessage   `json:"terminator"`
}

func (raw *crateJSON) build() (*Crate, error) {
	c := &Crate{Name: raw.Name}
	for _, t := range raw.Types {
		decl, err := t.build()
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", t.Name, err)
		}
		c.Types = append(c.Types, decl)
	}
	for _, f := range raw.Funs {
		decl := FunDecl{ID: f.ID, Name: f.Name}
		if f.Body != nil {
			body, err := f.Body.build()
			if err != nil {
				return nil, fmt.Errorf("function %q: %w", f.Name, err)
			}
			decl.Body = body
		}
		c.Funs = append(c.Funs, decl)
	}
	for _, g := range raw.Globals {
		ty, err := ir.UnmarshalTy(g.Ty)
		if err != nil {
			return nil, fmt.Errorf("global %q: %w", g.Name, err)
		}
		decl := GlobalDecl{ID: g.ID, Name: g.Name, Ty: ty}
		if g.Body != nil {
			body, err := g.Body.build()
			if err != nil {
				return nil, fmt.Errorf("global %q: %w", g.Name, err)
			}
			decl.Body = body
		}
		c.Globals = append(c.Globals, decl)
	}
	for _, g := range raw.Ordering {
		group := DeclGroup{IDs: g.IDs, Recursive: g.Recursive}
		switch g.Kind {
		case "type":
			group.Kind = DeclType
		case "fun":
			group.Kind = DeclFun
		case "global":
			group.Kind = DeclGlobal
		default:
			return nil, fmt.Errorf("unknown declaration group kind %q", g.Kind)
		}
		c.Ordering = append(c.Ordering, group)
	}
	return c, nil
}

func (raw *typeDeclJSON) build() (TypeDecl, error) {
	decl := TypeDecl{ID: raw.ID, Name: raw.Name}
	fields, err := buildFields(raw.Fields)
	if err != nil {
		return TypeDecl{}, err
	}
	decl.Fields = fields
	if raw.Variants != nil {
		decl.Variants = make([]VariantDecl, 0, len(raw.Variants))
		for _, v := range raw.Variants {
			fields, err := buildFields(v.Fields)
			if err != nil {
				return TypeDecl{}, fmt.Errorf("variant %q: %w", v.Name, err)
			}
			decl.Variants = append(decl.Variants, VariantDecl{Name: v.Name, Fields: fields})
		}
	}
	return decl, nil
}

func buildFields(raw []fieldDeclJSON) ([]FieldDecl, error) {
	if raw == nil {
		return nil, nil
	}
	fields := make([]FieldDecl, 0, len(raw))
	for _, f := range raw {
		ty, err := ir.UnmarshalTy(f.Ty)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		fields = append(fields, FieldDecl{Name: f.Name, Ty: ty})
	}
	return fields, nil
}

func (raw *bodyJSON) build() (*Body, error) {
	body := &Body{ArgCount: raw.ArgCount}
	for _, v := range raw.Locals {
		ty, err := ir.UnmarshalTy(v.Ty)
		if err != nil {
			return nil, fmt.Errorf("local %d: %w", v.ID, err)
		}
		body.Locals = append(body.Locals, Var{ID: v.ID, Name: v.Name, Ty: ty})
	}
	for i, b := range raw.Blocks {
		var stmts []Statement
		for j, s := range b.Statements {
			stmt, err := decodeStatement(s)
			if err != nil {
				return nil, fmt.Errorf("block %d statement %d: %w", i, j, err)
			}
			stmts = append(stmts, stmt)
		}
		if len(b.Terminator) == 0 {
			return nil, fmt.Errorf("block %d has no terminator", i)
		}
		term, err := decodeTerminator(b.Terminator)
		if err != nil {
			return nil, fmt.Errorf("block %d terminator: %w", i, err)
		}
		body.Blocks = append(body.Blocks, BasicBlock{Statements: stmts, Terminator: term})
	}
	return body, nil
}

type statementJSON struct {
	Kind    string          `json:"kind"`
	Dest    *ir.Place       `json:"dest,omitempty"`
	Source  json.RawMessage `json:"source,omitempty"`
	Place   *ir.Place       `json:"place,omitempty"`
	Variant ir.VariantID    `json:"variant,omitempty"`
	Var     ir.VarID        `json:"var,omitempty"`
}

func decodeStatement(data json.RawMessage) (Statement, error) {
	var raw statementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case "assign":
		if raw.Dest == nil {
			return nil, fmt.Errorf("assign without a destination")
		}
		src, err := ir.UnmarshalRvalue(raw.Source)
		if err != nil {
			return nil, err
		}
		return Assign{Dest: *raw.Dest, Source: src}, nil
	case "fake_read":
		if raw.Place == nil {
			return nil, fmt.Errorf("fake_read without a place")
		}
		return FakeRead{Place: *raw.Place}, nil
	case "set_discriminant":
		if raw.Place == nil {
			return nil, fmt.Errorf("set_discriminant without a place")
		}
		return SetDiscriminant{Place: *raw.Place, Variant: raw.Variant}, nil
	case "storage_dead":
		return StorageDead{Var: raw.Var}, nil
	case "deinit":
		if raw.Place == nil {
			return nil, fmt.Errorf("deinit without a place")
		}
		return Deinit{Place: *raw.Place}, nil
	default:
		return nil, fmt.Errorf("unknown statement kind %q", raw.Kind)
	}
}

type terminatorJSON struct {
	Kind     string            `json:"kind"`
	Target   ir.BlockID        `json:"target,omitempty"`
	Discr    json.RawMessage   `json:"discr,omitempty"`
	Targets  *switchJSON       `json:"targets,omitempty"`
	Fun      ir.FunID          `json:"fun,omitempty"`
	Regions  int               `json:"regions,omitempty"`
	TyArgs   []json.RawMessage `json:"ty_args,omitempty"`
	Args     []json.RawMessage `json:"args,omitempty"`
	Dest     *ir.Place         `json:"dest,omitempty"`
	Cond     json.RawMessage   `json:"cond,omitempty"`
	Expected bool              `json:"expected,omitempty"`
	Place    *ir.Place         `json:"place,omitempty"`
}

type switchJSON struct {
	IsIf      bool             `json:"is_if,omitempty"`
	IfTrue    ir.BlockID       `json:"if_true,omitempty"`
	IfFalse   ir.BlockID       `json:"if_false,omitempty"`
	IntTy     string           `json:"int_ty,omitempty"`
	Cases     []switchCaseJSON `json:"cases,omitempty"`
	Otherwise ir.BlockID       `json:"otherwise,omitempty"`
}

type switchCaseJSON struct {
	Value  ir.ScalarValue `json:"value"`
	Target ir.BlockID     `json:"target"`
}

func decodeTerminator(data json.RawMessage) (Terminator, error) {
	var raw terminatorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case "goto":
		return Goto{Target: raw.Target}, nil
	case "switch":
		discr, err := ir.UnmarshalOperand(raw.Discr)
		if err != nil {
			return nil, err
		}
		if raw.Targets == nil {
			return nil, fmt.Errorf("switch without targets")
		}
		targets, err := raw.Targets.build()
		if err != nil {
			return nil, err
		}
		return Switch{Discr: discr, Targets: targets}, nil
	case "call":
		var tyArgs []ir.Ty
		for _, a := range raw.TyArgs {
			ty, err := ir.UnmarshalTy(a)
			if err != nil {
				return nil, err
			}
			tyArgs = append(tyArgs, ty)
		}
		var args []ir.Operand
		for _, a := range raw.Args {
			op, err := ir.UnmarshalOperand(a)
			if err != nil {
				return nil, err
			}
			args = append(args, op)
		}
		if raw.Dest == nil {
			return nil, fmt.Errorf("call without a destination")
		}
		return Call{
			Fun:     raw.Fun,
			Regions: make([]ir.ErasedRegion, raw.Regions),
			TyArgs:  tyArgs,
			Args:    args,
			Dest:    *raw.Dest,
			Target:  raw.Target,
		}, nil
	case "assert":
		cond, err := ir.UnmarshalOperand(raw.Cond)
		if err != nil {
			return nil, err
		}
		return Assert{Cond: cond, Expected: raw.Expected, Target: raw.Target}, nil
	case "drop":
		if raw.Place == nil {
			return nil, fmt.Errorf("drop without a place")
		}
		return Drop{Place: *raw.Place, Target: raw.Target}, nil
	case "return":
		return Return{}, nil
	case "panic":
		return Panic{}, nil
	case "unreachable":
		return Unreachable{}, nil
	default:
		return nil, fmt.Errorf("unknown terminator kind %q", raw.Kind)
	}
}

func (raw *switchJSON) build() (SwitchTargets, error) {
	if raw.IsIf {
		return SwitchTargets{IsIf: true, IfTrue: raw.IfTrue, IfFalse: raw.IfFalse}, nil
	}
	ity, err := ir.IntegerTyFromName(raw.IntTy)
	if err != nil {
		return SwitchTargets{}, err
	}
	st := SwitchTargets{IntTy: ity, Otherwise: raw.Otherwise}
	for _, c := range raw.Cases {
		st.Cases = append(st.Cases, SwitchCase{Value: c.Value, Target: c.Target})
	}
	return st, nil
}
