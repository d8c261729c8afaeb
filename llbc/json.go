package llbc

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrevial/candy-for-charon/ir"
)

// Structured bodies serialize with the same kind-tag convention the
// frontend uses for the unstructured form, so downstream consumers read
// one vocabulary.

// EncodeBody writes b as JSON.
func EncodeBody(w io.Writer, b *Body) error {
	enc := json.NewEncoder(w)
	return enc.Encode(b)
}

type bodyJSON struct {
	Locals   []varJSON       `json:"locals"`
	ArgCount int             `json:"arg_count"`
	Stmt     json.RawMessage `json:"stmt"`
}

type varJSON struct {
	ID   ir.VarID        `json:"id"`
	Name string          `json:"name,omitempty"`
	Ty   json.RawMessage `json:"ty"`
}

// MarshalJSON encodes the body with kind-tagged statements.
func (b *Body) MarshalJSON() ([]byte, error) {
	out := bodyJSON{ArgCount: b.ArgCount}
	for _, v := range b.Locals {
		ty, err := ir.MarshalTy(v.Ty)
		if err != nil {
			return nil, err
		}
		out.Locals = append(out.Locals, varJSON{ID: v.ID, Name: v.Name, Ty: ty})
	}
	stmt, err := marshalStatement(b.Stmt)
	if err != nil {
		return nil, err
	}
	out.Stmt = stmt
	return json.Marshal(out)
}

type statementJSON struct {
	Kind      string            `json:"kind"`
	Dest      *ir.Place         `json:"dest,omitempty"`
	Source    json.RawMessage   `json:"source,omitempty"`
	Place     *ir.Place         `json:"place,omitempty"`
	Variant   ir.VariantID      `json:"variant,omitempty"`
	Cond      json.RawMessage   `json:"cond,omitempty"`
	Expected  bool              `json:"expected,omitempty"`
	Fun       ir.FunID          `json:"fun,omitempty"`
	Regions   int               `json:"regions,omitempty"`
	TyArgs    []json.RawMessage `json:"ty_args,omitempty"`
	Args      []json.RawMessage `json:"args,omitempty"`
	Depth     int               `json:"depth,omitempty"`
	First     json.RawMessage   `json:"first,omitempty"`
	Rest      json.RawMessage   `json:"rest,omitempty"`
	Body      json.RawMessage   `json:"body,omitempty"`
	Then      json.RawMessage   `json:"then,omitempty"`
	Else      json.RawMessage   `json:"else,omitempty"`
	Discr     json.RawMessage   `json:"discr,omitempty"`
	IntTy     string            `json:"int_ty,omitempty"`
	Branches  []branchJSON      `json:"branches,omitempty"`
	Otherwise json.RawMessage   `json:"otherwise,omitempty"`
}

type branchJSON struct {
	Values   []ir.ScalarValue `json:"values,omitempty"`
	Variants []ir.VariantID   `json:"variants,omitempty"`
	Stmt     json.RawMessage  `json:"stmt"`
}

func marshalStatement(s Statement) (json.RawMessage, error) {
	out := statementJSON{}
	switch s := s.(type) {
	case Assign:
		out.Kind = "assign"
		p := s.Dest
		out.Dest = &p
		src, err := ir.MarshalRvalue(s.Source)
		if err != nil {
			return nil, err
		}
		out.Source = src
	case FakeRead:
		out.Kind = "fake_read"
		p := s.Place
		out.Place = &p
	case SetDiscriminant:
		out.Kind = "set_discriminant"
		p := s.Place
		out.Place = &p
		out.Variant = s.Variant
	case Drop:
		out.Kind = "drop"
		p := s.Place
		out.Place = &p
	case Assert:
		out.Kind = "assert"
		cond, err := ir.MarshalOperand(s.Cond)
		if err != nil {
			return nil, err
		}
		out.Cond = cond
		out.Expected = s.Expected
	case Call:
		out.Kind = "call"
		out.Fun = s.Fun
		out.Regions = len(s.Regions)
		for _, a := range s.TyArgs {
			ty, err := ir.MarshalTy(a)
			if err != nil {
				return nil, err
			}
			out.TyArgs = append(out.TyArgs, ty)
		}
		for _, a := range s.Args {
			op, err := ir.MarshalOperand(a)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, op)
		}
		p := s.Dest
		out.Dest = &p
	case Panic:
		out.Kind = "panic"
	case Return:
		out.Kind = "return"
	case Break:
		out.Kind = "break"
		out.Depth = s.Depth
	case Continue:
		out.Kind = "continue"
		out.Depth = s.Depth
	case Nop:
		out.Kind = "nop"
	case Sequence:
		out.Kind = "sequence"
		first, err := marshalStatement(s.First)
		if err != nil {
			return nil, err
		}
		rest, err := marshalStatement(s.Rest)
		if err != nil {
			return nil, err
		}
		out.First, out.Rest = first, rest
	case Loop:
		out.Kind = "loop"
		body, err := marshalStatement(s.Body)
		if err != nil {
			return nil, err
		}
		out.Body = body
	case If:
		out.Kind = "if"
		cond, err := ir.MarshalOperand(s.Cond)
		if err != nil {
			return nil, err
		}
		out.Cond = cond
		thenS, err := marshalStatement(s.Then)
		if err != nil {
			return nil, err
		}
		elseS, err := marshalStatement(s.Else)
		if err != nil {
			return nil, err
		}
		out.Then, out.Else = thenS, elseS
	case SwitchInt:
		out.Kind = "switch_int"
		discr, err := ir.MarshalOperand(s.Discr)
		if err != nil {
			return nil, err
		}
		out.Discr = discr
		out.IntTy = s.IntTy.String()
		for _, br := range s.Branches {
			stmt, err := marshalStatement(br.Stmt)
			if err != nil {
				return nil, err
			}
			out.Branches = append(out.Branches, branchJSON{Values: br.Values, Stmt: stmt})
		}
		otherwise, err := marshalStatement(s.Otherwise)
		if err != nil {
			return nil, err
		}
		out.Otherwise = otherwise
	case Match:
		out.Kind = "match"
		p := s.Place
		out.Place = &p
		for _, br := range s.Branches {
			stmt, err := marshalStatement(br.Stmt)
			if err != nil {
				return nil, err
			}
			out.Branches = append(out.Branches, branchJSON{Variants: br.Variants, Stmt: stmt})
		}
		otherwise, err := marshalStatement(s.Otherwise)
		if err != nil {
			return nil, err
		}
		out.Otherwise = otherwise
	default:
		return nil, fmt.Errorf("unknown statement %T", s)
	}
	return json.Marshal(out)
}
