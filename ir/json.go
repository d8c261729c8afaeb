package ir

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// The interchange format tags every sum-typed node with a "kind" field.
// The frontend emits it and cmd/inspect reads it back.

// MarshalJSON encodes the scalar as its type name and decimal value.
// Negative values print with a minus sign, not as raw two's complement.
func (s ScalarValue) MarshalJSON() ([]byte, error) {
	value := s.Bits.Dec()
	if s.Ty.IsSigned() && s.Bits.Sign() < 0 {
		var mag uint256.Int
		mag.Neg(&s.Bits)
		value = "-" + mag.Dec()
	}
	return json.Marshal(struct {
		Ty    string `json:"ty"`
		Value string `json:"value"`
	}{Ty: s.Ty.String(), Value: value})
}

// UnmarshalJSON decodes a scalar from its type name and decimal value.
// Negative values carry a leading minus sign.
func (s *ScalarValue) UnmarshalJSON(data []byte) error {
	var raw struct {
		Ty    string `json:"ty"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ty, err := IntegerTyFromName(raw.Ty)
	if err != nil {
		return err
	}
	neg := strings.HasPrefix(raw.Value, "-")
	if err := s.Bits.SetFromDecimal(strings.TrimPrefix(raw.Value, "-")); err != nil {
		return fmt.Errorf("scalar value %q: %w", raw.Value, err)
	}
	if neg {
		s.Bits.Neg(&s.Bits)
	}
	s.Ty = ty
	return nil
}

// IntegerTyFromName resolves an integer type from its name ("i32",
// "usize", ...).
func IntegerTyFromName(name string) (IntegerTy, error) {
	for ty := Isize; ty <= U128; ty++ {
		if ty.String() == name {
			return ty, nil
		}
	}
	return 0, fmt.Errorf("unknown integer type %q", name)
}

type projElemJSON struct {
	Kind       string    `json:"kind"`
	FieldKind  string    `json:"field_kind,omitempty"`
	Field      FieldID   `json:"field,omitempty"`
	Adt        TypeID    `json:"adt,omitempty"`
	HasVariant bool      `json:"has_variant,omitempty"`
	Arity      int       `json:"arity,omitempty"`
	Variant    VariantID `json:"variant,omitempty"`
}

// MarshalJSON encodes the projection element with its kind tag.
func (e ProjectionElem) MarshalJSON() ([]byte, error) {
	out := projElemJSON{
		Field:      e.Field,
		Adt:        e.Adt,
		HasVariant: e.HasVariant,
		Arity:      e.Arity,
		Variant:    e.Variant,
	}
	switch e.Kind {
	case ProjDeref:
		out.Kind = "deref"
	case ProjDerefBox:
		out.Kind = "deref_box"
	case ProjField:
		out.Kind = "field"
		if e.FieldKind == FieldTuple {
			out.FieldKind = "tuple"
		} else {
			out.FieldKind = "adt"
		}
	case ProjDowncast:
		out.Kind = "downcast"
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a kind-tagged projection element.
func (e *ProjectionElem) UnmarshalJSON(data []byte) error {
	var raw projElemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = ProjectionElem{
		Field:      raw.Field,
		Adt:        raw.Adt,
		HasVariant: raw.HasVariant,
		Arity:      raw.Arity,
		Variant:    raw.Variant,
	}
	switch raw.Kind {
	case "deref":
		e.Kind = ProjDeref
	case "deref_box":
		e.Kind = ProjDerefBox
	case "field":
		e.Kind = ProjField
		switch raw.FieldKind {
		case "tuple":
			e.FieldKind = FieldTuple
		case "adt":
			e.FieldKind = FieldAdt
		default:
			return fmt.Errorf("unknown field projection kind %q", raw.FieldKind)
		}
	case "downcast":
		e.Kind = ProjDowncast
	default:
		return fmt.Errorf("unknown projection kind %q", raw.Kind)
	}
	return nil
}

type tyJSON struct {
	Kind    string            `json:"kind"`
	Int     string            `json:"int,omitempty"`
	ID      TypeID            `json:"id,omitempty"`
	Args    []json.RawMessage `json:"args,omitempty"`
	Elems   []json.RawMessage `json:"elems,omitempty"`
	Pointee json.RawMessage   `json:"pointee,omitempty"`
	Mutable bool              `json:"mutable,omitempty"`
}

// MarshalTy encodes a type with its kind tag.
func MarshalTy(t Ty) (json.RawMessage, error) {
	out := tyJSON{}
	switch t := t.(type) {
	case TyBool:
		out.Kind = "bool"
	case TyChar:
		out.Kind = "char"
	case TyStr:
		out.Kind = "str"
	case TyUnit:
		out.Kind = "unit"
	case TyInt:
		out.Kind = "int"
		out.Int = t.Int.String()
	case TyTuple:
		out.Kind = "tuple"
		for _, e := range t.Elems {
			raw, err := MarshalTy(e)
			if err != nil {
				return nil, err
			}
			out.Elems = append(out.Elems, raw)
		}
	case TyAdt:
		out.Kind = "adt"
		out.ID = t.ID
		for _, a := range t.Args {
			raw, err := MarshalTy(a)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, raw)
		}
	case TyRef:
		out.Kind = "ref"
		raw, err := MarshalTy(t.Pointee)
		if err != nil {
			return nil, err
		}
		out.Pointee = raw
		out.Mutable = t.Mutable
	case TyBox:
		out.Kind = "box"
		raw, err := MarshalTy(t.Pointee)
		if err != nil {
			return nil, err
		}
		out.Pointee = raw
	default:
		return nil, fmt.Errorf("unknown type %T", t)
	}
	return json.Marshal(out)
}

// UnmarshalTy decodes a kind-tagged type.
func UnmarshalTy(data json.RawMessage) (Ty, error) {
	var raw tyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case "bool":
		return TyBool{}, nil
	case "char":
		return TyChar{}, nil
	case "str":
		return TyStr{}, nil
	case "unit":
		return TyUnit{}, nil
	case "int":
		ity, err := IntegerTyFromName(raw.Int)
		if err != nil {
			return nil, err
		}
		return TyInt{Int: ity}, nil
	case "tuple":
		elems := make([]Ty, len(raw.Elems))
		for i, e := range raw.Elems {
			elem, err := UnmarshalTy(e)
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return TyTuple{Elems: elems}, nil
	case "adt":
		var args []Ty
		for _, a := range raw.Args {
			arg, err := UnmarshalTy(a)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return TyAdt{ID: raw.ID, Args: args}, nil
	case "ref":
		pointee, err := UnmarshalTy(raw.Pointee)
		if err != nil {
			return nil, err
		}
		return TyRef{Pointee: pointee, Mutable: raw.Mutable}, nil
	case "box":
		pointee, err := UnmarshalTy(raw.Pointee)
		if err != nil {
			return nil, err
		}
		return TyBox{Pointee: pointee}, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", raw.Kind)
	}
}

type constJSON struct {
	Kind   string       `json:"kind"`
	Scalar *ScalarValue `json:"scalar,omitempty"`
	Bool   bool         `json:"bool,omitempty"`
	Char   string       `json:"char,omitempty"`
	Str    string       `json:"str,omitempty"`
	ID     TypeID       `json:"id,omitempty"`
}

func marshalConst(v ConstValue) (json.RawMessage, error) {
	out := constJSON{}
	switch v := v.(type) {
	case ConstScalar:
		out.Kind = "scalar"
		s := v.Value
		out.Scalar = &s
	case ConstBool:
		out.Kind = "bool"
		out.Bool = v.Value
	case ConstChar:
		out.Kind = "char"
		out.Char = string(v.Value)
	case ConstStr:
		out.Kind = "str"
		out.Str = v.Value
	case ConstAdt:
		out.Kind = "adt"
		out.ID = v.ID
	case ConstUnit:
		out.Kind = "unit"
	default:
		return nil, fmt.Errorf("unknown constant %T", v)
	}
	return json.Marshal(out)
}

func unmarshalConst(data json.RawMessage) (ConstValue, error) {
	var raw constJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case "scalar":
		if raw.Scalar == nil {
			return nil, fmt.Errorf("scalar constant without a value")
		}
		return ConstScalar{Value: *raw.Scalar}, nil
	case "bool":
		return ConstBool{Value: raw.Bool}, nil
	case "char":
		runes := []rune(raw.Char)
		if len(runes) != 1 {
			return nil, fmt.Errorf("char constant %q is not a single rune", raw.Char)
		}
		return ConstChar{Value: runes[0]}, nil
	case "str":
		return ConstStr{Value: raw.Str}, nil
	case "adt":
		return ConstAdt{ID: raw.ID}, nil
	case "unit":
		return ConstUnit{}, nil
	default:
		return nil, fmt.Errorf("unknown constant kind %q", raw.Kind)
	}
}

type operandJSON struct {
	Kind  string          `json:"kind"`
	Place *Place          `json:"place,omitempty"`
	Ty    json.RawMessage `json:"ty,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalOperand encodes an operand with its kind tag.
func MarshalOperand(op Operand) (json.RawMessage, error) {
	out := operandJSON{}
	switch op := op.(type) {
	case Copy:
		out.Kind = "copy"
		p := op.Place
		out.Place = &p
	case Move:
		out.Kind = "move"
		p := op.Place
		out.Place = &p
	case Const:
		out.Kind = "const"
		ty, err := MarshalTy(op.Ty)
		if err != nil {
			return nil, err
		}
		out.Ty = ty
		value, err := marshalConst(op.Value)
		if err != nil {
			return nil, err
		}
		out.Value = value
	default:
		return nil, fmt.Errorf("unknown operand %T", op)
	}
	return json.Marshal(out)
}

// UnmarshalOperand decodes a kind-tagged operand.
func UnmarshalOperand(data json.RawMessage) (Operand, error) {
	var raw operandJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case "copy":
		if raw.Place == nil {
			return nil, fmt.Errorf("copy operand without a place")
		}
		return Copy{Place: *raw.Place}, nil
	case "move":
		if raw.Place == nil {
			return nil, fmt.Errorf("move operand without a place")
		}
		return Move{Place: *raw.Place}, nil
	case "const":
		ty, err := UnmarshalTy(raw.Ty)
		if err != nil {
			return nil, err
		}
		value, err := unmarshalConst(raw.Value)
		if err != nil {
			return nil, err
		}
		return Const{Ty: ty, Value: value}, nil
	default:
		return nil, fmt.Errorf("unknown operand kind %q", raw.Kind)
	}
}

type rvalueJSON struct {
	Kind    string            `json:"kind"`
	Place   *Place            `json:"place,omitempty"`
	Operand json.RawMessage   `json:"operand,omitempty"`
	Left    json.RawMessage   `json:"left,omitempty"`
	Right   json.RawMessage   `json:"right,omitempty"`
	UnOp    string            `json:"unop,omitempty"`
	BinOp   string            `json:"binop,omitempty"`
	Checked bool              `json:"checked,omitempty"`
	Borrow  string            `json:"borrow,omitempty"`
	Agg     *aggKindJSON      `json:"agg,omitempty"`
	Fields  []json.RawMessage `json:"fields,omitempty"`
}

type aggKindJSON struct {
	Tuple      bool      `json:"tuple,omitempty"`
	Adt        TypeID    `json:"adt,omitempty"`
	HasVariant bool      `json:"has_variant,omitempty"`
	Variant    VariantID `json:"variant,omitempty"`
}

// MarshalRvalue encodes an rvalue with its kind tag.
func MarshalRvalue(rv Rvalue) (json.RawMessage, error) {
	out := rvalueJSON{}
	switch rv := rv.(type) {
	case Use:
		out.Kind = "use"
		op, err := MarshalOperand(rv.Operand)
		if err != nil {
			return nil, err
		}
		out.Operand = op
	case Ref:
		out.Kind = "ref"
		p := rv.Place
		out.Place = &p
		out.Borrow = borrowKindName(rv.Kind)
	case Unary:
		out.Kind = "unary"
		out.UnOp = rv.Op.String()
		op, err := MarshalOperand(rv.Operand)
		if err != nil {
			return nil, err
		}
		out.Operand = op
	case Binary:
		out.Kind = "binary"
		out.BinOp = rv.Op.String()
		out.Checked = rv.Checked
		left, err := MarshalOperand(rv.Left)
		if err != nil {
			return nil, err
		}
		right, err := MarshalOperand(rv.Right)
		if err != nil {
			return nil, err
		}
		out.Left, out.Right = left, right
	case GetDiscriminant:
		out.Kind = "discriminant"
		p := rv.Place
		out.Place = &p
	case Aggregate:
		out.Kind = "aggregate"
		out.Agg = &aggKindJSON{
			Tuple:      rv.Kind.Tuple,
			Adt:        rv.Kind.Adt,
			HasVariant: rv.Kind.HasVariant,
			Variant:    rv.Kind.Variant,
		}
		for _, f := range rv.Fields {
			raw, err := MarshalOperand(f)
			if err != nil {
				return nil, err
			}
			out.Fields = append(out.Fields, raw)
		}
	default:
		return nil, fmt.Errorf("unknown rvalue %T", rv)
	}
	return json.Marshal(out)
}

// UnmarshalRvalue decodes a kind-tagged rvalue.
func UnmarshalRvalue(data json.RawMessage) (Rvalue, error) {
	var raw rvalueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case "use":
		op, err := UnmarshalOperand(raw.Operand)
		if err != nil {
			return nil, err
		}
		return Use{Operand: op}, nil
	case "ref":
		if raw.Place == nil {
			return nil, fmt.Errorf("ref rvalue without a place")
		}
		kind, err := borrowKindFromName(raw.Borrow)
		if err != nil {
			return nil, err
		}
		return Ref{Place: *raw.Place, Kind: kind}, nil
	case "unary":
		op, err := UnmarshalOperand(raw.Operand)
		if err != nil {
			return nil, err
		}
		unop := Not
		if raw.UnOp == Neg.String() {
			unop = Neg
		}
		return Unary{Op: unop, Operand: op}, nil
	case "binary":
		binop, err := binOpFromName(raw.BinOp)
		if err != nil {
			return nil, err
		}
		left, err := UnmarshalOperand(raw.Left)
		if err != nil {
			return nil, err
		}
		right, err := UnmarshalOperand(raw.Right)
		if err != nil {
			return nil, err
		}
		return Binary{Op: binop, Checked: raw.Checked, Left: left, Right: right}, nil
	case "discriminant":
		if raw.Place == nil {
			return nil, fmt.Errorf("discriminant rvalue without a place")
		}
		return GetDiscriminant{Place: *raw.Place}, nil
	case "aggregate":
		if raw.Agg == nil {
			return nil, fmt.Errorf("aggregate rvalue without a kind")
		}
		var fields []Operand
		for _, f := range raw.Fields {
			op, err := UnmarshalOperand(f)
			if err != nil {
				return nil, err
			}
			fields = append(fields, op)
		}
		kind := AggregateKind{
			Tuple:      raw.Agg.Tuple,
			Adt:        raw.Agg.Adt,
			HasVariant: raw.Agg.HasVariant,
			Variant:    raw.Agg.Variant,
		}
		return Aggregate{Kind: kind, Fields: fields}, nil
	default:
		return nil, fmt.Errorf("unknown rvalue kind %q", raw.Kind)
	}
}

func binOpFromName(name string) (BinOp, error) {
	for op := BitXor; op <= Shr; op++ {
		if op.String() == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown binary operator %q", name)
}

func borrowKindName(kind BorrowKind) string {
	switch kind {
	case Unique:
		return "unique"
	case TwoPhaseUnique:
		return "two_phase"
	}
	return "shared"
}

func borrowKindFromName(name string) (BorrowKind, error) {
	switch name {
	case "shared":
		return Shared, nil
	case "unique":
		return Unique, nil
	case "two_phase":
		return TwoPhaseUnique, nil
	}
	return 0, fmt.Errorf("unknown borrow kind %q", name)
}
