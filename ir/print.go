package ir

import (
	"fmt"
	"strings"
)

// FormatEnv supplies human-readable names for ids when rendering IR.
// Implementations usually wrap the crate's declaration tables.
type FormatEnv interface {
	VarName(v VarID) string
	TypeName(t TypeID) string
	VariantName(t TypeID, v VariantID) string
	// FieldName names a field; variant is meaningful only when hasVariant.
	FieldName(t TypeID, variant VariantID, hasVariant bool, f FieldID) string
	FunName(f FunID) string
	GlobalName(g GlobalID) string
}

// DefaultEnv renders raw ids. It is what String methods fall back to when
// no declaration tables are around.
type DefaultEnv struct{}

func (DefaultEnv) VarName(v VarID) string   { return fmt.Sprintf("@%d", v) }
func (DefaultEnv) TypeName(t TypeID) string { return fmt.Sprintf("@adt%d", t) }
func (DefaultEnv) FunName(f FunID) string   { return fmt.Sprintf("@fun%d", f) }
func (DefaultEnv) GlobalName(g GlobalID) string {
	return fmt.Sprintf("@global%d", g)
}

func (DefaultEnv) VariantName(t TypeID, v VariantID) string {
	return fmt.Sprintf("@adt%d::@variant%d", t, v)
}

func (DefaultEnv) FieldName(t TypeID, variant VariantID, hasVariant bool, f FieldID) string {
	return fmt.Sprintf("field%d", f)
}

// NamedVars overlays per-body variable names on a base environment. Ids
// without a name keep the base rendering.
func NamedVars(base FormatEnv, names map[VarID]string) FormatEnv {
	return namedVars{base, names}
}

type namedVars struct {
	FormatEnv
	names map[VarID]string
}

func (e namedVars) VarName(v VarID) string {
	if n := e.names[v]; n != "" {
		return n
	}
	return e.FormatEnv.VarName(v)
}

// FormatPlace renders a place by folding its projection path around the
// base variable.
func FormatPlace(env FormatEnv, p Place) string {
	out := env.VarName(p.Var)
	for _, e := range p.Projection {
		switch e.Kind {
		case ProjDeref:
			out = fmt.Sprintf("*(%s)", out)
		case ProjDerefBox:
			out = fmt.Sprintf("deref_box (%s)", out)
		case ProjField:
			if e.FieldKind == FieldTuple {
				out = fmt.Sprintf("(%s).%d", out, e.Field)
			} else {
				name := env.FieldName(e.Adt, e.Variant, e.HasVariant, e.Field)
				out = fmt.Sprintf("(%s).%s", out, name)
			}
		case ProjDowncast:
			out = fmt.Sprintf("(%s as variant @%d)", out, e.Variant)
		}
	}
	return out
}

// FormatOperand renders an operand.
func FormatOperand(env FormatEnv, op Operand) string {
	switch op := op.(type) {
	case Copy:
		return fmt.Sprintf("copy (%s)", FormatPlace(env, op.Place))
	case Move:
		return fmt.Sprintf("move (%s)", FormatPlace(env, op.Place))
	case Const:
		if adt, ok := op.Value.(ConstAdt); ok {
			return fmt.Sprintf("const (ConstAdt %s)", env.TypeName(adt.ID))
		}
		return fmt.Sprintf("const (%s)", op.Value)
	}
	return "operand?"
}

// FormatRvalue renders an rvalue.
func FormatRvalue(env FormatEnv, rv Rvalue) string {
	switch rv := rv.(type) {
	case Use:
		return FormatOperand(env, rv.Operand)
	case Ref:
		return rv.Kind.String() + FormatPlace(env, rv.Place)
	case Unary:
		return fmt.Sprintf("%s(%s)", rv.Op, FormatOperand(env, rv.Operand))
	case Binary:
		op := rv.Op.String()
		if rv.Checked {
			op = "checked." + op
		}
		return fmt.Sprintf("%s %s %s",
			FormatOperand(env, rv.Left), op, FormatOperand(env, rv.Right))
	case GetDiscriminant:
		return fmt.Sprintf("@discriminant(%s)", FormatPlace(env, rv.Place))
	case Aggregate:
		fields := make([]string, len(rv.Fields))
		for i, f := range rv.Fields {
			fields[i] = FormatOperand(env, f)
		}
		if rv.Kind.Tuple {
			return "(" + strings.Join(fields, ", ") + ")"
		}
		name := env.TypeName(rv.Kind.Adt)
		if rv.Kind.HasVariant {
			name = env.VariantName(rv.Kind.Adt, rv.Kind.Variant)
		}
		return fmt.Sprintf("%s { %s }", name, strings.Join(fields, ", "))
	}
	return "rvalue?"
}
