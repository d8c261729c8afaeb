package ir

import "fmt"

// ProjKind discriminates projection path elements.
type ProjKind uint8

const (
	// ProjDeref dereferences a shared or unique reference.
	ProjDeref ProjKind = iota
	// ProjDerefBox dereferences an owning box. MIR uses a single Deref for
	// both; the frontend disambiguates because the semantics differ.
	ProjDerefBox
	// ProjField projects a field out of a tuple, struct or enum variant.
	ProjField
	// ProjDowncast views an enum as one specific variant. A downcast always
	// comes before the field projections into that variant.
	ProjDowncast
)

// FieldProjKind says what kind of aggregate a field projection reads from.
type FieldProjKind uint8

const (
	// FieldAdt projects from a struct or enum variant.
	FieldAdt FieldProjKind = iota
	// FieldTuple projects from a tuple; Arity gives the tuple size.
	FieldTuple
)

// ProjectionElem is one step of a projection path. It is a flat comparable
// struct rather than an interface sum: the simplifier decides guard shapes
// by exact place equality, so == on elements is load-bearing.
type ProjectionElem struct {
	Kind ProjKind

	// ProjField only.
	FieldKind  FieldProjKind
	Field      FieldID
	Adt        TypeID // FieldAdt
	HasVariant bool   // FieldAdt: projecting from a variant
	Arity      int    // FieldTuple

	// ProjDowncast, and ProjField with HasVariant.
	Variant VariantID
}

// TupleField builds the projection element reading field i of an n-tuple.
func TupleField(i FieldID, arity int) ProjectionElem {
	return ProjectionElem{Kind: ProjField, FieldKind: FieldTuple, Field: i, Arity: arity}
}

// AdtField builds the projection element reading a struct field.
func AdtField(adt TypeID, field FieldID) ProjectionElem {
	return ProjectionElem{Kind: ProjField, FieldKind: FieldAdt, Adt: adt, Field: field}
}

// VariantField builds the projection element reading a field of a
// downcast enum variant.
func VariantField(adt TypeID, variant VariantID, field FieldID) ProjectionElem {
	return ProjectionElem{
		Kind: ProjField, FieldKind: FieldAdt,
		Adt: adt, HasVariant: true, Variant: variant, Field: field,
	}
}

// Downcast builds the projection element viewing an enum as a variant.
func Downcast(variant VariantID) ProjectionElem {
	return ProjectionElem{Kind: ProjDowncast, Variant: variant}
}

// Deref is the reference dereference element.
func Deref() ProjectionElem { return ProjectionElem{Kind: ProjDeref} }

// DerefBox is the box dereference element.
func DerefBox() ProjectionElem { return ProjectionElem{Kind: ProjDerefBox} }

// Place is an addressable location: a base variable plus an ordered
// projection path. Immutable once constructed; clone freely. Aliasing was
// already established safe upstream, so none is tracked here.
type Place struct {
	Var        VarID            `json:"var"`
	Projection []ProjectionElem `json:"projection,omitempty"`
}

// PlaceOf builds a place from a variable and an optional projection path.
func PlaceOf(v VarID, proj ...ProjectionElem) Place {
	return Place{Var: v, Projection: proj}
}

// Project returns a new place with elem appended. The receiver is not
// modified.
func (p Place) Project(elem ProjectionElem) Place {
	proj := make([]ProjectionElem, 0, len(p.Projection)+1)
	proj = append(proj, p.Projection...)
	proj = append(proj, elem)
	return Place{Var: p.Var, Projection: proj}
}

// Equal reports structural equality of two places.
func (p Place) Equal(o Place) bool {
	if p.Var != o.Var || len(p.Projection) != len(o.Projection) {
		return false
	}
	for i := range p.Projection {
		if p.Projection[i] != o.Projection[i] {
			return false
		}
	}
	return true
}

// ExtendsWith reports whether o is exactly the receiver plus elem, that is
// p ++ [elem] == o. The guard simplifier uses this to recognize the
// overflow-flag and result projections of a checked-operation temporary.
func (p Place) ExtendsWith(elem ProjectionElem, o Place) bool {
	if p.Var != o.Var || len(p.Projection)+1 != len(o.Projection) {
		return false
	}
	for i := range p.Projection {
		if p.Projection[i] != o.Projection[i] {
			return false
		}
	}
	return o.Projection[len(p.Projection)] == elem
}

func (p Place) String() string {
	return FormatPlace(DefaultEnv{}, p)
}

func (e ProjectionElem) String() string {
	switch e.Kind {
	case ProjDeref:
		return "*"
	case ProjDerefBox:
		return "deref_box"
	case ProjField:
		return fmt.Sprintf(".%d", e.Field)
	case ProjDowncast:
		return fmt.Sprintf("as variant @%d", e.Variant)
	}
	return "proj?"
}
