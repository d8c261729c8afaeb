package ullbc

import "github.com/pierrevial/candy-for-charon/ir"

// FieldDecl is one field of a struct or variant.
type FieldDecl struct {
	Name string
	Ty   ir.Ty
}

// VariantDecl is one variant of an enum. The discriminant of variant i is
// i, as an isize.
type VariantDecl struct {
	Name   string
	Fields []FieldDecl
}

// TypeDecl is a struct or enum declaration. Structs have Variants nil and
// use Fields; enums use Variants.
type TypeDecl struct {
	ID       ir.TypeID
	Name     string
	Fields   []FieldDecl   // struct form
	Variants []VariantDecl // enum form
}

// IsEnum reports whether the declaration is an enum.
func (t *TypeDecl) IsEnum() bool { return t.Variants != nil }

// FunDecl is a function declaration. Body is nil for opaque (external)
// functions.
type FunDecl struct {
	ID   ir.FunID
	Name string
	Body *Body
}

// GlobalDecl is a global (static) declaration with its initializer body.
// Body is nil for opaque globals.
type GlobalDecl struct {
	ID   ir.GlobalID
	Name string
	Ty   ir.Ty
	Body *Body
}

// DeclKind says which index space a declaration group lives in.
type DeclKind uint8

const (
	DeclType DeclKind = iota
	DeclFun
	DeclGlobal
)

// DeclGroup is one entry of the already-computed declaration ordering the
// frontend supplies: a single non-recursive declaration, or a strongly
// connected group of mutually recursive ones.
type DeclGroup struct {
	Kind DeclKind
	// IDs holds one id for a non-recursive declaration, several for a
	// mutually recursive group. The ids index the crate's arenas.
	IDs       []uint32
	Recursive bool
}

// Crate is a full translation unit as handed over by the frontend.
type Crate struct {
	Name    string
	Types   []TypeDecl
	Funs    []FunDecl
	Globals []GlobalDecl
	// Ordering is the dependency-ordered list of declaration groups.
	Ordering []DeclGroup
}

// Type returns the type declaration with the given id, or nil.
func (c *Crate) Type(id ir.TypeID) *TypeDecl {
	if int(id) >= len(c.Types) {
		return nil
	}
	return &c.Types[id]
}

// Fun returns the function declaration with the given id, or nil.
func (c *Crate) Fun(id ir.FunID) *FunDecl {
	if int(id) >= len(c.Funs) {
		return nil
	}
	return &c.Funs[id]
}

// Global returns the global declaration with the given id, or nil.
func (c *Crate) Global(id ir.GlobalID) *GlobalDecl {
	if int(id) >= len(c.Globals) {
		return nil
	}
	return &c.Globals[id]
}

// FormatEnv returns a formatting environment backed by the crate's
// declaration tables. The variable table is per-body, so VarName still
// renders raw ids; bodies wrap this env with their locals when printing.
func (c *Crate) FormatEnv() ir.FormatEnv {
	return crateEnv{c}
}

type crateEnv struct {
	crate *Crate
}

func (e crateEnv) VarName(v ir.VarID) string { return ir.DefaultEnv{}.VarName(v) }

func (e crateEnv) TypeName(t ir.TypeID) string {
	if d := e.crate.Type(t); d != nil && d.Name != "" {
		return d.Name
	}
	return ir.DefaultEnv{}.TypeName(t)
}

func (e crateEnv) VariantName(t ir.TypeID, v ir.VariantID) string {
	if d := e.crate.Type(t); d != nil && int(v) < len(d.Variants) {
		return d.Name + "::" + d.Variants[v].Name
	}
	return ir.DefaultEnv{}.VariantName(t, v)
}

func (e crateEnv) FieldName(t ir.TypeID, variant ir.VariantID, hasVariant bool, f ir.FieldID) string {
	d := e.crate.Type(t)
	if d == nil {
		return ir.DefaultEnv{}.FieldName(t, variant, hasVariant, f)
	}
	fields := d.Fields
	if hasVariant && int(variant) < len(d.Variants) {
		fields = d.Variants[variant].Fields
	}
	if int(f) < len(fields) && fields[f].Name != "" {
		return fields[f].Name
	}
	return ir.DefaultEnv{}.FieldName(t, variant, hasVariant, f)
}

func (e crateEnv) FunName(f ir.FunID) string {
	if d := e.crate.Fun(f); d != nil && d.Name != "" {
		return d.Name
	}
	return ir.DefaultEnv{}.FunName(f)
}

func (e crateEnv) GlobalName(g ir.GlobalID) string {
	if d := e.crate.Global(g); d != nil && d.Name != "" {
		return d.Name
	}
	return ir.DefaultEnv{}.GlobalName(g)
}
