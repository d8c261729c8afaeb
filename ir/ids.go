package ir

// Typed index spaces. Each id addresses an arena owned by the enclosing
// declaration or crate; the value is the insertion index.
type (
	// VarID identifies a local variable within a function body.
	VarID uint32
	// BlockID identifies a basic block within an unstructured body.
	BlockID uint32
	// TypeID identifies a type declaration within a crate.
	TypeID uint32
	// FunID identifies a function declaration within a crate.
	FunID uint32
	// GlobalID identifies a global (static) declaration within a crate.
	GlobalID uint32
	// VariantID identifies a variant within an enum declaration.
	VariantID uint32
	// FieldID identifies a field within a struct or variant.
	FieldID uint32
)

// EntryBlock is the entry block of every function body.
const EntryBlock BlockID = 0

// Generator hands out fresh sequential ids within one index space.
// Zero value is ready to use. Pass by pointer into each construction
// step that needs fresh ids.
type Generator[ID ~uint32] struct {
	next ID
}

// Fresh returns the next unused id.
func (g *Generator[ID]) Fresh() ID {
	id := g.next
	g.next++
	return id
}

// Count returns how many ids have been handed out.
func (g *Generator[ID]) Count() int {
	return int(g.next)
}
