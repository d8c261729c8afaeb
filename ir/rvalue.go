package ir

// UnOp enumerates unary operators.
type UnOp uint8

const (
	// Not is logical negation.
	Not UnOp = iota
	// Neg is arithmetic negation. It can overflow on the minimum value;
	// the frontend guards it in debug builds, and the semantics here leave
	// the value as-is on overflow.
	Neg
)

func (op UnOp) String() string {
	if op == Not {
		return "~"
	}
	return "-"
}

// BinOp enumerates binary operators.
type BinOp uint8

const (
	BitXor BinOp = iota
	BitAnd
	BitOr
	Eq
	Lt
	Le
	Ne
	Ge
	Gt
	// Div fails on a zero divisor.
	Div
	// Rem fails on a zero divisor.
	Rem
	// Add can overflow.
	Add
	// Sub can overflow.
	Sub
	// Mul can overflow.
	Mul
	// Shl fails on an oversized shift.
	Shl
	// Shr fails on an oversized shift.
	Shr
)

func (op BinOp) String() string {
	switch op {
	case BitXor:
		return "^"
	case BitAnd:
		return "&"
	case BitOr:
		return "|"
	case Eq:
		return "=="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Ne:
		return "!="
	case Ge:
		return ">="
	case Gt:
		return ">"
	case Div:
		return "/"
	case Rem:
		return "%"
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Shl:
		return "<<"
	case Shr:
		return ">>"
	}
	return "op?"
}

// RequiresAssertAfter reports whether the frontend encodes the operator as
// an operation-then-check idiom: the raw op yields a (result, overflowed)
// pair and an assert on the flag follows.
func (op BinOp) RequiresAssertAfter() bool {
	switch op {
	case Add, Sub, Mul, Shl, Shr:
		return true
	}
	return false
}

// RequiresAssertBefore reports whether the frontend encodes the operator
// as a check-then-operation idiom: a zero test on the divisor and an
// assert precede the operation.
func (op BinOp) RequiresAssertBefore() bool {
	return op == Div || op == Rem
}

// CanFail reports whether the operator is fallible and therefore guarded
// by the frontend one way or the other.
func (op BinOp) CanFail() bool {
	return op.RequiresAssertAfter() || op.RequiresAssertBefore()
}

// BorrowKind classifies reference-taking rvalues.
type BorrowKind uint8

const (
	// Shared is an immutable borrow.
	Shared BorrowKind = iota
	// Unique is a mutable borrow.
	Unique
	// TwoPhaseUnique is a mutable borrow that starts shared; it appears
	// around auto-ref'd method receivers.
	TwoPhaseUnique
)

func (k BorrowKind) String() string {
	switch k {
	case Shared:
		return "&"
	case Unique:
		return "&mut "
	case TwoPhaseUnique:
		return "&two-phase-mut "
	}
	return "&?"
}

// AggregateKind says what an Aggregate rvalue builds.
type AggregateKind struct {
	// Tuple aggregates have no ids.
	Tuple bool

	Adt        TypeID
	HasVariant bool
	Variant    VariantID
}

// TupleAggregate is the aggregate kind for tuples.
func TupleAggregate() AggregateKind { return AggregateKind{Tuple: true} }

// AdtAggregate builds a struct value.
func AdtAggregate(id TypeID) AggregateKind { return AggregateKind{Adt: id} }

// VariantAggregate builds an enum variant value.
func VariantAggregate(id TypeID, variant VariantID) AggregateKind {
	return AggregateKind{Adt: id, HasVariant: true, Variant: variant}
}

// Rvalue is a side-effect-free computation producing a value.
type Rvalue interface {
	isRvalue()
}

// Use wraps an operand.
type Use struct {
	Operand Operand
}

// Ref takes a reference to a place.
type Ref struct {
	Place Place
	Kind  BorrowKind
}

// Unary applies a unary operator.
type Unary struct {
	Op      UnOp
	Operand Operand
}

// Binary applies a binary operator. Checked and unchecked operations share
// one node; Checked marks an implicitly fallible operation produced by the
// guard simplifier (the explicit guard has been folded into the node and
// the downstream consumer treats it as able to abort).
type Binary struct {
	Op      BinOp
	Checked bool
	Left    Operand
	Right   Operand
}

// GetDiscriminant reads an enum discriminant. Discriminant values have
// type isize.
type GetDiscriminant struct {
	Place Place
}

// Aggregate builds a tuple or ADT variant value from ordered fields.
// Optimized MIR sometimes decomposes these into per-field writes through
// downcast projections instead; both encodings reach this pipeline.
type Aggregate struct {
	Kind   AggregateKind
	Fields []Operand
}

func (Use) isRvalue()             {}
func (Ref) isRvalue()             {}
func (Unary) isRvalue()           {}
func (Binary) isRvalue()          {}
func (GetDiscriminant) isRvalue() {}
func (Aggregate) isRvalue()       {}
