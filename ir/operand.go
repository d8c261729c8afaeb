package ir

import "fmt"

// ConstValue is the payload of a constant operand.
type ConstValue interface {
	isConstValue()
	String() string
}

// ConstScalar is an integer literal.
type ConstScalar struct {
	Value ScalarValue
}

// ConstBool is a boolean literal.
type ConstBool struct {
	Value bool
}

// ConstChar is a character literal.
type ConstChar struct {
	Value rune
}

// ConstStr is a string literal.
type ConstStr struct {
	Value string
}

// ConstAdt is the degenerate aggregate constant: an enum with a single
// field-less variant, or a struct with no fields.
type ConstAdt struct {
	ID TypeID
}

// ConstUnit is the unit value. MIR encodes unit as a 0-tuple.
type ConstUnit struct{}

func (ConstScalar) isConstValue() {}
func (ConstBool) isConstValue()   {}
func (ConstChar) isConstValue()   {}
func (ConstStr) isConstValue()    {}
func (ConstAdt) isConstValue()    {}
func (ConstUnit) isConstValue()   {}

func (c ConstScalar) String() string { return c.Value.String() }
func (c ConstBool) String() string   { return fmt.Sprintf("%v", c.Value) }
func (c ConstChar) String() string   { return fmt.Sprintf("%q", c.Value) }
func (c ConstStr) String() string    { return fmt.Sprintf("%q", c.Value) }
func (c ConstAdt) String() string    { return fmt.Sprintf("ConstAdt @%d", c.ID) }
func (ConstUnit) String() string     { return "()" }

// Operand is the only way rvalues and terminators reference data: a
// non-consuming read, a consuming read, or a literal.
type Operand interface {
	isOperand()
}

// Copy reads a place without consuming it.
type Copy struct {
	Place Place
}

// Move reads and consumes a place.
type Move struct {
	Place Place
}

// Const is a literal value with its type annotation.
type Const struct {
	Ty    Ty
	Value ConstValue
}

func (Copy) isOperand()  {}
func (Move) isOperand()  {}
func (Const) isOperand() {}

// OperandEqual reports structural equality of two operands.
func OperandEqual(a, b Operand) bool {
	switch a := a.(type) {
	case Copy:
		b, ok := b.(Copy)
		return ok && a.Place.Equal(b.Place)
	case Move:
		b, ok := b.(Move)
		return ok && a.Place.Equal(b.Place)
	case Const:
		b, ok := b.(Const)
		if !ok {
			return false
		}
		return constEqual(a.Value, b.Value)
	}
	return false
}

func constEqual(a, b ConstValue) bool {
	switch a := a.(type) {
	case ConstScalar:
		b, ok := b.(ConstScalar)
		return ok && a.Value.Equal(b.Value)
	case ConstBool:
		b, ok := b.(ConstBool)
		return ok && a.Value == b.Value
	case ConstChar:
		b, ok := b.(ConstChar)
		return ok && a.Value == b.Value
	case ConstStr:
		b, ok := b.(ConstStr)
		return ok && a.Value == b.Value
	case ConstAdt:
		b, ok := b.(ConstAdt)
		return ok && a.ID == b.ID
	case ConstUnit:
		_, ok := b.(ConstUnit)
		return ok
	}
	return false
}
