package ir

import (
	"fmt"
	"strings"
)

// IntegerTy enumerates the integer types scalars can carry.
type IntegerTy uint8

const (
	Isize IntegerTy = iota
	I8
	I16
	I32
	I64
	I128
	Usize
	U8
	U16
	U32
	U64
	U128
)

// IsSigned returns true for the signed integer types.
func (t IntegerTy) IsSigned() bool {
	return t <= I128
}

// Bits returns the bit width of the type. Isize and Usize are treated as
// 64-bit, matching the frontend's target assumption.
func (t IntegerTy) Bits() uint {
	switch t {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32:
		return 32
	case Isize, I64, Usize, U64:
		return 64
	case I128, U128:
		return 128
	}
	return 0
}

func (t IntegerTy) String() string {
	switch t {
	case Isize:
		return "isize"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case I128:
		return "i128"
	case Usize:
		return "usize"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case U128:
		return "u128"
	}
	return fmt.Sprintf("int?%d", uint8(t))
}

// Ty is a type annotation attached by the frontend to places, operands and
// locals. The pipeline never type checks; annotations are carried for
// printing and for the downstream consumer.
type Ty interface {
	isTy()
	String() string
}

// TyBool is the boolean type.
type TyBool struct{}

// TyChar is the character type.
type TyChar struct{}

// TyStr is the string slice type.
type TyStr struct{}

// TyInt is an integer type.
type TyInt struct {
	Int IntegerTy
}

// TyUnit is the 0-tuple.
type TyUnit struct{}

// TyTuple is a tuple of two or more element types.
type TyTuple struct {
	Elems []Ty
}

// TyAdt references a declared struct or enum, with its type arguments.
type TyAdt struct {
	ID   TypeID
	Args []Ty
}

// TyRef is a shared or unique reference.
type TyRef struct {
	Pointee Ty
	Mutable bool
}

// TyBox is an owning box.
type TyBox struct {
	Pointee Ty
}

func (TyBool) isTy()  {}
func (TyChar) isTy()  {}
func (TyStr) isTy()   {}
func (TyInt) isTy()   {}
func (TyUnit) isTy()  {}
func (TyTuple) isTy() {}
func (TyAdt) isTy()   {}
func (TyRef) isTy()   {}
func (TyBox) isTy()   {}

func (TyBool) String() string { return "bool" }
func (TyChar) String() string { return "char" }
func (TyStr) String() string  { return "str" }
func (t TyInt) String() string {
	return t.Int.String()
}
func (TyUnit) String() string { return "()" }

func (t TyTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t TyAdt) String() string {
	if len(t.Args) == 0 {
		return fmt.Sprintf("@adt%d", t.ID)
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("@adt%d<%s>", t.ID, strings.Join(parts, ", "))
}

func (t TyRef) String() string {
	if t.Mutable {
		return "&mut " + t.Pointee.String()
	}
	return "&" + t.Pointee.String()
}

func (t TyBox) String() string {
	return "Box<" + t.Pointee.String() + ">"
}

// ErasedRegion is the opaque region marker carried by call terminators.
// No behavior in the pipeline depends on it; it exists so the downstream
// consumer can line arguments up with the frontend's signature.
type ErasedRegion struct{}
