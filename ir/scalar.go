package ir

import (
	"fmt"

	"github.com/holiman/uint256"
)

// ScalarValue is a typed integer constant. The frontend hands over values
// up to 128 bits wide, so the bits live in a 256-bit word using two's
// complement for the signed types (sign-extended to the full word).
type ScalarValue struct {
	Ty   IntegerTy
	Bits uint256.Int
}

// ScalarFromUint builds an unsigned scalar.
func ScalarFromUint(ty IntegerTy, v uint64) ScalarValue {
	var s ScalarValue
	s.Ty = ty
	s.Bits.SetUint64(v)
	return s
}

// ScalarFromInt builds a signed scalar, sign-extending negative values.
func ScalarFromInt(ty IntegerTy, v int64) ScalarValue {
	var s ScalarValue
	s.Ty = ty
	if v >= 0 {
		s.Bits.SetUint64(uint64(v))
		return s
	}
	s.Bits.SetUint64(uint64(-v))
	s.Bits.Neg(&s.Bits)
	return s
}

// IsZero reports whether the value is zero. Zero has the same encoding
// under both signednesses.
func (s ScalarValue) IsZero() bool {
	return s.Bits.IsZero()
}

// Equal reports value equality, type included.
func (s ScalarValue) Equal(o ScalarValue) bool {
	return s.Ty == o.Ty && s.Bits.Eq(&o.Bits)
}

func (s ScalarValue) String() string {
	if s.Ty.IsSigned() && s.Bits.Sign() < 0 {
		var mag uint256.Int
		mag.Neg(&s.Bits)
		return fmt.Sprintf("-%s: %s", mag.Dec(), s.Ty)
	}
	return fmt.Sprintf("%s: %s", s.Bits.Dec(), s.Ty)
}
