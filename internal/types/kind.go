package types

import "fmt"

// Kind enumerates the C type kinds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindFloat
	KindPointer
	KindArray
	KindStruct
	KindUnion
	KindEnum
	KindBitfield
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindBitfield:
		return "bitfield"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IntKind enumerates the standard and extended integer types.
type IntKind uint8

const (
	IntChar IntKind = iota
	IntShort
	IntInt
	IntLong
	IntLongLong
	// IntInt128 is the extended __int128 type.
	IntInt128
)

func (k IntKind) String() string {
	switch k {
	case IntChar:
		return "char"
	case IntShort:
		return "short"
	case IntInt:
		return "int"
	case IntLong:
		return "long"
	case IntLongLong:
		return "long long"
	case IntInt128:
		return "__int128"
	default:
		return fmt.Sprintf("IntKind(%d)", k)
	}
}

// IsExtended reports whether k is an extended integer type.
func (k IntKind) IsExtended() bool { return k == IntInt128 }

// FloatKind enumerates the real floating types.
type FloatKind uint8

const (
	FloatFloat FloatKind = iota
	FloatDouble
	FloatLongDouble
)

func (k FloatKind) String() string {
	switch k {
	case FloatFloat:
		return "float"
	case FloatDouble:
		return "double"
	case FloatLongDouble:
		return "long double"
	default:
		return fmt.Sprintf("FloatKind(%d)", k)
	}
}
