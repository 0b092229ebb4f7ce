package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindPointer
	KindInteger
	KindFloat
	KindComplex
	KindStruct
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindPointer:
		return "pointer"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindComplex:
		return "complex"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IntKind names a C integer type. Signedness does not affect layout and is
// not recorded.
type IntKind uint8

const (
	IntInvalid IntKind = iota
	IntBool
	IntChar
	IntInt8
	IntShort
	IntInt16
	IntInt
	IntInt32
	IntLong
	IntSizeT
	IntPtrDiffT
	IntLongLong
	IntInt64
	IntInt128
)

func (k IntKind) String() string {
	switch k {
	case IntBool:
		return "bool"
	case IntChar:
		return "char"
	case IntInt8:
		return "int8"
	case IntShort:
		return "short"
	case IntInt16:
		return "int16"
	case IntInt:
		return "int"
	case IntInt32:
		return "int32"
	case IntLong:
		return "long"
	case IntSizeT:
		return "size_t"
	case IntPtrDiffT:
		return "ptrdiff_t"
	case IntLongLong:
		return "long long"
	case IntInt64:
		return "int64"
	case IntInt128:
		return "int128"
	default:
		return fmt.Sprintf("IntKind(%d)", k)
	}
}

// FloatKind names a floating-point format. Complex types reuse it for their
// component.
type FloatKind uint8

const (
	FloatInvalid FloatKind = iota
	FloatFloat
	FloatDouble
	FloatLongDouble // x87 extended, 10 meaningful bytes in a 16-byte slot
	FloatFloat128
)

func (k FloatKind) String() string {
	switch k {
	case FloatFloat:
		return "float"
	case FloatDouble:
		return "double"
	case FloatLongDouble:
		return "long double"
	case FloatFloat128:
		return "_Float128"
	default:
		return fmt.Sprintf("FloatKind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Int     IntKind   // for integers
	Float   FloatKind // for floating-point and complex types
	Elem    TypeID    // for arrays
	Count   uint64    // for arrays
	Payload uint32    // struct member slot
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes an integer of the given kind.
func MakeInt(kind IntKind) Type {
	return Type{Kind: KindInteger, Int: kind}
}

// MakeFloat describes a floating-point type.
func MakeFloat(kind FloatKind) Type {
	return Type{Kind: KindFloat, Float: kind}
}

// MakeComplex describes a complex type whose real and imaginary parts are of
// the given kind.
func MakeComplex(kind FloatKind) Type {
	return Type{Kind: KindComplex, Float: kind}
}

// MakeArray describes a fixed array of count elements.
func MakeArray(elem TypeID, count uint64) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakePointer describes an untyped data or function pointer.
func MakePointer() Type {
	return Type{Kind: KindPointer}
}

// IsInteger reports whether the type is an integer of the given kind.
func (t Type) IsInteger(kind IntKind) bool {
	return t.Kind == KindInteger && t.Int == kind
}

// IsFloat reports whether the type is a floating-point type of the given kind.
func (t Type) IsFloat(kind FloatKind) bool {
	return t.Kind == KindFloat && t.Float == kind
}
