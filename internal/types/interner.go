package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the scalar types.
type Builtins struct {
	Void    TypeID
	Pointer TypeID

	Bool     TypeID
	Char     TypeID
	Int8     TypeID
	Short    TypeID
	Int16    TypeID
	Int      TypeID
	Int32    TypeID
	Long     TypeID
	SizeT    TypeID
	PtrDiffT TypeID
	LongLong TypeID
	Int64    TypeID
	Int128   TypeID

	Float      TypeID
	Double     TypeID
	LongDouble TypeID
	Float128   TypeID

	ComplexFloat      TypeID
	ComplexDouble     TypeID
	ComplexLongDouble TypeID
	ComplexFloat128   TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
//
// A TypeID stays valid for the lifetime of the interner and is the identity
// every derived-data cache keys on. The interner is not safe for concurrent
// mutation.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
	structs  []StructInfo
	shapes   map[string]TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:  make(map[Type]TypeID, 64),
		shapes: make(map[string]TypeID, 16),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.types = append(in.types, Type{Kind: KindInvalid})

	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Pointer = in.Intern(MakePointer())

	in.builtins.Bool = in.Intern(MakeInt(IntBool))
	in.builtins.Char = in.Intern(MakeInt(IntChar))
	in.builtins.Int8 = in.Intern(MakeInt(IntInt8))
	in.builtins.Short = in.Intern(MakeInt(IntShort))
	in.builtins.Int16 = in.Intern(MakeInt(IntInt16))
	in.builtins.Int = in.Intern(MakeInt(IntInt))
	in.builtins.Int32 = in.Intern(MakeInt(IntInt32))
	in.builtins.Long = in.Intern(MakeInt(IntLong))
	in.builtins.SizeT = in.Intern(MakeInt(IntSizeT))
	in.builtins.PtrDiffT = in.Intern(MakeInt(IntPtrDiffT))
	in.builtins.LongLong = in.Intern(MakeInt(IntLongLong))
	in.builtins.Int64 = in.Intern(MakeInt(IntInt64))
	in.builtins.Int128 = in.Intern(MakeInt(IntInt128))

	in.builtins.Float = in.Intern(MakeFloat(FloatFloat))
	in.builtins.Double = in.Intern(MakeFloat(FloatDouble))
	in.builtins.LongDouble = in.Intern(MakeFloat(FloatLongDouble))
	in.builtins.Float128 = in.Intern(MakeFloat(FloatFloat128))

	in.builtins.ComplexFloat = in.Intern(MakeComplex(FloatFloat))
	in.builtins.ComplexDouble = in.Intern(MakeComplex(FloatDouble))
	in.builtins.ComplexLongDouble = in.Intern(MakeComplex(FloatLongDouble))
	in.builtins.ComplexFloat128 = in.Intern(MakeComplex(FloatFloat128))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Len reports how many TypeIDs have been handed out, including the reserved
// invalid slot.
func (in *Interner) Len() int {
	return len(in.types)
}

// Intern ensures the provided descriptor has a stable TypeID.
//
// Struct descriptors carry an interner-private payload and must be created
// with Struct instead.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if t.Kind == KindStruct && (t.Payload == 0 || int(t.Payload) >= len(in.structs)) {
		panic("types: struct descriptors must be interned with Interner.Struct")
	}
	if t.Kind == KindArray {
		if _, ok := in.Lookup(t.Elem); !ok {
			panic(fmt.Errorf("types: array element type#%d is not interned", t.Elem))
		}
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// Array interns a fixed-size array of count elements.
func (in *Interner) Array(elem TypeID, count uint64) TypeID {
	return in.Intern(MakeArray(elem, count))
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Errorf("types: invalid TypeID %d", id))
	}
	return tt
}
