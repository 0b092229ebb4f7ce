package llvm

import (
	"fmt"

	irtypes "github.com/llir/llvm/ir/types"

	"sysvabi/internal/layout"
	"sysvabi/internal/types"
)

// NaturalType maps a type to the IR type values of it have before any
// calling-convention rewrite.
//
// Structs become literal structs whose IR layout matches the layout engine
// byte for byte. When LLVM's own placement would differ (explicit member
// offsets, 16-byte aligned arrays) the struct is packed and gaps are filled
// with [N x i8].
func NaturalType(le *layout.LayoutEngine, id types.TypeID) (irtypes.Type, error) {
	tt, ok := le.Types.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("unknown type id %d", id)
	}
	switch tt.Kind {
	case types.KindVoid:
		return irtypes.Void, nil
	case types.KindPointer:
		return irtypes.I8Ptr, nil
	case types.KindInteger:
		if tt.Int == types.IntBool {
			// In-memory width; i1 only exists in registers.
			return irtypes.I8, nil
		}
		return irtypes.NewInt(le.SizeOf(id) * 8), nil
	case types.KindFloat:
		return floatType(tt.Float)
	case types.KindComplex:
		part, err := floatType(tt.Float)
		if err != nil {
			return nil, err
		}
		return irtypes.NewStruct(part, part), nil
	case types.KindArray:
		elem, err := storableType(le, tt.Elem)
		if err != nil {
			return nil, err
		}
		return irtypes.NewArray(tt.Count, elem), nil
	case types.KindStruct:
		return structType(le, id)
	default:
		return nil, fmt.Errorf("unsupported type kind %s", tt.Kind)
	}
}

// storableType is NaturalType with void turned into a zero-sized byte array,
// for positions where void cannot appear in IR.
func storableType(le *layout.LayoutEngine, id types.TypeID) (irtypes.Type, error) {
	ty, err := NaturalType(le, id)
	if err != nil {
		return nil, err
	}
	if _, ok := ty.(*irtypes.VoidType); ok {
		return padding(0), nil
	}
	return ty, nil
}

func floatType(kind types.FloatKind) (irtypes.Type, error) {
	switch kind {
	case types.FloatFloat:
		return irtypes.Float, nil
	case types.FloatDouble:
		return irtypes.Double, nil
	case types.FloatLongDouble:
		return irtypes.X86_FP80, nil
	case types.FloatFloat128:
		return irtypes.FP128, nil
	default:
		return nil, fmt.Errorf("unsupported float kind %s", kind)
	}
}

func structType(le *layout.LayoutEngine, id types.TypeID) (irtypes.Type, error) {
	st, _, err := structFields(le, id)
	return st, err
}

// structFields builds the natural struct type of id. memberOf maps every IR
// field to the index of the member it holds, or -1 for padding.
func structFields(le *layout.LayoutEngine, id types.TypeID) (*irtypes.StructType, []int, error) {
	members := le.Types.Members(id)
	lay := le.LayoutOf(id)

	fields := make([]irtypes.Type, 0, len(members))
	memberOf := make([]int, 0, len(members))
	offsets := make([]uint64, 0, len(members))
	sizes := make([]uint64, 0, len(members))
	for i, m := range members {
		size := le.SizeOf(m.Type)
		if size == 0 {
			continue
		}
		ft, err := storableType(le, m.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("member %d: %w", i, err)
		}
		fields = append(fields, ft)
		memberOf = append(memberOf, i)
		offsets = append(offsets, lay.FieldOffsets[i])
		sizes = append(sizes, size)
	}

	if len(fields) > 0 && naturalOffsetsMatch(fields, offsets) {
		if st := irtypes.NewStruct(fields...); AllocSize(st) == lay.Size {
			return st, memberOf, nil
		}
	}

	packed := make([]irtypes.Type, 0, 2*len(fields)+1)
	packedOf := make([]int, 0, 2*len(fields)+1)
	var cursor uint64
	for i, f := range fields {
		if offsets[i] > cursor {
			packed = append(packed, padding(offsets[i]-cursor))
			packedOf = append(packedOf, -1)
		}
		packed = append(packed, f)
		packedOf = append(packedOf, memberOf[i])
		cursor = offsets[i] + sizes[i]
	}
	if lay.Size > cursor {
		packed = append(packed, padding(lay.Size-cursor))
		packedOf = append(packedOf, -1)
	}
	st := irtypes.NewStruct(packed...)
	st.Packed = true
	return st, packedOf, nil
}

func naturalOffsetsMatch(fields []irtypes.Type, offsets []uint64) bool {
	var cursor uint64
	for i, f := range fields {
		cursor = roundUp(cursor, ABIAlign(f))
		if cursor != offsets[i] {
			return false
		}
		cursor += AllocSize(f)
	}
	return true
}

func padding(n uint64) irtypes.Type {
	return irtypes.NewArray(n, irtypes.I8)
}

// AllocSize returns the bytes an alloca or array element of t occupies
// under the x86-64 data layout.
func AllocSize(t irtypes.Type) uint64 {
	size, align := sizeAlign(t)
	return roundUp(size, align)
}

// ABIAlign returns the ABI alignment of t under the x86-64 data layout.
func ABIAlign(t irtypes.Type) uint64 {
	_, align := sizeAlign(t)
	return align
}

func sizeAlign(t irtypes.Type) (size, align uint64) {
	switch t := t.(type) {
	case *irtypes.VoidType:
		return 0, 1
	case *irtypes.IntType:
		bytes := (t.BitSize + 7) / 8
		align = min(nextPow2(bytes), 16)
		return bytes, align
	case *irtypes.FloatType:
		switch t.Kind {
		case irtypes.FloatKindHalf:
			return 2, 2
		case irtypes.FloatKindFloat:
			return 4, 4
		case irtypes.FloatKindDouble:
			return 8, 8
		default:
			// x86_fp80 stores 10 bytes but allocates 16; fp128 is 16 too.
			return 16, 16
		}
	case *irtypes.PointerType:
		return 8, 8
	case *irtypes.VectorType:
		size = t.Len * AllocSize(t.ElemType)
		return size, nextPow2(size)
	case *irtypes.ArrayType:
		return t.Len * AllocSize(t.ElemType), ABIAlign(t.ElemType)
	case *irtypes.StructType:
		align = 1
		for _, f := range t.Fields {
			fa := ABIAlign(f)
			if t.Packed {
				fa = 1
			}
			size = roundUp(size, fa) + AllocSize(f)
			align = max(align, fa)
		}
		return size, align
	default:
		return 8, 8
	}
}

func roundUp(n, align uint64) uint64 {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

func nextPow2(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}
