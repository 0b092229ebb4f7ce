package layout

import (
	"math/bits"

	"sysvabi/internal/types"
)

func (e *LayoutEngine) computeLayout(id types.TypeID) TypeLayout {
	tt, ok := e.Types.Lookup(id)
	if !ok {
		violate(ContractUnknownType, id)
	}

	switch tt.Kind {
	case types.KindVoid:
		// void has no storage; it only appears as a return type.
		return TypeLayout{Size: 0, Align: 1}

	case types.KindPointer:
		return e.ptrLayout()

	case types.KindInteger:
		return scalarLayoutBytes(intSize(id, tt.Int))

	case types.KindFloat:
		return scalarLayoutBytes(floatSize(id, tt.Float))

	case types.KindComplex:
		return scalarLayoutBytes(2 * floatSize(id, tt.Float))

	case types.KindArray:
		return e.arrayLayout(id, tt.Elem, tt.Count)

	case types.KindStruct:
		return e.structLayout(id)

	default:
		violate(ContractUnknownKind, id)
	}
	panic("unreachable")
}

func intSize(id types.TypeID, kind types.IntKind) uint64 {
	switch kind {
	case types.IntBool, types.IntChar, types.IntInt8:
		return 1
	case types.IntShort, types.IntInt16:
		return 2
	case types.IntInt, types.IntInt32:
		return 4
	case types.IntLong, types.IntSizeT, types.IntPtrDiffT, types.IntLongLong, types.IntInt64:
		return 8
	case types.IntInt128:
		return 16
	default:
		violate(ContractUnknownIntKind, id)
	}
	panic("unreachable")
}

func floatSize(id types.TypeID, kind types.FloatKind) uint64 {
	switch kind {
	case types.FloatFloat:
		return 4
	case types.FloatDouble:
		return 8
	case types.FloatLongDouble, types.FloatFloat128:
		return 16
	default:
		violate(ContractUnknownFloatKind, id)
	}
	panic("unreachable")
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize == 0 {
		ptrSize = 8
	}
	if ptrAlign == 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func scalarLayoutBytes(size uint64) TypeLayout {
	return TypeLayout{Size: size, Align: size}
}

func isPowerOf2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

func roundUp(n, align uint64) uint64 {
	if !isPowerOf2(align) {
		panic(&ContractError{Kind: ContractBadAlign, Value: align})
	}
	return (n + align - 1) &^ (align - 1)
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// arrayLayout: size is elemSize*count with no extra stride rounding; arrays
// of 16 bytes or more are raised to 16-byte alignment.
func (e *LayoutEngine) arrayLayout(id, elem types.TypeID, count uint64) TypeLayout {
	el := e.LayoutOf(elem)
	hi, size := bits.Mul64(el.Size, count)
	if hi != 0 {
		violate(ContractSizeOverflow, id)
	}
	minAlign := uint64(1)
	if size >= 16 {
		minAlign = 16
	}
	return TypeLayout{
		Size:  size,
		Align: maxU64(el.Align, minAlign),
	}
}

func (e *LayoutEngine) structLayout(id types.TypeID) TypeLayout {
	members := e.Types.Members(id)
	align := uint64(1)
	for _, m := range members {
		align = maxU64(align, e.AlignOf(m.Type))
	}
	if len(members) == 0 {
		// An empty struct's size is its own alignment, not 0.
		return TypeLayout{Size: align, Align: align}
	}

	offsets, end := e.placeMembers(members)
	return TypeLayout{
		Size:         roundUp(end, align),
		Align:        align,
		FieldOffsets: offsets,
		Unaligned:    e.unalignedMembers(members),
	}
}

// placeMembers folds members left to right. An explicit offset below the
// running cursor is ignored and the cursor is rounded to the member's
// alignment instead; otherwise the cursor jumps to the explicit offset.
func (e *LayoutEngine) placeMembers(members []types.Member) ([]uint64, uint64) {
	offsets := make([]uint64, 0, len(members))
	cursor := uint64(0)
	for _, m := range members {
		ml := e.LayoutOf(m.Type)
		if explicit := m.Offset.Value(); explicit < cursor {
			cursor = roundUp(cursor, ml.Align)
		} else {
			cursor = explicit
		}
		offsets = append(offsets, cursor)
		cursor += ml.Size
	}
	return offsets, cursor
}

// unalignedMembers tracks the natural offset only. An explicit offset of 0
// counts as "no override".
func (e *LayoutEngine) unalignedMembers(members []types.Member) bool {
	offset := uint64(0)
	for _, m := range members {
		ml := e.LayoutOf(m.Type)
		offset = roundUp(offset, ml.Align)

		memberOffset := offset
		if explicit := m.Offset.Value(); explicit != 0 {
			memberOffset = explicit
		}
		if memberOffset != offset || ml.Unaligned {
			return true
		}
		offset += ml.Size
	}
	return false
}
