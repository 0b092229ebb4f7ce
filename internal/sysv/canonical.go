package sysv

import (
	irtypes "github.com/llir/llvm/ir/types"

	"sysvabi/internal/layout"
	"sysvabi/internal/types"
)

// Resolver turns classifications into canonical transport types.
type Resolver struct {
	Types  *types.Interner
	Layout *layout.LayoutEngine
}

// NeedsResolution reports whether a type is eligible for a canonical rewrite
// at all. Only _Complex float and structs are; every other scalar or
// aggregate already has the right natural representation. The
// {pointer, int32} struct is excluded to match reference compilers.
func (r *Resolver) NeedsResolution(id types.TypeID) bool {
	tt := r.Types.MustLookup(id)
	switch tt.Kind {
	case types.KindComplex:
		return tt.Float == types.FloatFloat
	case types.KindStruct:
		return !r.isPointerInt32Pair(id)
	default:
		return false
	}
}

func (r *Resolver) isPointerInt32Pair(id types.TypeID) bool {
	members := r.Types.Members(id)
	if len(members) != 2 {
		return false
	}
	first := r.Types.MustLookup(members[0].Type)
	second := r.Types.MustLookup(members[1].Type)
	return first.Kind == types.KindPointer && second.IsInteger(types.IntInt32)
}

// Resolve returns the canonical type for id given its classification, or nil
// when no transform is needed.
func (r *Resolver) Resolve(id types.TypeID, cls Classification) irtypes.Type {
	if !r.NeedsResolution(id) || cls.IsMemory() {
		return nil
	}
	// Nothing in the low eightbyte, e.g. struct { struct {} pad[8]; double d; }.
	if cls.Low == NoClass {
		return nil
	}

	size := r.Layout.SizeOf(id)

	var low irtypes.Type
	switch cls.Low {
	case Integer:
		low = irtypes.NewInt(min(size, 8) * 8)

	case SSE:
		switch {
		case size <= 4:
			low = irtypes.Float
		case r.firstMemberIsFloat(id):
			low = irtypes.NewVector(2, irtypes.Float)
		default:
			low = irtypes.Double
		}

	case X87:
		// Never split into a pair, whatever landed in the high eightbyte:
		// struct { long double x; int y; } travels as x86_fp80 too.
		return irtypes.X86_FP80

	case ComplexX87:
		// A struct around _Complex long double: natural representation,
		// which the code generator already passes in memory.
		return nil

	default:
		invariant(id, "unexpected class %s for low eightbyte", cls.Low)
	}

	var high irtypes.Type
	switch cls.High {
	case NoClass:
		// No need for a one-element wrapper.
		return low

	case Integer:
		if size <= 8 {
			invariant(id, "INTEGER high eightbyte in a %d-byte type", size)
		}
		high = irtypes.NewInt((size - 8) * 8)

	case SSE:
		switch {
		case size <= 12:
			high = irtypes.Float
		case r.upperMemberIsFloat(id):
			high = irtypes.NewVector(2, irtypes.Float)
		default:
			high = irtypes.Double
		}

	case X87Up:
		// Low was not X87 (that returned above). Not in the written ABI, but
		// gcc passes the upper half of e.g. union { long double r; char b; }
		// as a double.
		high = irtypes.Double

	default:
		invariant(id, "unexpected class %s for high eightbyte", cls.High)
	}

	return irtypes.NewStruct(low, high)
}

func (r *Resolver) firstMemberIsFloat(id types.TypeID) bool {
	members := r.Types.Members(id)
	if len(members) == 0 {
		return false
	}
	return r.Types.MustLookup(members[0].Type).IsFloat(types.FloatFloat)
}

// upperMemberIsFloat inspects the first struct member starting at or after
// byte 8.
func (r *Resolver) upperMemberIsFloat(id types.TypeID) bool {
	members := r.Types.Members(id)
	offsets := r.Layout.StructOffsets(members)
	for i, off := range offsets {
		if off >= 8 {
			return r.Types.MustLookup(members[i].Type).IsFloat(types.FloatFloat)
		}
	}
	return false
}
