package sysv

import (
	irtypes "github.com/llir/llvm/ir/types"

	"sysvabi/internal/types"
)

// Builder is the part of a code generator the value transcoder drives.
// V is the generator's value handle; slots are values too.
type Builder[V any] interface {
	// EntryAlloca reserves a stack slot of type t backed by at least size
	// bytes and aligned to at least align.
	EntryAlloca(t irtypes.Type, size, align uint64) V
	// Store writes val into slot.
	Store(val, slot V)
	// Memcpy copies size bytes from src to dst.
	Memcpy(dst, src V, size uint64)
	// Load reads a value of type t from slot.
	Load(t irtypes.Type, slot V) V
	// TypeOf reports the IR type of a value.
	TypeOf(val V) irtypes.Type
}

// EncodeValues rewrites values from their natural representation into the
// canonical one, in place. Values whose type needs no transform are left
// untouched. The conversion is a byte copy through memory, never a semantic
// conversion.
func EncodeValues[V any](a *ABI, b Builder[V], values []V, argTypes []types.TypeID) {
	if len(values) != len(argTypes) {
		invariant(types.NoTypeID, "encode: %d values for %d types", len(values), len(argTypes))
	}
	for i, argType := range argTypes {
		canon := a.CanonicalType(argType)
		if canon == nil {
			continue
		}
		values[i] = transcode(a, b, values[i], argType, canon)
	}
}

// DecodeValues is the inverse of EncodeValues: it rewrites canonical values
// back into the natural IR types given in naturalTypes.
func DecodeValues[V any](a *ABI, b Builder[V], values []V, argTypes []types.TypeID, naturalTypes []irtypes.Type) {
	if len(values) != len(argTypes) || len(naturalTypes) != len(argTypes) {
		invariant(types.NoTypeID, "decode: %d values and %d natural types for %d types", len(values), len(naturalTypes), len(argTypes))
	}
	for i, argType := range argTypes {
		if a.CanonicalType(argType) == nil {
			continue
		}
		if naturalTypes[i] == nil {
			invariant(argType, "decode: missing natural type for value %d", i)
		}
		values[i] = transcode(a, b, values[i], argType, naturalTypes[i])
	}
}

// transcode stores val, copies size(T) bytes into a slot of type dst, and
// loads the result. Both slots hold at least size(T) bytes: a canonical type
// can be smaller than T (a 24-byte struct of doubles travels as
// { double, double }), in which case the bytes past it do not survive.
func transcode[V any](a *ABI, b Builder[V], val V, argType types.TypeID, dst irtypes.Type) V {
	size := a.TypeSize(argType)
	align := a.TypeAlign(argType)

	srcSlot := b.EntryAlloca(b.TypeOf(val), size, align)
	dstSlot := b.EntryAlloca(dst, size, align)
	b.Store(val, srcSlot)
	b.Memcpy(dstSlot, srcSlot, size)
	return b.Load(dst, dstSlot)
}
