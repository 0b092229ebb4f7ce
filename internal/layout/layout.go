package layout

import (
	"sysvabi/internal/types"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  uint64
	Align uint64

	// Struct-only:
	FieldOffsets []uint64
	// Unaligned is set when a member sits away from its naturally rounded
	// offset, directly or inside a nested struct member.
	Unaligned bool
}

// LayoutEngine computes memory layout for types.
//
// Results are memoized per TypeID. The engine is not safe for concurrent use;
// give each goroutine its own engine or synchronize externally.
type LayoutEngine struct {
	Target Target
	Types  *types.Interner

	cache *cache
}

// New creates a new LayoutEngine for the specified target.
func New(target Target, typesIn *types.Interner) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		Types:  typesIn,
		cache:  newCache(),
	}
}

// LayoutOf computes and caches the layout of a type.
//
// Recursion depth equals the nesting depth of the type graph, not its element
// count: an array of a million structs costs one visit of the struct.
func (e *LayoutEngine) LayoutOf(t types.TypeID) TypeLayout {
	if e.cache == nil {
		e.cache = newCache()
	}
	if cached, ok := e.cache.get(t); ok {
		return cached
	}
	l := e.computeLayout(t)
	e.cache.put(t, &l)
	return l
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t types.TypeID) uint64 {
	return e.LayoutOf(t).Size
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t types.TypeID) uint64 {
	return e.LayoutOf(t).Align
}

// FieldOffset returns the byte offset of a struct member.
func (e *LayoutEngine) FieldOffset(structT types.TypeID, fieldIdx int) (uint64, bool) {
	l := e.LayoutOf(structT)
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, false
	}
	return l.FieldOffsets[fieldIdx], true
}

// HasUnalignedFields reports whether any struct member sits at an offset
// different from its naturally rounded one. Non-struct types are aligned by
// definition.
func (e *LayoutEngine) HasUnalignedFields(t types.TypeID) bool {
	return e.LayoutOf(t).Unaligned
}

// StructOffsets resolves the byte offset of every member in order, using the
// same cursor rule as size computation.
func (e *LayoutEngine) StructOffsets(members []types.Member) []uint64 {
	offsets, _ := e.placeMembers(members)
	return offsets
}

// Stats reports cache hits and misses since the engine was created.
func (e *LayoutEngine) Stats() (hits, misses uint64) {
	if e.cache == nil {
		return 0, 0
	}
	return e.cache.hits, e.cache.misses
}
