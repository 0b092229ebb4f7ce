package sysv

import (
	irtypes "github.com/llir/llvm/ir/types"

	"sysvabi/internal/layout"
	"sysvabi/internal/trace"
	"sysvabi/internal/types"
)

// CacheStats counts query cache traffic for one ABI instance.
type CacheStats struct {
	LayoutHits      uint64
	LayoutMisses    uint64
	CanonicalHits   uint64
	CanonicalMisses uint64
}

// ABI is the x86-64 System V calling convention over one type interner.
//
// Size, alignment and canonical-type queries are memoized per TypeID. A cache
// hit always equals recomputation; the caches only save work.
type ABI struct {
	types      *types.Interner
	layout     *layout.LayoutEngine
	classifier *Classifier
	resolver   *Resolver
	tracer     trace.Tracer

	canonical       map[types.TypeID]irtypes.Type
	canonicalHits   uint64
	canonicalMisses uint64
}

// Option configures an ABI.
type Option func(*ABI)

// WithTracer routes per-type decisions to t at debug level.
func WithTracer(t trace.Tracer) Option {
	return func(a *ABI) {
		if t != nil {
			a.tracer = t
		}
	}
}

// New creates the x86-64 System V ABI for types interned in in.
func New(in *types.Interner, opts ...Option) *ABI {
	le := layout.New(layout.X86_64SysV(), in)
	a := &ABI{
		types:      in,
		layout:     le,
		classifier: NewClassifier(le),
		resolver:   &Resolver{Types: in, Layout: le},
		tracer:     trace.Nop,
		canonical:  make(map[types.TypeID]irtypes.Type, 64),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the ABI name.
func (a *ABI) Name() string { return "x86_64" }

// Types returns the interner the ABI reads type descriptors from.
func (a *ABI) Types() *types.Interner { return a.types }

// Layout returns the layout engine backing size and alignment queries.
func (a *ABI) Layout() *layout.LayoutEngine { return a.layout }

// TypeSize returns the size of a type in bytes.
func (a *ABI) TypeSize(id types.TypeID) uint64 { return a.layout.SizeOf(id) }

// TypeAlign returns the alignment of a type in bytes.
func (a *ABI) TypeAlign(id types.TypeID) uint64 { return a.layout.AlignOf(id) }

// StructOffsets resolves member offsets for code generators addressing
// individual fields.
func (a *ABI) StructOffsets(members []types.Member) []uint64 {
	return a.layout.StructOffsets(members)
}

// LongDoubleType is the platform's extended-precision type.
func (a *ABI) LongDoubleType() irtypes.Type { return irtypes.X86_FP80 }

// Classify returns the eightbyte classification of a type. It is not cached:
// only CanonicalType results are.
func (a *ABI) Classify(id types.TypeID) Classification {
	return a.classifier.Classify(id)
}

// CanonicalType returns the representation a function boundary must use for
// values of type id, or nil when the natural representation is correct.
func (a *ABI) CanonicalType(id types.TypeID) irtypes.Type {
	if t, ok := a.canonical[id]; ok {
		a.canonicalHits++
		return t
	}
	a.canonicalMisses++

	var canon irtypes.Type
	if a.resolver.NeedsResolution(id) {
		cls := a.classifier.Classify(id)
		canon = a.resolver.Resolve(id, cls)
		a.traceDecision(id, cls, canon)
	}
	a.canonical[id] = canon
	return canon
}

// Stats reports query cache hits and misses.
func (a *ABI) Stats() CacheStats {
	hits, misses := a.layout.Stats()
	return CacheStats{
		LayoutHits:      hits,
		LayoutMisses:    misses,
		CanonicalHits:   a.canonicalHits,
		CanonicalMisses: a.canonicalMisses,
	}
}

func (a *ABI) traceDecision(id types.TypeID, cls Classification, canon irtypes.Type) {
	if !a.tracer.Enabled() {
		return
	}
	result := "unchanged"
	if canon != nil {
		result = canon.LLString()
	}
	trace.Point(a.tracer, trace.ScopeType, "canonical", a.types.String(id), map[string]string{
		"class":  cls.String(),
		"result": result,
	})
}
