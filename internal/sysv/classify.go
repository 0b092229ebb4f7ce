package sysv

import (
	"sysvabi/internal/layout"
	"sysvabi/internal/types"
)

// maxClassifiedSize is four eightbytes; anything larger goes to memory.
const maxClassifiedSize = 32

// Classifier assigns eightbyte classes to types.
type Classifier struct {
	Types  *types.Interner
	Layout *layout.LayoutEngine
}

// NewClassifier creates a classifier sharing the given layout engine.
func NewClassifier(le *layout.LayoutEngine) *Classifier {
	return &Classifier{Types: le.Types, Layout: le}
}

// Classify returns the two-slot classification of a type.
//
// Types over 32 bytes or with unaligned fields are passed in memory without
// further analysis. Otherwise every scalar leaf contributes its class at its
// byte offset; recursion depth follows the nesting of the type.
func (c *Classifier) Classify(id types.TypeID) Classification {
	if c.Layout.SizeOf(id) > maxClassifiedSize || c.Layout.HasUnalignedFields(id) {
		var cls Classification
		cls.AddField(0, Memory)
		return cls
	}

	var cls Classification
	c.classifyType(&cls, id, 0)
	return cls
}

func (c *Classifier) classifyType(cls *Classification, id types.TypeID, offset uint64) {
	tt := c.Types.MustLookup(id)
	switch tt.Kind {
	case types.KindVoid:
		// No storage, no contribution.

	case types.KindInteger, types.KindPointer:
		cls.AddField(offset, Integer)

	case types.KindFloat:
		if tt.Float == types.FloatLongDouble {
			// Spans two eightbytes whatever its meaningful width.
			cls.AddField(offset, X87)
			cls.AddField(offset+8, X87Up)
		} else {
			cls.AddField(offset, SSE)
		}

	case types.KindComplex:
		switch tt.Float {
		case types.FloatFloat:
			cls.AddField(offset, SSE)
			cls.AddField(offset+4, SSE)
		case types.FloatDouble:
			cls.AddField(offset, SSE)
			cls.AddField(offset+8, SSE)
		case types.FloatLongDouble:
			// Mark both halves so either one forces the COMPLEX_X87 treatment.
			cls.AddField(offset, ComplexX87)
			cls.AddField(offset+16, ComplexX87)
		case types.FloatFloat128:
			// Contributes nothing; reference compilers never classified it.
		default:
			invariant(id, "unknown complex component kind %s", tt.Float)
		}

	case types.KindArray:
		elemSize := c.Layout.SizeOf(tt.Elem)
		if elemSize == 0 && tt.Count > 0 {
			// Zero-sized elements all land on the same offset and Merge is
			// idempotent, so one visit covers any count.
			c.classifyType(cls, tt.Elem, offset)
			return
		}
		for i := uint64(0); i < tt.Count; i++ {
			c.classifyType(cls, tt.Elem, offset+i*elemSize)
		}

	case types.KindStruct:
		members := c.Types.Members(id)
		offsets := c.Layout.StructOffsets(members)
		for i, m := range members {
			c.classifyType(cls, m.Type, offset+offsets[i])
		}

	default:
		invariant(id, "unknown type kind %s", tt.Kind)
	}
}
