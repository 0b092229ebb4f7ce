package sysv_test

import (
	"bytes"
	"testing"

	irtypes "github.com/llir/llvm/ir/types"

	"sysvabi/internal/backend/llvm"
	"sysvabi/internal/sysv"
	"sysvabi/internal/types"
)

// cell is a value or a stack slot in the byte-level simulator.
type cell struct {
	typ   irtypes.Type
	bytes []byte
}

// memBuilder executes transcoder operations on plain byte slices.
type memBuilder struct {
	t       *testing.T
	allocas int
	copies  int
}

func (m *memBuilder) EntryAlloca(t irtypes.Type, size, align uint64) *cell {
	m.allocas++
	if align == 0 || align&(align-1) != 0 {
		m.t.Fatalf("alloca alignment %d is not a power of two", align)
	}
	return &cell{typ: irtypes.NewPointer(t), bytes: make([]byte, max(size, llvm.AllocSize(t)))}
}

func (m *memBuilder) Store(val, slot *cell) {
	if len(val.bytes) > len(slot.bytes) {
		m.t.Fatalf("store of %d bytes into %d-byte slot", len(val.bytes), len(slot.bytes))
	}
	copy(slot.bytes, val.bytes)
}

func (m *memBuilder) Memcpy(dst, src *cell, size uint64) {
	m.copies++
	if size > uint64(len(dst.bytes)) || size > uint64(len(src.bytes)) {
		m.t.Fatalf("memcpy of %d bytes between %d- and %d-byte slots", size, len(dst.bytes), len(src.bytes))
	}
	copy(dst.bytes[:size], src.bytes[:size])
}

func (m *memBuilder) Load(t irtypes.Type, slot *cell) *cell {
	n := llvm.AllocSize(t)
	if n > uint64(len(slot.bytes)) {
		m.t.Fatalf("load of %d bytes from %d-byte slot", n, len(slot.bytes))
	}
	return &cell{typ: t, bytes: bytes.Clone(slot.bytes[:n])}
}

func (m *memBuilder) TypeOf(val *cell) irtypes.Type { return val.typ }

func naturalValue(t *testing.T, abi *sysv.ABI, id types.TypeID, seed byte) *cell {
	t.Helper()
	nt, err := llvm.NaturalType(abi.Layout(), id)
	if err != nil {
		t.Fatalf("natural type of %s: %v", abi.Types().String(id), err)
	}
	buf := make([]byte, llvm.AllocSize(nt))
	for i := range buf {
		buf[i] = seed + byte(i)*7
	}
	return &cell{typ: nt, bytes: buf}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	abi, in, b := newABI()
	ids := []types.TypeID{
		b.Int32,
		b.ComplexFloat,
		in.Struct(types.Field(b.Int64), types.Field(b.Int32)),
		in.Struct(types.Field(b.Char), types.Field(b.Char), types.Field(b.Char)),
		in.Struct(types.Field(b.Float), types.Field(b.Float)),
		in.Struct(types.Field(b.Float), types.Field(b.Float), types.Field(b.Float)),
		in.Struct(types.Field(b.Double), types.Field(b.Float), types.Field(b.Float)),
		in.Struct(types.Field(b.Double), types.Field(b.Double)),
		in.Struct(types.Field(b.LongDouble)),
		in.Struct(types.Field(b.Short), types.Field(b.Double)),
		in.Struct(types.Field(b.Pointer), types.Field(b.Int32)),
		in.Struct(types.Field(in.Array(b.Int64, 5))),
		in.Struct(types.Field(b.Double), types.Field(b.Double), types.Field(b.Double)),
		in.Struct(types.Field(b.Int64), types.Field(b.Double), types.Field(b.Double)),
		in.Struct(types.Field(b.LongDouble), types.Field(b.Int32)),
	}

	for i, id := range ids {
		mb := &memBuilder{t: t}
		orig := naturalValue(t, abi, id, byte(i))
		values := []*cell{orig}
		argTypes := []types.TypeID{id}

		sysv.EncodeValues(abi, mb, values, argTypes)
		canon := abi.CanonicalType(id)
		if canon == nil {
			if values[0] != orig || mb.allocas != 0 {
				t.Fatalf("%s: value without canonical type was touched", in.String(id))
			}
			continue
		}
		if !values[0].typ.Equal(canon) {
			t.Fatalf("%s: encoded as %s, want %s", in.String(id), values[0].typ.LLString(), canon.LLString())
		}

		sysv.DecodeValues(abi, mb, values, argTypes, []irtypes.Type{orig.typ})
		size := abi.TypeSize(id)
		// Bytes past the canonical type are not carried.
		kept := min(size, llvm.AllocSize(canon))
		if !bytes.Equal(values[0].bytes[:kept], orig.bytes[:kept]) {
			t.Fatalf("%s: round trip changed bytes\nwant %x\ngot  %x", in.String(id), orig.bytes[:kept], values[0].bytes[:kept])
		}
		if tail := values[0].bytes[kept:size]; !bytes.Equal(tail, make([]byte, len(tail))) {
			t.Fatalf("%s: bytes past the canonical type should come back zeroed, got %x", in.String(id), tail)
		}
		if mb.allocas != 4 || mb.copies != 2 {
			t.Fatalf("%s: want 4 slots and 2 copies, got %d and %d", in.String(id), mb.allocas, mb.copies)
		}
	}
}

func TestWideStructSlotsCoverWholeValue(t *testing.T) {
	abi, in, b := newABI()
	triple := in.Struct(types.Field(b.Double), types.Field(b.Double), types.Field(b.Double))
	if got := llString(abi.CanonicalType(triple)); got != "{ double, double }" {
		t.Fatalf("want { double, double }, got %s", got)
	}

	// memBuilder fails the test on any copy that leaves its slots.
	mb := &memBuilder{t: t}
	values := []*cell{naturalValue(t, abi, triple, 3)}
	sysv.EncodeValues(abi, mb, values, []types.TypeID{triple})
	if n := len(values[0].bytes); n != 16 {
		t.Fatalf("canonical value should hold 16 bytes, got %d", n)
	}
}

func TestEncodeLeavesOtherValuesAlone(t *testing.T) {
	abi, in, b := newABI()
	pair := in.Struct(types.Field(b.Double), types.Field(b.Double))
	first := naturalValue(t, abi, b.Int64, 1)
	second := naturalValue(t, abi, pair, 2)
	values := []*cell{first, second}

	sysv.EncodeValues(abi, &memBuilder{t: t}, values, []types.TypeID{b.Int64, pair})
	if values[0] != first {
		t.Fatalf("int64 value was replaced")
	}
	if values[1] == second {
		t.Fatalf("struct value was not transcoded")
	}
}

func TestTranscoderLengthMismatchPanics(t *testing.T) {
	abi, _, b := newABI()
	mb := &memBuilder{t: t}
	one := []*cell{naturalValue(t, abi, b.Int32, 0)}

	mustPanic(t, func() { sysv.EncodeValues(abi, mb, one, []types.TypeID{b.Int32, b.Int32}) })
	mustPanic(t, func() {
		sysv.DecodeValues(abi, mb, one, []types.TypeID{b.Int32}, nil)
	})
}
