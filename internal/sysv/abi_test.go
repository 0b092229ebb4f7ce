package sysv_test

import (
	"strings"
	"testing"

	"sysvabi/internal/sysv"
	"sysvabi/internal/trace"
	"sysvabi/internal/types"
)

func TestABIFacade(t *testing.T) {
	abi, in, b := newABI()
	if abi.Name() != "x86_64" {
		t.Fatalf("unexpected name %q", abi.Name())
	}
	if abi.LongDoubleType().LLString() != "x86_fp80" {
		t.Fatalf("unexpected long double type %s", abi.LongDoubleType().LLString())
	}
	s := in.Struct(types.Field(b.Char), types.Field(b.Double))
	if abi.TypeSize(s) != 16 || abi.TypeAlign(s) != 8 {
		t.Fatalf("want 16/8, got %d/%d", abi.TypeSize(s), abi.TypeAlign(s))
	}
	offsets := abi.StructOffsets([]types.Member{types.Field(b.Char), types.Field(b.Double)})
	if len(offsets) != 2 || offsets[1] != 8 {
		t.Fatalf("unexpected offsets %v", offsets)
	}
}

func TestCanonicalCacheMatchesRecomputation(t *testing.T) {
	abi, in, b := newABI()
	s := in.Struct(types.Field(b.Float), types.Field(b.Float))
	plain := in.Struct(types.Field(b.Pointer), types.Field(b.Int32))

	first := abi.CanonicalType(s)
	second := abi.CanonicalType(s)
	if first != second {
		t.Fatalf("cached canonical type differs from first result")
	}
	fresh := sysv.New(in).CanonicalType(s)
	if !fresh.Equal(first) {
		t.Fatalf("cache hit %s differs from recomputation %s", first.LLString(), fresh.LLString())
	}

	if abi.CanonicalType(plain) != nil || abi.CanonicalType(plain) != nil {
		t.Fatalf("no-transform result must stay nil when cached")
	}

	stats := abi.Stats()
	if stats.CanonicalMisses != 2 || stats.CanonicalHits != 2 {
		t.Fatalf("want 2 misses and 2 hits, got %+v", stats)
	}
}

func TestTracerSeesCanonicalDecisions(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	ring := trace.NewRingTracer(16, trace.LevelDebug)
	abi := sysv.New(in, sysv.WithTracer(ring))

	s := in.Struct(types.Field(b.Double), types.Field(b.Double))
	abi.CanonicalType(s)
	abi.CanonicalType(s)

	events := ring.Snapshot()
	if len(events) != 1 {
		t.Fatalf("want one decision event, got %d", len(events))
	}
	ev := events[0]
	if ev.Scope != trace.ScopeType || ev.Name != "canonical" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Extra["class"] != "{SSE, SSE}" || !strings.Contains(ev.Extra["result"], "double") {
		t.Fatalf("unexpected extras %v", ev.Extra)
	}
}
