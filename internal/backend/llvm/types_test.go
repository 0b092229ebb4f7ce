package llvm

import (
	"testing"

	"sysvabi/internal/layout"
	"sysvabi/internal/types"
)

func newEngine() (*layout.LayoutEngine, *types.Interner, types.Builtins) {
	in := types.NewInterner()
	return layout.New(layout.X86_64SysV(), in), in, in.Builtins()
}

func TestNaturalTypes(t *testing.T) {
	le, in, b := newEngine()
	cases := []struct {
		name string
		id   types.TypeID
		want string
	}{
		{"void", b.Void, "void"},
		{"bool", b.Bool, "i8"},
		{"int32", b.Int32, "i32"},
		{"int128", b.Int128, "i128"},
		{"pointer", b.Pointer, "i8*"},
		{"long double", b.LongDouble, "x86_fp80"},
		{"float128", b.Float128, "fp128"},
		{"complex double", b.ComplexDouble, "{ double, double }"},
		{"float[3]", in.Array(b.Float, 3), "[3 x float]"},
		{"char+double", in.Struct(types.Field(b.Char), types.Field(b.Double)), "{ i8, double }"},
		{"pushed member", in.Struct(types.Field(b.Int32), types.FieldAt(b.Int32, 12)), "<{ i32, [8 x i8], i32 }>"},
		{"aligned array", in.Struct(types.Field(b.Char), types.Field(in.Array(b.Char, 16))), "<{ i8, [15 x i8], [16 x i8] }>"},
		{"empty", in.Struct(), "<{ [1 x i8] }>"},
	}
	for _, tc := range cases {
		got, err := NaturalType(le, tc.id)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got.LLString() != tc.want {
			t.Fatalf("%s: want %s, got %s", tc.name, tc.want, got.LLString())
		}
	}
}

func TestNaturalTypeSizeMatchesLayout(t *testing.T) {
	le, in, b := newEngine()
	ids := []types.TypeID{
		b.Bool, b.Short, b.Int, b.Long, b.Int128, b.Float, b.Double, b.LongDouble,
		b.ComplexFloat, b.ComplexDouble, b.ComplexLongDouble,
		in.Array(b.Int64, 5),
		in.Array(b.Char, 17),
		in.Struct(types.Field(b.Char), types.Field(b.ComplexFloat)),
		in.Struct(types.Field(b.LongDouble), types.Field(b.Int32)),
		in.Struct(types.Field(b.Char), types.Field(in.Struct(types.Field(b.Short), types.FieldAt(b.Char, 6)))),
		in.Struct(types.Field(b.Float), types.Field(b.Float), types.Field(b.Float)),
	}
	for _, id := range ids {
		nt, err := NaturalType(le, id)
		if err != nil {
			t.Fatalf("%s: %v", in.String(id), err)
		}
		if got, want := AllocSize(nt), le.SizeOf(id); got != want {
			t.Fatalf("%s as %s: want %d bytes, got %d", in.String(id), nt.LLString(), want, got)
		}
	}
}

func TestNaturalTypeRejectsUnknownID(t *testing.T) {
	le, _, _ := newEngine()
	if _, err := NaturalType(le, types.TypeID(4096)); err == nil {
		t.Fatalf("expected error for unknown type id")
	}
}
