package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Void == NoTypeID || b.Int32 == NoTypeID || b.ComplexFloat128 == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	i32, _ := in.Lookup(b.Int32)
	if !i32.IsInteger(IntInt32) {
		t.Fatalf("expected int32 descriptor, got %+v", i32)
	}
	ld, _ := in.Lookup(b.LongDouble)
	if !ld.IsFloat(FloatLongDouble) {
		t.Fatalf("expected long double descriptor, got %+v", ld)
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	arr1 := in.Array(b.Int64, 5)
	arr2 := in.Intern(MakeArray(b.Int64, 5))
	if arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
	if in.Array(b.Int64, 4) == arr1 {
		t.Fatalf("arrays of different length must differ")
	}
}

func TestStructIdentityIsStructural(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	s1 := in.Struct(Field(b.Int64), Field(b.Int32))
	s2 := in.Struct(Field(b.Int64), Field(b.Int32))
	if s1 != s2 {
		t.Fatalf("structurally equal structs should share a TypeID")
	}
	if s3 := in.Struct(Field(b.Int32), Field(b.Int64)); s3 == s1 {
		t.Fatalf("member order must affect identity")
	}
	if s4 := in.Struct(Field(b.Int64), FieldAt(b.Int32, 12)); s4 == s1 {
		t.Fatalf("explicit offsets must affect identity")
	}
	if empty1, empty2 := in.Struct(), in.Struct(); empty1 != empty2 {
		t.Fatalf("empty structs should be deduplicated")
	}
}

func TestStructMembersAreCopied(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	members := []Member{Field(b.Float), Field(b.Float)}
	id := in.Struct(members...)
	members[0] = Field(b.Double)
	got := in.Members(id)
	if len(got) != 2 || got[0].Type != b.Float {
		t.Fatalf("interned members changed after caller mutation: %+v", got)
	}
}

func TestOffsetDefaultsToNatural(t *testing.T) {
	if Natural().Set || Field(1).Offset.Set {
		t.Fatalf("natural offset must not be marked as explicit")
	}
	off := At(0)
	if !off.Set || off.Value() != 0 {
		t.Fatalf("explicit zero offset lost: %+v", off)
	}
}

func TestInternRejectsForeignStructDescriptor(t *testing.T) {
	in := NewInterner()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for struct descriptor without a slot")
		}
	}()
	in.Intern(Type{Kind: KindStruct})
}

func TestStringRendering(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := []struct {
		id   TypeID
		want string
	}{
		{b.Int32, "int32"},
		{b.ComplexDouble, "_Complex double"},
		{in.Array(b.Int64, 5), "[5 x int64]"},
		{in.Struct(Field(b.Pointer), FieldAt(b.Int32, 8)), "struct { ptr; int32 @8 }"},
		{in.Struct(), "struct {}"},
	}
	for _, tc := range cases {
		if got := in.String(tc.id); got != tc.want {
			t.Fatalf("String(%d): want %q, got %q", tc.id, tc.want, got)
		}
	}
}
