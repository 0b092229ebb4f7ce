package sysv_test

import (
	"testing"

	irtypes "github.com/llir/llvm/ir/types"

	"sysvabi/internal/sysv"
	"sysvabi/internal/types"
)

func TestRewriteKeepsIdentityWhenUnchanged(t *testing.T) {
	abi, in, b := newABI()
	pair := in.Struct(types.Field(b.Pointer), types.Field(b.Int32))
	fn := sysv.FunctionType{Return: b.Int32, Params: []types.TypeID{b.Int32, b.Double, pair}}
	sig := irtypes.NewFunc(irtypes.I32, irtypes.I32, irtypes.Double, irtypes.NewStruct(irtypes.I8Ptr, irtypes.I32))

	if got := abi.RewriteFunctionType(sig, fn); got != sig {
		t.Fatalf("unchanged signature must be returned as is")
	}
}

func TestRewriteSubstitutesCanonicalTypes(t *testing.T) {
	abi, in, b := newABI()
	floats := in.Struct(types.Field(b.Float), types.Field(b.Float))
	doubles := in.Struct(types.Field(b.Double), types.Field(b.Double))
	fn := sysv.FunctionType{Return: floats, Params: []types.TypeID{doubles, b.Int32}, Variadic: true}

	natFloats := irtypes.NewStruct(irtypes.Float, irtypes.Float)
	natDoubles := irtypes.NewStruct(irtypes.Double, irtypes.Double)
	sig := irtypes.NewFunc(natFloats, natDoubles, irtypes.I32)
	sig.Variadic = true

	got := abi.RewriteFunctionType(sig, fn)
	if got == sig {
		t.Fatalf("expected a new signature")
	}
	if !got.RetType.Equal(irtypes.NewVector(2, irtypes.Float)) {
		t.Fatalf("return: want <2 x float>, got %s", got.RetType.LLString())
	}
	if len(got.Params) != 2 || !got.Params[0].Equal(natDoubles) || got.Params[1] != irtypes.Type(irtypes.I32) {
		t.Fatalf("unexpected params %v", got.Params)
	}
	if !got.Variadic {
		t.Fatalf("variadic flag lost")
	}
	if sig.RetType != irtypes.Type(natFloats) {
		t.Fatalf("input signature was mutated")
	}
}

func TestRewriteParamCountMismatchPanics(t *testing.T) {
	abi, _, b := newABI()
	fn := sysv.FunctionType{Return: b.Void, Params: []types.TypeID{b.Int32}}
	sig := irtypes.NewFunc(irtypes.Void)
	mustPanic(t, func() { abi.RewriteFunctionType(sig, fn) })
}

func TestFunctionTypeString(t *testing.T) {
	_, in, b := newABI()
	fn := sysv.FunctionType{Return: b.Void, Params: []types.TypeID{b.Pointer}, Variadic: true}
	if got := fn.String(in); got != "void (ptr, ...)" {
		t.Fatalf("unexpected rendering %q", got)
	}
}
