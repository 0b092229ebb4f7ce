package sysv

import (
	"strings"

	irtypes "github.com/llir/llvm/ir/types"

	"sysvabi/internal/types"
)

// FunctionType is a signature in Type Model terms.
type FunctionType struct {
	Return   types.TypeID
	Params   []types.TypeID
	Variadic bool
}

// String renders the signature as "ret (p0, p1, ...)".
func (f FunctionType) String(in *types.Interner) string {
	var sb strings.Builder
	sb.WriteString(in.String(f.Return))
	sb.WriteString(" (")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(in.String(p))
	}
	if f.Variadic {
		if len(f.Params) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	}
	sb.WriteString(")")
	return sb.String()
}

// RewriteFunctionType substitutes canonical types into sig wherever fn's
// return or parameter types need one.
//
// When nothing needs rewriting the very same *FuncType is returned; callers
// compare pointers to detect that no rewrite happened.
func (a *ABI) RewriteFunctionType(sig *irtypes.FuncType, fn FunctionType) *irtypes.FuncType {
	if len(sig.Params) != len(fn.Params) {
		invariant(types.NoTypeID, "signature has %d parameters, function type has %d", len(sig.Params), len(fn.Params))
	}

	modified := false
	ret := sig.RetType
	if canon := a.CanonicalType(fn.Return); canon != nil {
		ret = canon
		modified = true
	}

	params := make([]irtypes.Type, len(sig.Params))
	for i, p := range fn.Params {
		if canon := a.CanonicalType(p); canon != nil {
			params[i] = canon
			modified = true
		} else {
			params[i] = sig.Params[i]
		}
	}

	if !modified {
		return sig
	}
	lowered := irtypes.NewFunc(ret, params...)
	lowered.Variadic = sig.Variadic
	return lowered
}
