package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"sysvabi/internal/sysv"
	"sysvabi/internal/types"
)

// Harness is the pair of functions emitted for one prototype: callee is a
// declaration with the lowered signature; caller takes the same lowered
// arguments, decodes them, re-encodes them for the call to callee and does
// the same with the result.
type Harness struct {
	Callee  *ir.Func
	Caller  *ir.Func
	Natural *irtypes.FuncType
	Lowered *irtypes.FuncType
}

// EmitHarness adds the callee/caller pair for fn to mod. Function names are
// name+"_callee" and name+"_caller".
func EmitHarness(mod *ir.Module, abi *sysv.ABI, name string, fn sysv.FunctionType) (*Harness, error) {
	natural, err := NaturalSignature(abi.Layout(), fn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	lowered := abi.RewriteFunctionType(natural, fn)

	h := &Harness{Natural: natural, Lowered: lowered}
	h.Callee = declare(mod, name+"_callee", lowered, "")
	h.Caller = declare(mod, name+"_caller", lowered, "a")

	b := NewIRBuilder(mod, h.Caller)
	values := make([]value.Value, len(h.Caller.Params))
	for i, p := range h.Caller.Params {
		values[i] = p
	}

	// Incoming arguments arrive canonical; the body works on natural values.
	sysv.DecodeValues(abi, b, values, fn.Params, natural.Params)
	sysv.EncodeValues(abi, b, values, fn.Params)
	result := b.Call(h.Callee, values...)

	if isVoid(natural.RetType) {
		b.Ret(nil)
		return h, nil
	}
	results := []value.Value{result}
	retTypes := []types.TypeID{fn.Return}
	sysv.DecodeValues(abi, b, results, retTypes, []irtypes.Type{natural.RetType})
	sysv.EncodeValues(abi, b, results, retTypes)
	b.Ret(results[0])
	return h, nil
}

func declare(mod *ir.Module, name string, sig *irtypes.FuncType, paramPrefix string) *ir.Func {
	params := make([]*ir.Param, len(sig.Params))
	for i, pt := range sig.Params {
		pname := ""
		if paramPrefix != "" {
			pname = fmt.Sprintf("%s%d", paramPrefix, i)
		}
		params[i] = ir.NewParam(pname, pt)
	}
	f := mod.NewFunc(name, sig.RetType, params...)
	f.Sig.Variadic = sig.Variadic
	f.CallingConv = enum.CallingConvC
	return f
}

func isVoid(t irtypes.Type) bool {
	_, ok := t.(*irtypes.VoidType)
	return ok
}
