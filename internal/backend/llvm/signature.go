package llvm

import (
	"fmt"

	irtypes "github.com/llir/llvm/ir/types"

	"sysvabi/internal/layout"
	"sysvabi/internal/sysv"
)

// NaturalSignature builds the IR signature of fn before lowering.
func NaturalSignature(le *layout.LayoutEngine, fn sysv.FunctionType) (*irtypes.FuncType, error) {
	ret, err := NaturalType(le, fn.Return)
	if err != nil {
		return nil, fmt.Errorf("return type: %w", err)
	}
	params := make([]irtypes.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i], err = storableType(le, p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
	}
	sig := irtypes.NewFunc(ret, params...)
	sig.Variadic = fn.Variadic
	return sig, nil
}

// Signature builds the natural IR signature of fn and lowers it for abi.
func Signature(abi *sysv.ABI, fn sysv.FunctionType) (*irtypes.FuncType, error) {
	natural, err := NaturalSignature(abi.Layout(), fn)
	if err != nil {
		return nil, err
	}
	return abi.RewriteFunctionType(natural, fn), nil
}
