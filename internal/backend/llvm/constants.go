package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"sysvabi/internal/layout"
	"sysvabi/internal/sysv"
	"sysvabi/internal/types"
)

// Constants hands out deterministic constant values: every scalar leaf gets
// the next integer in sequence, starting at 1, so generated calls are easy
// to follow in the IR.
type Constants struct {
	Layout *layout.LayoutEngine
	next   int64
}

// NewConstants creates a generator over le.
func NewConstants(le *layout.LayoutEngine) *Constants {
	return &Constants{Layout: le, next: 1}
}

// Value returns a constant of id's natural type.
func (c *Constants) Value(id types.TypeID) (constant.Constant, error) {
	ty, err := NaturalType(c.Layout, id)
	if err != nil {
		return nil, err
	}
	return c.value(id, ty)
}

func (c *Constants) value(id types.TypeID, ty irtypes.Type) (constant.Constant, error) {
	tt := c.Layout.Types.MustLookup(id)
	switch tt.Kind {
	case types.KindPointer:
		return constant.NewNull(irtypes.I8Ptr), nil
	case types.KindInteger:
		it, ok := ty.(*irtypes.IntType)
		if !ok {
			return nil, fmt.Errorf("integer type#%d maps to %s", id, ty.LLString())
		}
		return constant.NewInt(it, c.take()), nil
	case types.KindFloat:
		return c.float(ty)
	case types.KindComplex:
		st, ok := ty.(*irtypes.StructType)
		if !ok || len(st.Fields) != 2 {
			return nil, fmt.Errorf("complex type#%d maps to %s", id, ty.LLString())
		}
		re, err := c.float(st.Fields[0])
		if err != nil {
			return nil, err
		}
		im, err := c.float(st.Fields[1])
		if err != nil {
			return nil, err
		}
		return constant.NewStruct(st, re, im), nil
	case types.KindArray:
		at, ok := ty.(*irtypes.ArrayType)
		if !ok {
			return nil, fmt.Errorf("array type#%d maps to %s", id, ty.LLString())
		}
		elems := make([]constant.Constant, 0, at.Len)
		for i := uint64(0); i < at.Len; i++ {
			elem, err := c.value(tt.Elem, at.ElemType)
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		return constant.NewArray(at, elems...), nil
	case types.KindStruct:
		return c.structValue(id)
	default:
		return nil, fmt.Errorf("no constant for %s type#%d", tt.Kind, id)
	}
}

func (c *Constants) float(ty irtypes.Type) (constant.Constant, error) {
	ft, ok := ty.(*irtypes.FloatType)
	if !ok {
		return nil, fmt.Errorf("expected floating-point type, got %s", ty.LLString())
	}
	return constant.NewFloat(ft, float64(c.take())), nil
}

// structValue fills members in order and zeroes padding fields.
func (c *Constants) structValue(id types.TypeID) (constant.Constant, error) {
	st, memberOf, err := structFields(c.Layout, id)
	if err != nil {
		return nil, err
	}
	members := c.Layout.Types.Members(id)
	fields := make([]constant.Constant, len(st.Fields))
	for i, ft := range st.Fields {
		if memberOf[i] < 0 {
			fields[i] = constant.NewZeroInitializer(ft)
			continue
		}
		v, err := c.value(members[memberOf[i]].Type, ft)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", memberOf[i], err)
		}
		fields[i] = v
	}
	return constant.NewStruct(st, fields...), nil
}

func (c *Constants) take() int64 {
	v := c.next
	c.next++
	return v
}

// EmitDemo adds name+"_demo", a function with no parameters that calls the
// harness caller with constant arguments and returns the natural result.
func EmitDemo(mod *ir.Module, abi *sysv.ABI, name string, fn sysv.FunctionType, h *Harness) error {
	consts := NewConstants(abi.Layout())
	demo := mod.NewFunc(name+"_demo", h.Natural.RetType)
	b := NewIRBuilder(mod, demo)

	values := make([]value.Value, len(fn.Params))
	for i, p := range fn.Params {
		v, err := consts.Value(p)
		if err != nil {
			return fmt.Errorf("%s: argument %d: %w", name, i, err)
		}
		values[i] = v
	}
	sysv.EncodeValues(abi, b, values, fn.Params)
	result := b.Call(h.Caller, values...)

	if isVoid(h.Natural.RetType) {
		b.Ret(nil)
		return nil
	}
	results := []value.Value{result}
	sysv.DecodeValues(abi, b, results, []types.TypeID{fn.Return}, []irtypes.Type{h.Natural.RetType})
	b.Ret(results[0])
	return nil
}
