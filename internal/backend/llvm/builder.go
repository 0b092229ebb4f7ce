package llvm

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

const memcpyName = "llvm.memcpy.p0i8.p0i8.i64"

// IRBuilder emits instructions into one function. Scratch slots go to the
// top of the entry block, ahead of everything else, so they are allocated
// once per call however often the emitting code runs; all other
// instructions are appended to the current block.
//
// IRBuilder satisfies sysv.Builder[value.Value].
type IRBuilder struct {
	mod     *ir.Module
	fn      *ir.Func
	entry   *ir.Block
	block   *ir.Block
	allocas int
}

// NewIRBuilder returns a builder positioned at the end of fn's entry block,
// creating the block when fn has none yet.
func NewIRBuilder(mod *ir.Module, fn *ir.Func) *IRBuilder {
	var entry *ir.Block
	if len(fn.Blocks) == 0 {
		entry = fn.NewBlock("entry")
	} else {
		entry = fn.Blocks[0]
	}
	return &IRBuilder{mod: mod, fn: fn, entry: entry, block: entry}
}

// Block returns the block instructions are appended to.
func (b *IRBuilder) Block() *ir.Block { return b.block }

// SetBlock moves the insertion point to the end of block.
func (b *IRBuilder) SetBlock(block *ir.Block) { b.block = block }

// EntryAlloca reserves a stack slot of type t in the entry block, aligned to
// the larger of align and t's own ABI alignment. When t is smaller than size
// the slot is an [size x i8] array bitcast to a t pointer, so a memcpy of
// size bytes stays inside it.
func (b *IRBuilder) EntryAlloca(t irtypes.Type, size, align uint64) value.Value {
	align = max(align, ABIAlign(t))
	if AllocSize(t) >= size {
		inst := ir.NewAlloca(t)
		inst.Align = ir.Align(align)
		b.insertEntry(inst)
		return inst
	}
	backing := ir.NewAlloca(irtypes.NewArray(size, irtypes.I8))
	backing.Align = ir.Align(align)
	b.insertEntry(backing)
	slot := ir.NewBitCast(backing, irtypes.NewPointer(t))
	b.insertEntry(slot)
	return slot
}

// insertEntry places inst after the scratch slots already in the entry block.
func (b *IRBuilder) insertEntry(inst ir.Instruction) {
	b.entry.Insts = slices.Insert(b.entry.Insts, b.allocas, inst)
	b.allocas++
}

// Store writes val to slot.
func (b *IRBuilder) Store(val, slot value.Value) {
	b.block.NewStore(val, slot)
}

// Load reads a t from slot.
func (b *IRBuilder) Load(t irtypes.Type, slot value.Value) value.Value {
	return b.block.NewLoad(t, slot)
}

// TypeOf reports the IR type of val.
func (b *IRBuilder) TypeOf(val value.Value) irtypes.Type {
	return val.Type()
}

// Memcpy copies size bytes between two slots through the memcpy intrinsic.
// Alignment is whatever the slots were allocated with.
func (b *IRBuilder) Memcpy(dst, src value.Value, size uint64) {
	n, err := safecast.Conv[int64](size)
	if err != nil {
		panic(fmt.Errorf("memcpy of %d bytes: %w", size, err))
	}
	dst8 := b.block.NewBitCast(dst, irtypes.I8Ptr)
	src8 := b.block.NewBitCast(src, irtypes.I8Ptr)
	b.block.NewCall(b.memcpyDecl(), dst8, src8, constant.NewInt(irtypes.I64, n), constant.NewBool(false))
}

// Call emits a call to callee using the C calling convention.
func (b *IRBuilder) Call(callee *ir.Func, args ...value.Value) *ir.InstCall {
	call := b.block.NewCall(callee, args...)
	call.CallingConv = callee.CallingConv
	return call
}

// Ret terminates the current block, returning val or nothing when val is nil.
func (b *IRBuilder) Ret(val value.Value) {
	b.block.NewRet(val)
}

// memcpyDecl returns the memcpy intrinsic, declaring it on first use.
func (b *IRBuilder) memcpyDecl() *ir.Func {
	for _, f := range b.mod.Funcs {
		if f.Name() == memcpyName {
			return f
		}
	}
	return b.mod.NewFunc(memcpyName, irtypes.Void,
		ir.NewParam("", irtypes.I8Ptr),
		ir.NewParam("", irtypes.I8Ptr),
		ir.NewParam("", irtypes.I64),
		ir.NewParam("", irtypes.I1),
	)
}
