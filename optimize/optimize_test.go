package optimize

import (
	"fmt"
	"testing"

	"jvmaot/bytecode"
	"jvmaot/classfile"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func freshClass() *classfile.Class {
	return &classfile.Class{ConstantPool: make([]classfile.Const, 1)}
}

func op(o bytecode.Opcode) classfile.Instruction {
	return classfile.Instruction{Kind: classfile.InstrOp, Op: o}
}

func TestConstantFoldSimpleSum(t *testing.T) {
	c := freshClass()
	instrs := []classfile.Instruction{op(bytecode.Iconst2), op(bytecode.Iconst3), op(bytecode.Iadd), op(bytecode.Ireturn)}

	out := ConstantFold(c, instrs)
	assert(t, len(out) == 2, "expected fold to collapse to 2 instructions, got %d", len(out))
	assert(t, out[0].Op == bytecode.Ldc, "expected folded ldc, got opcode %v", out[0].Op)
	v, ok := c.IntConstAt(out[0].ConstIndex)
	assert(t, ok, "folded ldc must resolve to a real pool entry")
	assert(t, v == 5, "expected folded value 5, got %d", v)
}

func TestConstantFoldChains(t *testing.T) {
	c := freshClass()
	// 1 + 2 + 3 + 4, three iadds, should collapse to a single ldc 10.
	instrs := []classfile.Instruction{
		op(bytecode.Iconst1), op(bytecode.Iconst2), op(bytecode.Iadd),
		op(bytecode.Iconst3), op(bytecode.Iadd),
		op(bytecode.Iconst4), op(bytecode.Iadd),
		op(bytecode.Ireturn),
	}
	out := ConstantFold(c, instrs)
	assert(t, len(out) == 2, "expected chained fold down to ldc+ireturn, got %d instructions", len(out))
	v, ok := c.IntConstAt(out[0].ConstIndex)
	assert(t, ok && v == 10, "expected folded value 10, got %d (ok=%v)", v, ok)
}

func TestConstantFoldWraps32Bit(t *testing.T) {
	c := freshClass()
	instrs := []classfile.Instruction{
		{Kind: classfile.InstrOp, Op: bytecode.Sipush, IntImmediate: 2147483647},
		{Kind: classfile.InstrOp, Op: bytecode.Bipush, IntImmediate: 1},
		op(bytecode.Iadd),
		op(bytecode.Ireturn),
	}
	out := ConstantFold(c, instrs)
	v, ok := c.IntConstAt(out[0].ConstIndex)
	assert(t, ok && v == -2147483648, "expected 32-bit wraparound to minint, got %d", v)
}

func TestConstantFoldIgnoresNonIadd(t *testing.T) {
	c := freshClass()
	instrs := []classfile.Instruction{op(bytecode.Iconst2), op(bytecode.Iconst3), op(bytecode.Imul), op(bytecode.Ireturn)}
	out := ConstantFold(c, instrs)
	assert(t, len(out) == 4, "imul must not be folded, expected 4 instructions, got %d", len(out))
}

func TestDeadCodeEliminationDropsToEndOfList(t *testing.T) {
	instrs := []classfile.Instruction{op(bytecode.Iconst1), op(bytecode.Ireturn), op(bytecode.Iconst2), op(bytecode.Ireturn)}
	out := EliminateDeadCode(instrs)
	assert(t, len(out) == 2, "expected unreachable tail dropped, got %d instructions", len(out))
}

func TestDeadCodeEliminationStopsAtLabel(t *testing.T) {
	instrs := []classfile.Instruction{
		op(bytecode.Iconst1),
		op(bytecode.Ireturn),
		op(bytecode.Nop), // unreachable, must be dropped
		classfile.Label(0),
		op(bytecode.Iconst2),
		op(bytecode.Ireturn),
	}
	out := EliminateDeadCode(instrs)
	assert(t, len(out) == 5, "expected exactly the nop dropped, got %d instructions", len(out))
	assert(t, out[2].Kind == classfile.InstrLabel, "expected label preserved at index 2, got kind %v", out[2].Kind)
}

func TestDeadCodeEliminationPreservesLineNumberMetadata(t *testing.T) {
	instrs := []classfile.Instruction{
		op(bytecode.Iconst1),
		op(bytecode.Ireturn),
		{Kind: classfile.InstrLineNumber, LineNumber: 7},
		classfile.Label(0),
	}
	out := EliminateDeadCode(instrs)
	assert(t, len(out) == 4, "expected LineNumber and Label preserved across the skipped region, got %d", len(out))
	assert(t, out[2].Kind == classfile.InstrLineNumber, "expected LineNumber node kept, got kind %v", out[2].Kind)
}
