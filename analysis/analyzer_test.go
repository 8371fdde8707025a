package analysis

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

func TestAnalyzeCountsEachFamily(t *testing.T) {
	m := classfile.Method{
		Instructions: []classfile.Instruction{
			{Kind: classfile.InstrOp, Op: bytecode.Iconst1},
			{Kind: classfile.InstrOp, Op: bytecode.Iconst2},
			{Kind: classfile.InstrOp, Op: bytecode.Iadd},
			{Kind: classfile.InstrOp, Op: bytecode.Invokestatic},
			{Kind: classfile.InstrOp, Op: bytecode.Getfield},
			{Kind: classfile.InstrOp, Op: bytecode.Ifeq},
			{Kind: classfile.InstrOp, Op: bytecode.Ireturn},
			{Kind: classfile.InstrLabel, LabelTarget: 0},
			{Kind: classfile.InstrLineNumber, LineNumber: 12},
		},
	}

	mi := Analyze(m)
	assert(t, mi.InstructionCount == 7, "expected 7 counted instructions, got %d", mi.InstructionCount)
	assert(t, mi.ArithmeticOps == 1, "expected 1 arithmetic op, got %d", mi.ArithmeticOps)
	assert(t, mi.MethodCallCount == 1, "expected 1 call, got %d", mi.MethodCallCount)
	assert(t, mi.FieldAccessCount == 1, "expected 1 field access, got %d", mi.FieldAccessCount)
	assert(t, mi.BranchCount == 1, "expected 1 branch, got %d", mi.BranchCount)
	assert(t, mi.ReturnCount == 1, "expected 1 return, got %d", mi.ReturnCount)
}

func TestAnalyzeIsPure(t *testing.T) {
	m := classfile.Method{
		Instructions: []classfile.Instruction{
			{Kind: classfile.InstrOp, Op: bytecode.Iconst1},
			{Kind: classfile.InstrOp, Op: bytecode.Ireturn},
		},
	}
	a := Analyze(m)
	b := Analyze(m)
	assert(t, a == b, "Analyze is not pure: %+v != %+v", a, b)
}

func TestIsHotDisjuncts(t *testing.T) {
	longMethod := classfile.Method{}
	for i := 0; i < 11; i++ {
		longMethod.Instructions = append(longMethod.Instructions, classfile.Instruction{Kind: classfile.InstrOp, Op: bytecode.Nop})
	}
	assert(t, Analyze(longMethod).IsHot(), "11-instruction method should be hot")

	arithHeavy := classfile.Method{Instructions: []classfile.Instruction{
		{Kind: classfile.InstrOp, Op: bytecode.Iadd},
		{Kind: classfile.InstrOp, Op: bytecode.Isub},
		{Kind: classfile.InstrOp, Op: bytecode.Imul},
		{Kind: classfile.InstrOp, Op: bytecode.Idiv},
	}}
	assert(t, Analyze(arithHeavy).IsHot(), "4-arithmetic-op method should be hot")

	cold := classfile.Method{Instructions: []classfile.Instruction{
		{Kind: classfile.InstrOp, Op: bytecode.Iconst1},
		{Kind: classfile.InstrOp, Op: bytecode.Ireturn},
	}}
	assert(t, !Analyze(cold).IsHot(), "2-instruction method should not be hot")
}
