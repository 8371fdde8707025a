package codegen

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

func op(o bytecode.Opcode) classfile.Instruction {
	return classfile.Instruction{Kind: classfile.InstrOp, Op: o}
}

func constReturnMethod(v int32) classfile.Method {
	return classfile.Method{
		Name:       "f",
		Descriptor: "()I",
		Instructions: []classfile.Instruction{
			{Kind: classfile.InstrOp, Op: bytecode.Sipush, IntImmediate: v},
			op(bytecode.Ireturn),
		},
	}
}

func TestEmitX86EndsWithRet(t *testing.T) {
	blob := Emit(&classfile.Class{}, constReturnMethod(42), X86_64)
	assert(t, len(blob.Bytes) > 0, "expected non-empty blob")
	assert(t, blob.Bytes[len(blob.Bytes)-1] == 0xC3, "expected blob to end with x86-64 ret (0xC3), got %#x", blob.Bytes[len(blob.Bytes)-1])
}

func TestEmitArm64EndsWithRet(t *testing.T) {
	blob := Emit(&classfile.Class{}, constReturnMethod(42), ARM64)
	n := len(blob.Bytes)
	assert(t, n >= 4, "expected non-empty blob")
	last4 := blob.Bytes[n-4:]
	assert(t, last4[0] == 0xC0 && last4[1] == 0x03 && last4[2] == 0x5F && last4[3] == 0xD6,
		"expected blob to end with arm64 ret (0xD65F03C0), got % x", last4)
}

func TestEmitUnsupportedOpcodeBecomesNop(t *testing.T) {
	m := classfile.Method{
		Name:       "u",
		Descriptor: "()V",
		Instructions: []classfile.Instruction{
			op(bytecode.AconstNull),
			op(bytecode.Return),
		},
	}
	blob := Emit(&classfile.Class{}, m, X86_64)
	// prologue (push rbp;mov rbp,rsp;sub rsp,64) = 1+3+4 = 8 bytes, then nop (0x90), then epilogue.
	assert(t, blob.Bytes[8] == 0x90, "expected nop at offset 8 for unsupported opcode, got %#x", blob.Bytes[8])
}

func TestLocalOffsetMatchesSpecFormula(t *testing.T) {
	assert(t, localOffset(0) == 4, "expected slot 0 at offset 4, got %d", localOffset(0))
	assert(t, localOffset(3) == 16, "expected slot 3 at offset 16, got %d", localOffset(3))
}
