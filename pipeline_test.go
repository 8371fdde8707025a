package jvmaot

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"jvmaot/bytecode"
	"jvmaot/classfile"
	"jvmaot/codegen"
	"jvmaot/container"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

// buildClassBytes assembles a one-method class-file:
//
//	int <name>() { return <a> + <b>; }  (one iadd, foldable)
func buildClassBytes(t *testing.T, name string, a, b int32) []byte {
	pool := []classfile.Const{
		{},
		{Kind: classfile.ConstUTF8, UTF8: name},
		{Kind: classfile.ConstUTF8, UTF8: "()I"},
		{Kind: classfile.ConstUTF8, UTF8: "Code"},
	}
	m := classfile.Method{
		Name:         name,
		Descriptor:   "()I",
		CodeAttrName: 3,
		MaxStack:     2,
		MaxLocals:    0,
		Instructions: []classfile.Instruction{
			{Kind: classfile.InstrOp, Op: bytecode.Sipush, IntImmediate: a},
			{Kind: classfile.InstrOp, Op: bytecode.Sipush, IntImmediate: b},
			{Kind: classfile.InstrOp, Op: bytecode.Iadd},
			{Kind: classfile.InstrOp, Op: bytecode.Ireturn},
		},
	}
	c := &classfile.Class{MajorVersion: 52, ConstantPool: pool, Methods: []classfile.Method{m}}
	data, err := classfile.Write(c)
	assert(t, err == nil, "Write failed: %v", err)
	return data
}

func TestAnalyzePure(t *testing.T) {
	data := buildClassBytes(t, "f", 5, 3)
	a, err := Analyze(data)
	assert(t, err == nil, "Analyze failed: %v", err)
	b, err := Analyze(data)
	assert(t, err == nil, "Analyze failed: %v", err)
	assert(t, a["f ()I"] == b["f ()I"], "Analyze is not pure: %+v != %+v", a["f ()I"], b["f ()I"])
	assert(t, a["f ()I"].ArithmeticOps == 1, "expected 1 arithmetic op, got %+v", a["f ()I"])
}

func TestJITRewriteFoldsConstants(t *testing.T) {
	data := buildClassBytes(t, "g", 15, 25)
	rewritten, err := JITRewrite(data)
	assert(t, err == nil, "JITRewrite failed: %v", err)

	c, err := classfile.Parse(rewritten)
	assert(t, err == nil, "Parse of rewritten class failed: %v", err)

	m, ok := c.Method("g", "()I")
	assert(t, ok, "expected method g()I to survive rewrite")

	var ops []bytecode.Opcode
	for _, inst := range m.Instructions {
		if inst.Kind == classfile.InstrOp {
			ops = append(ops, inst.Op)
		}
	}
	assert(t, len(ops) == 2, "expected folded method to have 2 instructions (ldc, ireturn), got %d: %v", len(ops), ops)
	assert(t, ops[0] == bytecode.Ldc, "expected first instruction to be ldc, got %v", ops[0])

	v, ok := c.IntConstAt(m.Instructions[0].ConstIndex)
	assert(t, ok && v == 40, "expected folded constant 40, got %d (ok=%v)", v, ok)
}

func TestCompileMethodNativeProducesRunnableELF(t *testing.T) {
	data := buildClassBytes(t, "h", 15, 25)
	dir := t.TempDir()
	path := filepath.Join(dir, "h.elf")

	err := CompileMethodNative(data, "h", path, container.ELF, codegen.X86_64, true, false)
	assert(t, err == nil, "CompileMethodNative failed: %v", err)

	info, statErr := os.Stat(path)
	assert(t, statErr == nil, "expected output file to exist: %v", statErr)
	assert(t, info.Size() > 0x1000, "expected file with a populated code region, size=%d", info.Size())

	out, err := os.ReadFile(path)
	assert(t, err == nil, "ReadFile failed: %v", err)
	assert(t, out[0] == 0x7F && out[1] == 'E' && out[2] == 'L' && out[3] == 'F', "expected ELF magic")
}

// TestCompileMethodNativeRunnableELFExitsWithComputedValue runs a compiled
// ELF as a subprocess and checks its real exit code, not just that the file
// exists with ELF magic: spec.md's round-trip law (jit_rewrite/compile must
// produce a binary whose observable behavior matches the method's return
// value) is otherwise unverified anywhere in the suite. 15+25 is left
// unfolded (fold=false) so the assertion also exercises the raw iadd
// codegen path (x86_64.go's addEaxEbxX86), not just the constant-folded
// ldc one already covered by TestJITRewriteFoldsConstants.
func TestCompileMethodNativeRunnableELFExitsWithComputedValue(t *testing.T) {
	data := buildClassBytes(t, "h", 15, 25)
	dir := t.TempDir()
	path := filepath.Join(dir, "h.elf")

	err := CompileMethodNative(data, "h", path, container.ELF, codegen.X86_64, false, false)
	assert(t, err == nil, "CompileMethodNative failed: %v", err)

	cmd := exec.Command(path)
	runErr := cmd.Run()

	exitCode := 0
	if runErr != nil {
		exitErr, ok := runErr.(*exec.ExitError)
		assert(t, ok, "expected compiled binary to run and exit, got %v", runErr)
		exitCode = exitErr.ExitCode()
	}
	assert(t, exitCode == 40, "expected exit code 40 (15+25), got %d", exitCode)
}

func TestCompileMethodNativeWithSymbolsWritesSidecar(t *testing.T) {
	data := buildClassBytes(t, "h", 15, 25)
	dir := t.TempDir()
	path := filepath.Join(dir, "h.elf")

	err := CompileMethodNative(data, "h", path, container.ELF, codegen.X86_64, true, true)
	assert(t, err == nil, "CompileMethodNative failed: %v", err)

	sidecar, err := os.ReadFile(path + ".symtab")
	assert(t, err == nil, "expected symbol sidecar to exist: %v", err)
	assert(t, len(sidecar) > 8, "expected non-empty sidecar, got %d bytes", len(sidecar))
}

func TestCompileClassNativeWithSymbolsOneEntryPerMethod(t *testing.T) {
	pool := []classfile.Const{
		{},
		{Kind: classfile.ConstUTF8, UTF8: "f"},
		{Kind: classfile.ConstUTF8, UTF8: "g"},
		{Kind: classfile.ConstUTF8, UTF8: "()I"},
		{Kind: classfile.ConstUTF8, UTF8: "Code"},
	}
	methodBody := func(name string, v int32) classfile.Method {
		return classfile.Method{
			Name:         name,
			Descriptor:   "()I",
			CodeAttrName: 4,
			MaxStack:     1,
			Instructions: []classfile.Instruction{
				{Kind: classfile.InstrOp, Op: bytecode.Sipush, IntImmediate: v},
				{Kind: classfile.InstrOp, Op: bytecode.Ireturn},
			},
		}
	}
	c := &classfile.Class{
		MajorVersion: 52,
		ConstantPool: pool,
		Methods:      []classfile.Method{methodBody("f", 1), methodBody("g", 2)},
	}
	data, err := classfile.Write(c)
	assert(t, err == nil, "Write failed: %v", err)

	dir := t.TempDir()
	path := filepath.Join(dir, "multi.elf")
	err = CompileClassNative(data, path, container.ELF, codegen.X86_64, false, true)
	assert(t, err == nil, "CompileClassNative failed: %v", err)

	sidecar, err := os.ReadFile(path + ".symtab")
	assert(t, err == nil, "expected symbol sidecar to exist: %v", err)
	// 8-byte header + 3 * 24-byte symtab entries (null + 2 methods) + strtab
	// ("\0f\0g\0" = 5 bytes) = 8 + 72 + 5 = 85.
	assert(t, len(sidecar) == 85, "expected 85-byte sidecar for 2 methods, got %d", len(sidecar))
}

func TestCompileExpressionWritesContainer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expr.elf")

	err := CompileExpression(42, path, container.ELF, codegen.X86_64)
	assert(t, err == nil, "CompileExpression failed: %v", err)

	data, err := os.ReadFile(path)
	assert(t, err == nil, "ReadFile failed: %v", err)
	assert(t, data[0] == 0x7F && data[1] == 'E' && data[2] == 'L' && data[3] == 'F', "expected ELF magic")
}

func TestCompileMethodNativeMissingMethod(t *testing.T) {
	data := buildClassBytes(t, "f", 1, 2)
	dir := t.TempDir()
	path := filepath.Join(dir, "out.elf")

	err := CompileMethodNative(data, "doesNotExist", path, container.ELF, codegen.X86_64, false, false)
	assert(t, err == classfile.ErrNoExecutableMethod, "expected ErrNoExecutableMethod, got %v", err)
}

func TestSplitSelector(t *testing.T) {
	name, desc := splitSelector("f ()I")
	assert(t, name == "f" && desc == "()I", "expected split name=f desc=()I, got name=%q desc=%q", name, desc)

	name, desc = splitSelector("f")
	assert(t, name == "f" && desc == "", "expected bare name split, got name=%q desc=%q", name, desc)
}
