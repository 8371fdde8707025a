// Package codegen implements component C4, the Code Generator: one
// emitter per target ISA, translating a method's straight-line integer
// instruction list into native machine code using the host call stack as
// the operand stack (spec.md §4.4, §9).
package codegen

import (
	"jvmaot/bytecode"
	"jvmaot/classfile"
	"jvmaot/diag"
)

// ISA selects the target instruction set architecture.
type ISA int

const (
	X86_64 ISA = iota
	ARM64
)

func (isa ISA) String() string {
	if isa == ARM64 {
		return "arm64"
	}
	return "x86_64"
}

// FrameSize is the fixed local-variable reservation spec.md §4.4
// mandates: 64 bytes, enough for up to 16 integer locals (not validated),
// regardless of a method's actual MaxLocals.
const FrameSize = 64

// NativeBlob is an append-only byte sequence: one method's emitted code,
// ending in its ISA's return instruction (spec.md §3 invariant).
type NativeBlob struct {
	Bytes []byte
}

func (b *NativeBlob) emitByte(v byte)        { b.Bytes = append(b.Bytes, v) }
func (b *NativeBlob) emitBytes(vs ...byte)   { b.Bytes = append(b.Bytes, vs...) }
func (b *NativeBlob) len() int               { return len(b.Bytes) }

// codeGen holds the mutable state for translating one method's
// instruction list into a NativeBlob, mirroring the teacher's CodeGen
// struct shape (backend.go) narrowed to this spec's opcode subset.
type codeGen struct {
	blob NativeBlob
	isa  ISA

	// labelOffsets is allocated by Emit but never filled: Emit skips Label
	// nodes and emits no branch forms (see spec.md §4.4's supported-opcode
	// table), so no label is ever resolved to a blob offset.
	labelOffsets map[int]int
}

// Emit translates one method's (possibly optimized) instruction list into
// a NativeBlob for the given ISA. class supplies constant-pool resolution
// for ldc. The emitter never fails on malformed input (that is the Class
// Reader's responsibility, per §4.4's "Failure" clause); unsupported
// opcodes become a single ISA nop and are reported once via diag.Warn.
func Emit(class *classfile.Class, method classfile.Method, isa ISA) NativeBlob {
	g := &codeGen{isa: isa, labelOffsets: map[int]int{}}

	g.prologue()

	sawUnsupported := false
	for _, inst := range method.Instructions {
		if inst.Kind != classfile.InstrOp {
			continue
		}
		if !g.emitOne(class, inst) {
			sawUnsupported = true
		}
	}

	// A method with no explicit `return`/`ireturn` (shouldn't occur in a
	// well-formed class-file, but the emitter never fails on input) still
	// needs to end the blob with an epilogue, per the NativeBlob invariant.
	if !g.blobEndsWithRet() {
		g.epilogue(false)
	}

	if sawUnsupported {
		diag.Warn("method %s%s contains opcodes outside the supported set; emitted as nop", method.Name, method.Descriptor)
	}

	return g.blob
}

// blobEndsWithRet reports whether the emitted blob already ends with the
// target ISA's return instruction, so Emit does not double-append an
// epilogue after an ireturn/return already emitted one.
func (g *codeGen) blobEndsWithRet() bool {
	switch g.isa {
	case ARM64:
		return len(g.blob.Bytes) >= 4 && g.blob.Bytes[len(g.blob.Bytes)-4] == 0xC0 &&
			g.blob.Bytes[len(g.blob.Bytes)-3] == 0x03 && g.blob.Bytes[len(g.blob.Bytes)-2] == 0x5F &&
			g.blob.Bytes[len(g.blob.Bytes)-1] == 0xD6
	default:
		return len(g.blob.Bytes) >= 1 && g.blob.Bytes[len(g.blob.Bytes)-1] == 0xC3
	}
}

// emitOne translates a single decoded instruction. It returns false when
// the opcode fell outside spec.md §4.4's supported table (a single nop
// was emitted instead).
func (g *codeGen) emitOne(class *classfile.Class, inst classfile.Instruction) bool {
	switch g.isa {
	case ARM64:
		return g.emitOneArm64(class, inst)
	default:
		return g.emitOneX86(class, inst)
	}
}

func (g *codeGen) prologue() {
	switch g.isa {
	case ARM64:
		g.prologueArm64()
	default:
		g.prologueX86()
	}
}

func (g *codeGen) epilogue(fromReturn bool) {
	switch g.isa {
	case ARM64:
		g.epilogueArm64()
	default:
		g.epilogueX86()
	}
	_ = fromReturn
}

// intConstValue resolves a constant-push instruction's value, including
// ldc's pool lookup. Returns 0, false for anything that is not actually a
// recognized constant-push form (should not happen for opcodes routed to
// this helper, but the emitter never fails on input).
func intConstValue(class *classfile.Class, inst classfile.Instruction) (int32, bool) {
	switch inst.Op {
	case bytecode.IconstM1, bytecode.Iconst0, bytecode.Iconst1, bytecode.Iconst2,
		bytecode.Iconst3, bytecode.Iconst4, bytecode.Iconst5:
		return bytecode.IconstValue(inst.Op), true
	case bytecode.Bipush, bytecode.Sipush:
		return inst.IntImmediate, true
	case bytecode.Ldc, bytecode.LdcW:
		return class.IntConstAt(inst.ConstIndex)
	default:
		return 0, false
	}
}

// localOffset returns the byte offset of local slot index from the frame
// base, per spec.md §4.4: [frame_base − (index+1)·4]. The fixed 64-byte
// reservation gives 16 valid 4-byte slots; spec.md documents this as a
// known limit, not validated here.
func localOffset(index int) int {
	return (index + 1) * 4
}
