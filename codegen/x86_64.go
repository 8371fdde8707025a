package codegen

import "jvmaot/bytecode"
import "jvmaot/classfile"

// x86-64 encoder: mnemonic-level instruction encoding for the supported
// opcode subset, grounded on the teacher's assembler-style helpers
// (x64.go) but narrowed to this spec's two scratch registers (rax, rbx)
// and 64-bit stack slots with 32-bit local-variable reads/writes, per
// spec.md §9's explicit recommendation for the source's slot-size bug.

func (g *codeGen) prologueX86() {
	g.blob.emitByte(0x55)                   // push rbp
	g.blob.emitBytes(0x48, 0x89, 0xE5)       // mov rbp, rsp
	g.blob.emitBytes(0x48, 0x83, 0xEC, FrameSize) // sub rsp, 64
}

func (g *codeGen) epilogueX86() {
	g.blob.emitBytes(0x48, 0x89, 0xEC) // mov rsp, rbp
	g.blob.emitByte(0x5D)              // pop rbp
	g.blob.emitByte(0xC3)              // ret
}

func (g *codeGen) pushRaxX86() { g.blob.emitByte(0x50) }
func (g *codeGen) popRaxX86()  { g.blob.emitByte(0x58) }
func (g *codeGen) pushRbxX86() { g.blob.emitByte(0x53) }
func (g *codeGen) popRbxX86()  { g.blob.emitByte(0x5B) }

// movEaxImm32X86 emits `mov eax, imm32` (zero-extends rax's upper 32 bits).
func (g *codeGen) movEaxImm32X86(v int32) {
	g.blob.emitByte(0xB8)
	u := uint32(v)
	g.blob.emitBytes(byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
}

// localModRM builds the ModRM+disp bytes for `[rbp ± disp]` addressing a
// 32-bit local slot, matching the teacher's emitLoadLocal/emitStoreLocal
// disp8-vs-disp32 selection (x64.go).
func localModRM(regField byte, offset int) []byte {
	neg := -offset
	if neg >= -128 && neg <= 127 {
		return []byte{byte(0x45 | (regField << 3)), byte(int8(neg))}
	}
	modrm := byte(0x85 | (regField << 3))
	u := uint32(int32(neg))
	return []byte{modrm, byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)}
}

func (g *codeGen) loadLocalEaxX86(index int) {
	g.blob.emitByte(0x8B) // mov r32, r/m32
	g.blob.emitBytes(localModRM(0, localOffset(index))...)
}

func (g *codeGen) storeLocalEaxX86(index int) {
	g.blob.emitByte(0x89) // mov r/m32, r32
	g.blob.emitBytes(localModRM(0, localOffset(index))...)
}

func (g *codeGen) addEaxEbxX86()  { g.blob.emitBytes(0x01, 0xD8) } // add eax, ebx
func (g *codeGen) subEaxEbxX86()  { g.blob.emitBytes(0x29, 0xD8) } // sub eax, ebx
func (g *codeGen) imulEaxEbxX86() { g.blob.emitBytes(0x0F, 0xAF, 0xC3) } // imul eax, ebx
func (g *codeGen) cdqX86()        { g.blob.emitByte(0x99) }
func (g *codeGen) idivEbxX86()    { g.blob.emitBytes(0xF7, 0xFB) } // idiv ebx
func (g *codeGen) nopX86()        { g.blob.emitByte(0x90) }

func (g *codeGen) emitOneX86(class *classfile.Class, inst classfile.Instruction) bool {
	if v, ok := intConstValue(class, inst); ok {
		g.movEaxImm32X86(v)
		g.pushRaxX86()
		return true
	}

	switch inst.Op {
	case bytecode.Iload, bytecode.Iload0, bytecode.Iload1, bytecode.Iload2, bytecode.Iload3:
		g.loadLocalEaxX86(localIndexOf(inst))
		g.pushRaxX86()
	case bytecode.Istore, bytecode.Istore0, bytecode.Istore1, bytecode.Istore2, bytecode.Istore3:
		g.popRaxX86()
		g.storeLocalEaxX86(localIndexOf(inst))

	case bytecode.Iadd:
		g.popRbxX86()
		g.popRaxX86()
		g.addEaxEbxX86()
		g.pushRaxX86()
	case bytecode.Isub:
		g.popRbxX86()
		g.popRaxX86()
		g.subEaxEbxX86()
		g.pushRaxX86()
	case bytecode.Imul:
		g.popRbxX86()
		g.popRaxX86()
		g.imulEaxEbxX86()
		g.pushRaxX86()
	case bytecode.Idiv:
		g.popRbxX86()
		g.popRaxX86()
		g.cdqX86()
		g.idivEbxX86() // divide-by-zero is undefined behavior, not detected, per spec.md §4.4
		g.pushRaxX86()

	case bytecode.Ireturn:
		g.popRaxX86()
		g.epilogueX86()
	case bytecode.Return:
		g.epilogueX86()

	default:
		g.nopX86()
		return false
	}
	return true
}

// localIndexOf returns the local-variable slot a load/store instruction
// refers to, resolving the iload_N/istore_N implicit-index forms.
func localIndexOf(inst classfile.Instruction) int {
	switch inst.Op {
	case bytecode.Iload0, bytecode.Istore0:
		return 0
	case bytecode.Iload1, bytecode.Istore1:
		return 1
	case bytecode.Iload2, bytecode.Istore2:
		return 2
	case bytecode.Iload3, bytecode.Istore3:
		return 3
	default:
		return inst.LocalIndex
	}
}
