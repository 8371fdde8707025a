package codegen

import "jvmaot/bytecode"
import "jvmaot/classfile"

// AArch64 encoder, grounded on the teacher's fixed-width 32-bit
// little-endian instruction encoder (aarch64.go) narrowed to the three
// W-scratch-register set spec.md §4.4 names (w0, w1, w2) plus the X29/
// X30/SP frame registers for the prologue/epilogue.

const (
	regW0 = 0
	regW1 = 1
	regW2 = 2
	regFP = 29 // X29
	regLR = 30 // X30
	regSP = 31 // SP (also XZR in non-SP contexts)
)

func (g *codeGen) emitArm64(inst uint32) {
	g.blob.emitBytes(byte(inst), byte(inst>>8), byte(inst>>16), byte(inst>>24))
}

// emitMovZ32/emitMovK32 emit the 32-bit (Wd) MOVZ/MOVK forms.
func (g *codeGen) emitMovZ32(rd int, imm16 uint16, shift int) {
	hw := uint32(shift / 16)
	g.emitArm64(0x52800000 | (hw << 21) | (uint32(imm16) << 5) | uint32(rd&0x1f))
}

func (g *codeGen) emitMovK32(rd int, imm16 uint16, shift int) {
	hw := uint32(shift / 16)
	g.emitArm64(0x72800000 | (hw << 21) | (uint32(imm16) << 5) | uint32(rd&0x1f))
}

// loadImm32 materializes a 32-bit constant into rd using a full
// MOVZ+MOVK pair, per spec.md §9's explicit fix for the source's
// structurally-invalid single-instruction constant encoding.
func (g *codeGen) loadImm32(rd int, v int32) {
	u := uint32(v)
	g.emitMovZ32(rd, uint16(u), 0)
	g.emitMovK32(rd, uint16(u>>16), 16)
}

func (g *codeGen) addWW(rd, rn, rm int) { g.emitArm64(0x0B000000 | (uint32(rm&0x1f) << 16) | (uint32(rn&0x1f) << 5) | uint32(rd&0x1f)) }
func (g *codeGen) subWW(rd, rn, rm int) { g.emitArm64(0x4B000000 | (uint32(rm&0x1f) << 16) | (uint32(rn&0x1f) << 5) | uint32(rd&0x1f)) }
func (g *codeGen) mulWW(rd, rn, rm int) { g.emitArm64(0x1B007C00 | (uint32(rm&0x1f) << 16) | (uint32(rn&0x1f) << 5) | uint32(rd&0x1f)) }
func (g *codeGen) sdivWW(rd, rn, rm int) { g.emitArm64(0x1AC00C00 | (uint32(rm&0x1f) << 16) | (uint32(rn&0x1f) << 5) | uint32(rd&0x1f)) }

func (g *codeGen) addImmX(rd, rn int, imm12 uint32) {
	g.emitArm64(0x91000000 | ((imm12 & 0xFFF) << 10) | (uint32(rn&0x1f) << 5) | uint32(rd&0x1f))
}

func (g *codeGen) subImmX(rd, rn int, imm12 uint32) {
	g.emitArm64(0xD1000000 | ((imm12 & 0xFFF) << 10) | (uint32(rn&0x1f) << 5) | uint32(rd&0x1f))
}

func (g *codeGen) movXSP(rd, rn int) { g.addImmX(rd, rn, 0) } // MOV Xd, Xn via ADD #0 (handles SP)

// stpPre emits STP Xt1, Xt2, [Xn, #imm]! (pre-index, imm a multiple of 8).
func (g *codeGen) stpPre(rt1, rt2, rn int, offset int) {
	imm7 := uint32(offset/8) & 0x7F
	g.emitArm64(0xA9800000 | (imm7 << 15) | (uint32(rt2&0x1f) << 10) | (uint32(rn&0x1f) << 5) | uint32(rt1&0x1f))
}

// ldpPost emits LDP Xt1, Xt2, [Xn], #imm (post-index, imm a multiple of 8).
func (g *codeGen) ldpPost(rt1, rt2, rn int, offset int) {
	imm7 := uint32(offset/8) & 0x7F
	g.emitArm64(0xA8C00000 | (imm7 << 15) | (uint32(rt2&0x1f) << 10) | (uint32(rn&0x1f) << 5) | uint32(rt1&0x1f))
}

// ldurW/sturW emit LDUR/STUR Wt, [Xn, #simm9] (unscaled signed offset),
// used for the 32-bit local-variable slots addressed relative to X29.
func (g *codeGen) ldurW(rt, rn int, offset int) {
	simm9 := uint32(offset) & 0x1FF
	g.emitArm64(0xB8400000 | (simm9 << 12) | (uint32(rn&0x1f) << 5) | uint32(rt&0x1f))
}

func (g *codeGen) sturW(rt, rn int, offset int) {
	simm9 := uint32(offset) & 0x1FF
	g.emitArm64(0xB8000000 | (simm9 << 12) | (uint32(rn&0x1f) << 5) | uint32(rt&0x1f))
}

func (g *codeGen) retArm64() { g.emitArm64(0xD65F03C0) }
func (g *codeGen) nopArm64() { g.emitArm64(0xD503201F) }

func (g *codeGen) prologueArm64() {
	g.stpPre(regFP, regLR, regSP, -16) // stp x29, x30, [sp, #-16]!
	g.movXSP(regFP, regSP)             // mov x29, sp
	g.subImmX(regSP, regSP, FrameSize) // sub sp, sp, #64
}

func (g *codeGen) epilogueArm64() {
	g.addImmX(regSP, regSP, FrameSize) // add sp, sp, #64
	g.ldpPost(regFP, regLR, regSP, 16) // ldp x29, x30, [sp], #16
	g.retArm64()
}

func (g *codeGen) emitOneArm64(class *classfile.Class, inst classfile.Instruction) bool {
	if v, ok := intConstValue(class, inst); ok {
		g.loadImm32(regW0, v)
		g.pushW(regW0)
		return true
	}

	switch inst.Op {
	case bytecode.Iload, bytecode.Iload0, bytecode.Iload1, bytecode.Iload2, bytecode.Iload3:
		g.ldurW(regW0, regFP, -localOffset(localIndexOf(inst)))
		g.pushW(regW0)
	case bytecode.Istore, bytecode.Istore0, bytecode.Istore1, bytecode.Istore2, bytecode.Istore3:
		g.popW(regW0)
		g.sturW(regW0, regFP, -localOffset(localIndexOf(inst)))

	case bytecode.Iadd:
		g.popW(regW1) // b
		g.popW(regW0) // a
		g.addWW(regW0, regW0, regW1)
		g.pushW(regW0)
	case bytecode.Isub:
		g.popW(regW1)
		g.popW(regW0)
		g.subWW(regW0, regW0, regW1)
		g.pushW(regW0)
	case bytecode.Imul:
		g.popW(regW1)
		g.popW(regW0)
		g.mulWW(regW0, regW0, regW1)
		g.pushW(regW0)
	case bytecode.Idiv:
		g.popW(regW1)
		g.popW(regW0)
		g.sdivWW(regW0, regW0, regW1) // divide-by-zero is undefined behavior, not detected
		g.pushW(regW0)

	case bytecode.Ireturn:
		g.popW(regW0)
		g.epilogueArm64()
	case bytecode.Return:
		g.epilogueArm64()

	default:
		g.nopArm64()
		return false
	}
	return true
}

// pushW/popW spill a 32-bit value to/from the native stack via SP,
// matching the x86-64 emitter's use of the call stack as the operand
// stack (spec.md §4.4). AArch64 requires SP to stay 16-byte aligned
// outside of leaf sequences, so each push/pop moves SP by 16 and uses
// only the low lane; this trades stack density for always-valid
// alignment, which is immaterial to the straight-line methods in scope.
func (g *codeGen) pushW(rt int) {
	g.sturW(rt, regSP, -16)
	g.subImmX(regSP, regSP, 16)
}

func (g *codeGen) popW(rt int) {
	g.addImmX(regSP, regSP, 16)
	g.ldurW(rt, regSP, -16)
}
