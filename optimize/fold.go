// Package optimize implements component C3, the Bytecode Optimizer: two
// destructive, in-order passes over a method's decoded instruction list
// (spec.md §4.3). Both passes preserve observable integer behavior and
// never cross a Label boundary.
package optimize

import "jvmaot/classfile"
import "jvmaot/bytecode"

// ConstantFold scans the instruction list with a sliding three-instruction
// window (a, b, c). When a and b are integer constant pushes and c is
// iadd, the window collapses to a single ldc of their 32-bit
// two's-complement sum. After a replacement the scan stays at the same
// index, so the new ldc becomes the first element of the next window and
// chained folds keep firing.
//
// Only iadd is recognized, matching spec.md's explicit restriction.
func ConstantFold(c *classfile.Class, instrs []classfile.Instruction) []classfile.Instruction {
	out := make([]classfile.Instruction, len(instrs))
	copy(out, instrs)

	i := 0
	for i+2 < len(out) {
		a := out[i]
		b := out[i+1]
		op := out[i+2]

		av, aok := constPushValue(c, a)
		bv, bok := constPushValue(c, b)
		if aok && bok && op.Kind == classfile.InstrOp && op.Op == bytecode.Iadd {
			sum := int32(uint32(av) + uint32(bv)) // 32-bit wraparound, overflow not an error
			folded := classfile.Instruction{
				Kind:         classfile.InstrOp,
				Op:           bytecode.Ldc,
				IntImmediate: sum,
				ConstIndex:   internInt(c, sum),
			}
			out = append(out[:i], append([]classfile.Instruction{folded}, out[i+3:]...)...)
			// do not advance: the folded ldc starts the next window, so a
			// fold can chain into the instructions that follow it
			continue
		}
		i++
	}
	return out
}

// constPushValue reports whether inst is an integer constant push
// (iconst_N, bipush, sipush, or an ldc of an integer pool entry) and, if
// so, its value.
func constPushValue(c *classfile.Class, inst classfile.Instruction) (int32, bool) {
	if inst.Kind != classfile.InstrOp {
		return 0, false
	}
	switch inst.Op {
	case bytecode.IconstM1, bytecode.Iconst0, bytecode.Iconst1, bytecode.Iconst2,
		bytecode.Iconst3, bytecode.Iconst4, bytecode.Iconst5:
		return bytecode.IconstValue(inst.Op), true
	case bytecode.Bipush, bytecode.Sipush:
		return inst.IntImmediate, true
	case bytecode.Ldc:
		if v, ok := c.IntConstAt(inst.ConstIndex); ok {
			return v, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// internInt returns the constant-pool index of an existing Integer entry
// equal to v, or appends a new one and returns its index. Folding must
// produce a real, resolvable ldc so the JIT round-trip path can
// re-encode the method without a dangling reference.
func internInt(c *classfile.Class, v int32) uint16 {
	for i, entry := range c.ConstantPool {
		if entry.Kind == classfile.ConstInteger && entry.IntVal == v {
			return uint16(i)
		}
	}
	idx := uint16(len(c.ConstantPool))
	c.ConstantPool = append(c.ConstantPool, classfile.Const{Kind: classfile.ConstInteger, IntVal: v})
	return idx
}
