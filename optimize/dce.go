package optimize

import "jvmaot/bytecode"
import "jvmaot/classfile"

// isReturn reports whether op is one of the source VM's return forms.
func isReturn(op bytecode.Opcode) bool {
	return bytecode.CategoryOf(op) == bytecode.CategoryReturn
}

// EliminateDeadCode drops, for every return instruction, all non-metadata
// successors up to (but not including) the next Label — never crossing a
// Label boundary, and preserving LineNumber/frame metadata nodes that sit
// between the return and that label, per spec.md §4.3.
func EliminateDeadCode(instrs []classfile.Instruction) []classfile.Instruction {
	out := make([]classfile.Instruction, 0, len(instrs))

	i := 0
	for i < len(instrs) {
		inst := instrs[i]
		out = append(out, inst)
		i++

		if inst.Kind != classfile.InstrOp || !isReturn(inst.Op) {
			continue
		}

		// Skip everything until (not including) the next Label, keeping
		// metadata nodes in place.
		for i < len(instrs) && instrs[i].Kind != classfile.InstrLabel {
			if instrs[i].Kind == classfile.InstrLineNumber {
				out = append(out, instrs[i])
			}
			i++
		}
		// i now points at the next Label (or len(instrs) if none exists,
		// per spec.md: "If no Label ever follows, drop to end of list").
	}

	return out
}
