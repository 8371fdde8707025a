// Package analysis implements component C2, the Bytecode Analyzer: a
// pure classification pass over a decoded method that produces counts
// used both for reporting and for the "hot method" heuristic.
package analysis

import (
	"fmt"

	"jvmaot/bytecode"
	"jvmaot/classfile"
)

// MethodInfo is the per-method analysis record described in spec.md §3.
type MethodInfo struct {
	InstructionCount int
	ArithmeticOps    int
	MethodCallCount  int
	FieldAccessCount int
	BranchCount      int
	ReturnCount      int
}

// IsHot implements §3's derived predicate:
// instruction_count > 10 ∨ arithmetic_ops > 3 ∨ branch_count > 2.
func (mi MethodInfo) IsHot() bool {
	return mi.InstructionCount > 10 || mi.ArithmeticOps > 3 || mi.BranchCount > 2
}

// Reason names which disjunct of IsHot fired, or "" if the method is not
// hot. Not required by spec.md; added for CLI/diagnostic readability.
func (mi MethodInfo) Reason() string {
	switch {
	case mi.InstructionCount > 10:
		return fmt.Sprintf("instruction_count=%d > 10", mi.InstructionCount)
	case mi.ArithmeticOps > 3:
		return fmt.Sprintf("arithmetic_ops=%d > 3", mi.ArithmeticOps)
	case mi.BranchCount > 2:
		return fmt.Sprintf("branch_count=%d > 2", mi.BranchCount)
	default:
		return ""
	}
}

// Analyze classifies a method's instructions per spec.md §4.2's table.
// It is pure: calling it twice on the same method yields equal results
// (testable property 1 in spec.md §8).
func Analyze(m classfile.Method) MethodInfo {
	var mi MethodInfo
	for _, inst := range m.Instructions {
		if inst.Kind != classfile.InstrOp {
			continue // Label/LineNumber are not counted
		}
		mi.InstructionCount++
		switch bytecode.CategoryOf(inst.Op) {
		case bytecode.CategoryArithmetic:
			mi.ArithmeticOps++
		case bytecode.CategoryReturn:
			mi.ReturnCount++
		case bytecode.CategoryInvoke:
			mi.MethodCallCount++
		case bytecode.CategoryField:
			mi.FieldAccessCount++
		case bytecode.CategoryBranch:
			mi.BranchCount++
		}
	}
	return mi
}

// AnalyzeAll analyzes every method of a class, keyed by "name descriptor"
// per §6's "MethodInfo map" invocation surface.
func AnalyzeAll(c *classfile.Class) map[string]MethodInfo {
	out := make(map[string]MethodInfo, len(c.Methods))
	for _, m := range c.Methods {
		out[m.Name+" "+m.Descriptor] = Analyze(m)
	}
	return out
}
