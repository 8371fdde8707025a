// Package jvmaot wires components C1-C5 into the invocation surface
// spec.md §6 names: analyze, jit_rewrite, compile_method_native,
// compile_class_native, compile_expression. It owns no state across
// calls (spec.md §5: "no shared mutable state exists across compile
// calls").
package jvmaot

import (
	"errors"

	"jvmaot/analysis"
	"jvmaot/bytecode"
	"jvmaot/classfile"
	"jvmaot/codegen"
	"jvmaot/container"
	"jvmaot/diag"
	"jvmaot/optimize"
)

// Re-exported error taxonomy (spec.md §7), so callers need only import
// this package.
var (
	ErrClassNotFound       = classfile.ErrClassNotFound
	ErrMalformedClass      = classfile.ErrMalformedClass
	ErrUnsupportedConstant = classfile.ErrUnsupportedConstant
	ErrNoExecutableMethod  = classfile.ErrNoExecutableMethod
	ErrWriteFailed         = container.ErrWriteFailed
	ErrInternal            = errors.New("jvmaot: internal error")
)

// Analyze implements `analyze(class)`: parses class and returns the
// per-method MethodInfo map, keyed by "name descriptor".
func Analyze(data []byte) (map[string]analysis.MethodInfo, error) {
	c, err := classfile.Parse(data)
	if err != nil {
		return nil, err
	}
	return analysis.AnalyzeAll(c), nil
}

// JITRewrite implements `jit_rewrite(class)`: decodes, applies constant
// folding and dead-code elimination to every method, and re-encodes. The
// result is loadable class bytes preserving every other structural
// element byte-for-byte (spec.md §9, "pass-through of class metadata").
func JITRewrite(data []byte) ([]byte, error) {
	c, err := classfile.Parse(data)
	if err != nil {
		return nil, err
	}
	for i := range c.Methods {
		rewritten := optimize.ConstantFold(c, c.Methods[i].Instructions)
		rewritten = optimize.EliminateDeadCode(rewritten)
		c.Methods[i].Instructions = rewritten
	}
	out, err := classfile.Write(c)
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

// optimizedInstructions runs C3 over a method's instructions when fold is
// requested, otherwise returns them unchanged.
func optimizedInstructions(c *classfile.Class, m classfile.Method, fold bool) []classfile.Instruction {
	if !fold {
		return m.Instructions
	}
	instrs := optimize.ConstantFold(c, m.Instructions)
	return optimize.EliminateDeadCode(instrs)
}

// CompileMethodNative implements `compile_method_native`: selects one
// method by "name" or "name descriptor", optionally folds/DCEs it, emits
// native code for isa, wraps it in a trampoline and format container, and
// writes outPath. When symbols is set, a debug-only sidecar named
// outPath+".symtab" is written alongside it (SPEC_FULL.md's optional
// symbol-table supplement; never spliced into the primary file itself).
func CompileMethodNative(data []byte, selector string, outPath string, format container.Format, isa codegen.ISA, fold bool, symbols bool) error {
	c, err := classfile.Parse(data)
	if err != nil {
		return err
	}

	name, descriptor := splitSelector(selector)
	m, ok := c.Method(name, descriptor)
	if !ok {
		return classfile.ErrNoExecutableMethod
	}

	m.Instructions = optimizedInstructions(c, m, fold)
	blob := codegen.Emit(c, m, isa)
	if err := container.Write(blob, 0, isa, format, outPath); err != nil {
		return err
	}
	if symbols {
		trampLen := len(container.TrampolineFor(isa, format))
		sym := container.Symbol{Name: name, Value: container.SymbolVAddr(format, isa, trampLen), Size: uint64(len(blob.Bytes))}
		if err := container.WriteSymbolSidecar(outPath+".symtab", []container.Symbol{sym}); err != nil {
			diag.Warn("could not write symbol sidecar for %s: %v", outPath, err)
		}
	}
	return nil
}

// CompileClassNative implements `compile_class_native`: compiles every
// method in class-file order and concatenates the resulting NativeBlobs
// with no inter-method linkage, per spec.md §5's ordering rule. Entry is
// the file offset of the first emitted method. When symbols is set, a
// sidecar named outPath+".symtab" carries one entry per method, each
// addressed at its offset within the concatenated blob.
func CompileClassNative(data []byte, outPath string, format container.Format, isa codegen.ISA, fold bool, symbols bool) error {
	c, err := classfile.Parse(data)
	if err != nil {
		return err
	}
	if len(c.Methods) == 0 {
		return classfile.ErrNoExecutableMethod
	}

	trampLen := len(container.TrampolineFor(isa, format))
	var combined codegen.NativeBlob
	var syms []container.Symbol
	for _, m := range c.Methods {
		m.Instructions = optimizedInstructions(c, m, fold)
		blob := codegen.Emit(c, m, isa)
		offset := trampLen + len(combined.Bytes)
		if symbols {
			syms = append(syms, container.Symbol{
				Name:  m.Name,
				Value: container.SymbolVAddr(format, isa, offset),
				Size:  uint64(len(blob.Bytes)),
			})
		}
		combined.Bytes = append(combined.Bytes, blob.Bytes...)
	}
	if err := container.Write(combined, 0, isa, format, outPath); err != nil {
		return err
	}
	if symbols {
		if err := container.WriteSymbolSidecar(outPath+".symtab", syms); err != nil {
			diag.Warn("could not write symbol sidecar for %s: %v", outPath, err)
		}
	}
	return nil
}

// CompileExpression implements `compile_expression`: compiles a single
// literal integer "method" (push the literal, return it) directly,
// without a class-file — useful for the E1/E7-style smoke scenarios in
// spec.md §8.
func CompileExpression(literal int32, outPath string, format container.Format, isa codegen.ISA) error {
	m := classfile.Method{
		Name:       "compile_expression",
		Descriptor: "()I",
		Instructions: []classfile.Instruction{
			{Kind: classfile.InstrOp, Op: bytecode.Sipush, IntImmediate: literal},
			{Kind: classfile.InstrOp, Op: bytecode.Ireturn},
		},
	}
	blob := codegen.Emit(&classfile.Class{}, m, isa)
	return container.Write(blob, 0, isa, format, outPath)
}

// splitSelector parses a "name" or "name descriptor" selector string.
func splitSelector(selector string) (name, descriptor string) {
	for i := 0; i < len(selector); i++ {
		if selector[i] == ' ' {
			return selector[:i], selector[i+1:]
		}
	}
	return selector, ""
}
