package container

import (
	"os"

	"jvmaot/codegen"
)

// Symbol is one named entry in a debug symbol sidecar: a method's name,
// its load-time address, and its emitted code size.
type Symbol struct {
	Name  string
	Value uint64
	Size  uint64
}

// SymbolVAddr returns the runtime address a method's code region would
// load at, given the format/isa/entryOffset it was compiled with. Used to
// populate Symbol.Value so a sidecar's addresses line up with the address
// the primary container actually loads the code at.
func SymbolVAddr(format Format, isa codegen.ISA, entryOffset int) uint64 {
	if format == MachO {
		return machoTextVMAddr + machoCodeFileOffset + uint64(entryOffset)
	}
	return elfBaseVAddr + elfCodeFileOffset + uint64(entryOffset)
}

// WriteSymbolSidecar builds a standalone .symtab/.strtab-shaped debug blob
// for syms and writes it to path. This is the optional, off-by-default
// symbol table supplement (SPEC_FULL.md "Symbol table emission"): spec.md
// §4.5.2's primary ELF container has no section headers at all, so symbol
// data is never spliced into the fixed-layout primary file; it only ever
// goes here, to a sidecar a debugger can load separately.
//
// Layout (grounded on tinyrange-rtg/std/compiler/elf_x64.go's .symtab/
// .strtab construction): an 8-byte header holding the symtab and strtab
// byte lengths as little-endian u32s, then a null entry and one
// Elf64_Sym-shaped 24-byte record per symbol, followed by the name strings
// those records' st_name offsets point into.
func WriteSymbolSidecar(path string, syms []Symbol) error {
	var strtab []byte
	strtab = append(strtab, 0) // index 0 is always the empty name

	const symEntrySize = 24
	symtab := make([]byte, symEntrySize*(1+len(syms))) // entry 0 is the reserved null symbol

	for i, sym := range syms {
		nameOff := len(strtab)
		strtab = append(strtab, []byte(sym.Name)...)
		strtab = append(strtab, 0)

		off := symEntrySize * (i + 1)
		putU32(symtab[off:], uint32(nameOff)) // st_name
		symtab[off+4] = 0x12                  // st_info: STT_FUNC | STB_GLOBAL<<4
		symtab[off+5] = 0                     // st_other
		putU16(symtab[off+6:], 1)             // st_shndx: placeholder code-section index
		putU64(symtab[off+8:], sym.Value)     // st_value
		putU64(symtab[off+16:], sym.Size)     // st_size
	}

	out := make([]byte, 8, 8+len(symtab)+len(strtab))
	putU32(out[0:], uint32(len(symtab)))
	putU32(out[4:], uint32(len(strtab)))
	out = append(out, symtab...)
	out = append(out, strtab...)

	if err := os.WriteFile(path, out, 0644); err != nil {
		return ErrWriteFailed
	}
	return nil
}
