package container

import "jvmaot/codegen"

const elfBaseVAddr = 0x400000
const elfCodeFileOffset = 0x1000

// writeELF64 produces a minimal ELF64 executable per spec.md §4.5.2: one
// PT_LOAD program header, no section headers, code region starting at
// file offset 0x1000. codeRegion is the trampoline (if any) concatenated
// with the compiled NativeBlob; entryOffset is the byte offset within
// codeRegion execution should start at (0 unless the caller is entering a
// specific method inside a multi-method concatenation).
func writeELF64(codeRegion []byte, entryOffset int, isa codegen.ISA) []byte {
	out := make([]byte, elfCodeFileOffset+len(codeRegion))

	machine := uint16(62) // EM_X86_64
	if isa == codegen.ARM64 {
		machine = 183 // EM_AARCH64
	}

	entry := uint64(elfBaseVAddr + elfCodeFileOffset + entryOffset)

	// e_ident
	out[0], out[1], out[2], out[3] = 0x7F, 'E', 'L', 'F'
	out[4] = 2 // ELFCLASS64
	out[5] = 1 // little-endian
	out[6] = 1 // EI_VERSION
	out[7] = 0 // EI_OSABI
	// out[8:16] padding, already zero

	putU16(out[16:], 2)       // e_type = ET_EXEC
	putU16(out[18:], machine) // e_machine
	putU32(out[20:], 1)       // e_version
	putU64(out[24:], entry)   // e_entry
	putU64(out[32:], 64)      // e_phoff
	putU64(out[40:], 0)       // e_shoff
	putU32(out[48:], 0)       // e_flags
	putU16(out[52:], 64)      // e_ehsize
	putU16(out[54:], 56)      // e_phentsize
	putU16(out[56:], 1)       // e_phnum
	putU16(out[58:], 0)       // e_shentsize
	putU16(out[60:], 0)       // e_shnum
	putU16(out[62:], 0)       // e_shstrndx

	// Program header at offset 64 (Elf64_Phdr, 56 bytes)
	ph := out[64:120]
	vaddr := uint64(elfBaseVAddr + elfCodeFileOffset)
	putU32(ph[0:], 1)                     // p_type = PT_LOAD
	putU32(ph[4:], 5)                     // p_flags = PF_R|PF_X
	putU64(ph[8:], elfCodeFileOffset)     // p_offset
	putU64(ph[16:], vaddr)                // p_vaddr
	putU64(ph[24:], vaddr)                // p_paddr
	putU64(ph[32:], uint64(len(codeRegion))) // p_filesz
	putU64(ph[40:], uint64(len(codeRegion))) // p_memsz
	putU64(ph[48:], 0x1000)               // p_align

	// Bytes [120, 0x1000) stay zero padding.
	copy(out[elfCodeFileOffset:], codeRegion)

	return out
}

func putU16(b []byte, v uint16) { b[0], b[1] = byte(v), byte(v>>8) }
func putU32(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}
func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}
