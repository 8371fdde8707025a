package container

import "jvmaot/codegen"

const machoCodeFileOffset = 0x1000
const machoTextVMAddr = 0x100000000

// writeMachO64 produces a minimal Mach-O 64 executable per spec.md §4.5.3:
// one LC_SEGMENT_64 (__TEXT, one __text section) and one LC_MAIN, with the
// code region starting at file offset 0x1000. entryOffset is resolved as a
// plain file offset from the image start (entryoff = entryOffset + 0x1000)
// rather than the source's vm-base-subtract-then-readd arithmetic — see
// DESIGN.md's Open Question decision.
func writeMachO64(codeRegion []byte, entryOffset int, isa codegen.ISA) []byte {
	out := make([]byte, machoCodeFileOffset+len(codeRegion))

	var cputype, cpusubtype uint32
	if isa == codegen.ARM64 {
		cputype, cpusubtype = 0x0100000C, 0
	} else {
		cputype, cpusubtype = 0x01000007, 3
	}

	const sizeofcmds = 72 + 80 + 24

	// mach_header_64, 32 bytes
	putU32(out[0:], 0xFEEDFACF) // magic MH_MAGIC_64
	putU32(out[4:], cputype)
	putU32(out[8:], cpusubtype)
	putU32(out[12:], 2)          // filetype MH_EXECUTE
	putU32(out[16:], 2)          // ncmds
	putU32(out[20:], sizeofcmds) // sizeofcmds
	putU32(out[24:], 0x200005)   // flags MH_NOUNDEFS|MH_DYLDLINK|MH_PIE
	putU32(out[28:], 0)          // reserved

	// segment_command_64, 72 bytes, at offset 32
	seg := out[32:104]
	putU32(seg[0:], 0x19) // LC_SEGMENT_64
	putU32(seg[4:], 72)   // cmdsize
	copy(seg[8:24], []byte("__TEXT"))
	putU64(seg[24:], machoTextVMAddr)                   // vmaddr
	putU64(seg[32:], uint64(len(codeRegion)))           // vmsize
	putU64(seg[40:], machoCodeFileOffset)                // fileoff
	putU64(seg[48:], uint64(len(codeRegion)))           // filesize
	putU32(seg[56:], 5)                                 // maxprot
	putU32(seg[60:], 5)                                 // initprot
	putU32(seg[64:], 1)                                 // nsects
	putU32(seg[68:], 0)                                 // flags

	// section_64, 80 bytes, at offset 104
	sect := out[104:184]
	copy(sect[0:16], []byte("__text"))
	copy(sect[16:32], []byte("__TEXT"))
	putU64(sect[32:], machoTextVMAddr+machoCodeFileOffset) // addr
	putU64(sect[40:], uint64(len(codeRegion)))             // size
	putU32(sect[48:], machoCodeFileOffset)                 // offset
	putU32(sect[52:], 4)                                   // align (2^4 = 16)
	putU32(sect[56:], 0)                                   // reloff
	putU32(sect[60:], 0)                                   // nreloc
	putU32(sect[64:], 0x80000400)                          // flags
	putU32(sect[68:], 0)                                   // reserved1
	putU32(sect[72:], 0)                                   // reserved2
	putU32(sect[76:], 0)                                   // reserved3

	// LC_MAIN, 24 bytes, at offset 184
	main := out[184:208]
	putU32(main[0:], 0x80000028) // LC_MAIN
	putU32(main[4:], 24)         // cmdsize
	putU64(main[8:], uint64(entryOffset+machoCodeFileOffset))
	putU64(main[16:], 0) // stacksize

	// Bytes [208, 0x1000) stay zero padding.
	copy(out[machoCodeFileOffset:], codeRegion)

	return out
}
