package container

import "jvmaot/codegen"

// TrampolineFor returns the fixed ISA-specific trampoline that precedes a
// compiled method's NativeBlob in the output file: it calls into the blob
// and, once the blob returns, exits the process with the blob's return
// value as the exit code (spec.md §4.5.1). Returns nil when the
// target/format combination has no trampoline (Mach-O on AArch64, per the
// documented inherited limitation — see DESIGN.md).
func TrampolineFor(isa codegen.ISA, format Format) []byte {
	if format == MachO && isa == codegen.ARM64 {
		return nil
	}
	if isa == codegen.ARM64 {
		return trampolineARM64Linux()
	}
	return trampolineX86_64()
}

// trampolineX86_64 is spec.md §4.5.1's exact 17 bytes:
//
//	E8 0C 00 00 00        call rel32 -> +12
//	48 89 C7              mov rdi, rax
//	48 C7 C0 3C 00 00 00  mov rax, 60
//	0F 05                 syscall
func trampolineX86_64() []byte {
	return []byte{
		0xE8, 0x0C, 0x00, 0x00, 0x00,
		0x48, 0x89, 0xC7,
		0x48, 0xC7, 0xC0, 0x3C, 0x00, 0x00, 0x00,
		0x0F, 0x05,
	}
}

// trampolineARM64Linux follows the same shape: branch-with-link into the
// blob, then exit(x0) via svc #0 with the Linux exit syscall number (93)
// in x8. The blob's own `ret` returns control to the instruction right
// after the `bl`, carrying its result in w0/x0 — exactly the register the
// exit syscall expects its first argument in, so no register move is
// needed.
func trampolineARM64Linux() []byte {
	// bl +12 (3 instructions forward, imm26 = 12/4 = 3)
	bl := u32le(0x94000000 | 3)
	// movz x8, #93
	movz := u32le(0xD2800000 | (93 << 5) | 8)
	// svc #0
	svc := u32le(0xD4000001)
	out := make([]byte, 0, 12)
	out = append(out, bl...)
	out = append(out, movz...)
	out = append(out, svc...)
	return out
}

func u32le(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
