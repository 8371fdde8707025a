// Package container implements component C5, the Container Writer:
// wraps a trampoline plus a compiled NativeBlob into a loadable ELF64 or
// Mach-O 64 executable and sets it executable on disk, grounded on the
// teacher's per-platform os.WriteFile+os.Chmod writers (backend_linux_*.go,
// backend_darwin_arm64.go) narrowed to this spec's two fixed layouts.
package container

import (
	"os"

	"jvmaot/codegen"
	"jvmaot/diag"
)

// Format selects the target container format.
type Format int

const (
	ELF Format = iota
	MachO
)

// Write assembles the trampoline (if any) and code into the fixed-layout
// container for format/isa, writes it to path, and sets rwxr-xr-x
// permissions. entryOffset is the byte offset within the trampoline+code
// region execution should start at (0 for a single compiled method).
//
// A failure to write the file is reported as ErrWriteFailed. A failure to
// set POSIX permission bits is non-fatal per spec.md §7: it is logged via
// diag.Warn and Write still reports success, matching §4.5.4's
// best-effort fallback.
func Write(blob codegen.NativeBlob, entryOffset int, isa codegen.ISA, format Format, path string) error {
	tramp := TrampolineFor(isa, format)
	codeRegion := make([]byte, 0, len(tramp)+len(blob.Bytes))
	codeRegion = append(codeRegion, tramp...)
	codeRegion = append(codeRegion, blob.Bytes...)

	var file []byte
	switch format {
	case MachO:
		file = writeMachO64(codeRegion, entryOffset, isa)
	default:
		file = writeELF64(codeRegion, entryOffset, isa)
	}

	if err := os.WriteFile(path, file, 0755); err != nil {
		return ErrWriteFailed
	}
	if err := os.Chmod(path, 0755); err != nil {
		diag.Warn("could not set rwxr-xr-x on %s: %v", path, err)
	}
	return nil
}
