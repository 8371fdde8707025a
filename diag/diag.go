// Package diag is the diagnostic sink spec.md §7 calls for: emission
// gaps (unsupported-opcode fallback to nop) and non-fatal I/O warnings
// are reported here instead of failing the compile. It wraps the
// standard log package; no third-party logging library appears anywhere
// in the retrieved example pack (see DESIGN.md).
package diag

import "log"

// Warn reports a non-fatal condition: a lossy opcode fallback, a
// PermissionSetFailed downgrade, or a failed symbol-sidecar write. It
// never aborts the caller.
func Warn(format string, args ...any) {
	log.Printf("jvmaot: warning: "+format, args...)
}
