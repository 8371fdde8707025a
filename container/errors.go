package container

import "errors"

// I/O error taxonomy, per spec.md §7 "I/O errors". PermissionSetFailed is
// non-fatal by contract: Write logs it via diag.Warn and still reports
// success, rather than returning it.
var ErrWriteFailed = errors.New("container: write failed")
