package classfile

import "errors"

// Error taxonomy, per spec.md §7 "Input errors".
var (
	ErrClassNotFound      = errors.New("classfile: class not found")
	ErrMalformedClass     = errors.New("classfile: malformed class file")
	ErrUnsupportedConstant = errors.New("classfile: unsupported constant-pool entry")
	ErrNoExecutableMethod = errors.New("classfile: no executable method")
)
