package exception

import "github.com/yanun0323/errors"

// Format errors are fatal for the file they were raised on only.
var (
	ErrTruncated    = errors.New("format: truncated")
	ErrUnknownMagic = errors.New("format: unknown magic")
	ErrSizeMismatch = errors.New("format: struct size mismatch")
)
