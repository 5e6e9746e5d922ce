package exception

import "github.com/yanun0323/errors"

var (
	ErrStoreClosed       = errors.New("store: closed")
	ErrKindMismatch      = errors.New("store: record kind mismatch")
	ErrKindUnsupported   = errors.New("store: record kind unsupported")
	ErrPlatformNoMapping = errors.New("store: memory mapping unsupported on this platform")
)
