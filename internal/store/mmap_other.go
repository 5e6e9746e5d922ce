//go:build !unix

package store

import (
	"os"

	"mdlog/pkg/exception"
)

func mapFile(*os.File, int) ([]byte, error) {
	return nil, exception.ErrPlatformNoMapping
}

func unmapFile([]byte) error {
	return nil
}
