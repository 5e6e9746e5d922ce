package errors

import (
	"errors"
	"testing"
)

var errWrapped = errors.New("wrapped error")

func BenchmarkWrap(b *testing.B) {
	b.Run("wrap nil", func(b *testing.B) {
		for b.Loop() {
			err := Wrap(nil, "read record")
			_ = err
		}
	})

	b.Run("wrap error", func(b *testing.B) {
		for b.Loop() {
			err := Wrap(errWrapped, "read record")
			_ = err.Error()
		}
	})

	b.Run("wrapf error", func(b *testing.B) {
		for b.Loop() {
			err := Wrapf(errWrapped, "read record %d", 42)
			_ = err.Error()
		}
	})
}
