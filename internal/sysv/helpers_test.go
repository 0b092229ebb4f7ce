package sysv_test

import (
	"errors"
	"testing"

	"sysvabi/internal/sysv"
	"sysvabi/internal/types"
)

func newABI() (*sysv.ABI, *types.Interner, types.Builtins) {
	in := types.NewInterner()
	return sysv.New(in), in, in.Builtins()
}

func mustPanic(t *testing.T, fn func()) *sysv.InvariantError {
	t.Helper()
	var got *sysv.InvariantError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatalf("expected panic, got none")
			}
			err, ok := r.(error)
			if !ok || !errors.As(err, &got) {
				t.Fatalf("expected *sysv.InvariantError panic, got %v", r)
			}
		}()
		fn()
	}()
	return got
}

func llString(tt interface{ LLString() string }) string {
	if tt == nil {
		return "<nil>"
	}
	return tt.LLString()
}
