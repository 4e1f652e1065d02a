package cubostratusc

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesByKindOnly(t *testing.T) {
	a := New(TooManyCollectors, "device busy")
	b := Wrap(TooManyCollectors, "different message", errors.New("ebusy"))

	if !errors.Is(a, b) {
		t.Error("expected errors of the same Kind to match via errors.Is")
	}

	c := New(DeviceError, "insufficient privileges")
	if errors.Is(a, c) {
		t.Error("expected errors of different Kind not to match")
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("mmap failed")
	wrapped := Wrap(RingBufferMapping, "map data region", cause)

	if !errors.Is(wrapped, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestError_WrappedByFmtErrorf(t *testing.T) {
	sentinel := New(UnknownConfigPath, "no file found")
	outer := fmt.Errorf("startup failed: %w", sentinel)

	if !errors.Is(outer, sentinel) {
		t.Error("expected errors.Is to see through an outer fmt.Errorf wrap")
	}
}
