// Package cubostratusc holds the collector's shared error taxonomy (spec
// §7): a small set of named failure kinds threaded through ringbuf and
// config, following the teacher's style of wrapping causes with
// fmt.Errorf("...: %w", err) but adding Is/Unwrap support so callers can
// branch on failure kind with errors.Is instead of string matching.
package cubostratusc

import (
	"errors"
	"fmt"
)

// Kind enumerates the startup-failure taxonomy from spec §7.
type Kind int

const (
	// RingBufferMapping means mmap of the data or control region failed.
	RingBufferMapping Kind = iota
	// TooManyCollectors means a device is already attached to another
	// consumer (EBUSY on open).
	TooManyCollectors
	// DeviceError means the device could not be opened for a reason other
	// than "not present" or "busy".
	DeviceError
	// UnknownConfigPath means no configuration file was found.
	UnknownConfigPath
	// ConfigParseError means a configuration file was found but is
	// malformed.
	ConfigParseError
)

func (k Kind) String() string {
	switch k {
	case RingBufferMapping:
		return "ring_buffer_mapping"
	case TooManyCollectors:
		return "too_many_collectors"
	case DeviceError:
		return "device_error"
	case UnknownConfigPath:
		return "unknown_config_path"
	case ConfigParseError:
		return "config_parse_error"
	default:
		return "unknown"
	}
}

// Error is the collector's typed startup error. Two Errors compare equal
// under errors.Is when their Kind matches, regardless of Msg or wrapped
// cause — callers branch on "what kind of failure", not on message text.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, enabling
// errors.Is(err, cubostratusc.New(cubostratusc.TooManyCollectors, "")) style
// checks without comparing messages.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// New constructs an Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an Error wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}
