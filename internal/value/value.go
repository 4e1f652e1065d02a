// Package value implements the typed scalar union produced by the parameter
// decoder. A Value wraps exactly one of a string or a fixed-width signed or
// unsigned integer, or carries no payload at all.
package value

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies which alternative of Value is populated.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
)

// Value is a sum type mirroring the decoder's Rust origin (String | Int8 |
// Int16 | Int32 | Int64 | UInt8 | UInt16 | UInt32 | UInt64 | None). Exactly
// one field is meaningful, selected by Kind. Zero value is None.
type Value struct {
	kind Kind
	str  string
	i    int64
	u    uint64
}

func None() Value                { return Value{kind: KindNone} }
func String(s string) Value      { return Value{kind: KindString, str: s} }
func Int8(v int8) Value          { return Value{kind: KindInt8, i: int64(v)} }
func Int16(v int16) Value        { return Value{kind: KindInt16, i: int64(v)} }
func Int32(v int32) Value        { return Value{kind: KindInt32, i: int64(v)} }
func Int64(v int64) Value        { return Value{kind: KindInt64, i: v} }
func UInt8(v uint8) Value        { return Value{kind: KindUInt8, u: uint64(v)} }
func UInt16(v uint16) Value      { return Value{kind: KindUInt16, u: uint64(v)} }
func UInt32(v uint32) Value      { return Value{kind: KindUInt32, u: uint64(v)} }
func UInt64(v uint64) Value      { return Value{kind: KindUInt64, u: v} }

// Kind reports which alternative is populated.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v carries no payload.
func (v Value) IsNone() bool { return v.kind == KindNone }

// String renders v for logging; it is not used for JSON encoding.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "<none>"
	case KindString:
		return v.str
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return strconv.FormatUint(v.u, 10)
	default:
		return fmt.Sprintf("<unknown kind %d>", v.kind)
	}
}

// MarshalJSON renders v untagged, matching the original encoder's
// #[serde(untagged)] behavior: a string becomes a JSON string, any integer
// variant becomes a JSON number, and None becomes JSON null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNone:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return []byte(strconv.FormatUint(v.u, 10)), nil
	default:
		return nil, fmt.Errorf("value: unknown kind %d", v.kind)
	}
}

var _ json.Marshaler = Value{}
