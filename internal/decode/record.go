// Package decode turns raw on-wire syscall records into typed DecodedEvents.
// It is the only package that walks the driver's packed binary layout;
// everything downstream sees value.Value and Go strings.
package decode

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cubostratus/collector/internal/syscallmeta"
	"github.com/cubostratus/collector/internal/value"
)

// HeaderSize is the fixed, packed size of EventHeader on the wire: ts(8) +
// tid(8) + len(4) + id(2).
const HeaderSize = 8 + 8 + 4 + 2

// EventHeader is the fixed 22-byte prefix of every on-wire event.
type EventHeader struct {
	TS  uint64 // nanoseconds since Unix epoch
	TID uint64
	Len uint32 // total bytes including this header
	ID  uint16 // synthetic syscall id, indexes syscallmeta.Table
}

// ParseEventHeader reads an EventHeader from the first HeaderSize bytes of
// buf. It returns an error if buf is shorter than HeaderSize.
func ParseEventHeader(buf []byte) (EventHeader, error) {
	if len(buf) < HeaderSize {
		return EventHeader{}, fmt.Errorf("decode: short event header: got %d bytes, want %d", len(buf), HeaderSize)
	}
	return EventHeader{
		TS:  binary.LittleEndian.Uint64(buf[0:8]),
		TID: binary.LittleEndian.Uint64(buf[8:16]),
		Len: binary.LittleEndian.Uint32(buf[16:20]),
		ID:  binary.LittleEndian.Uint16(buf[20:22]),
	}, nil
}

// Diagnostics carries soft, non-fatal decode anomalies. It is never used to
// reject a record; it exists so the collector wiring can count and log
// anomalies without the core treating them as errors.
type Diagnostics struct {
	// LengthMismatch is true when the number of bytes actually consumed
	// while decoding the record's parameters did not equal the header's Len
	// field (resolves the "no verification" open question: recorded as a
	// drop-reason-adjacent counter, never an error).
	LengthMismatch bool
}

// DecodedEvent is one fully decoded syscall record.
type DecodedEvent struct {
	Timestamp   time.Time
	TID         uint64
	Name        string
	Params      map[string]value.Value
	Diagnostics Diagnostics
}

// wireEvent is the outbound JSON shape from spec §6: ts at full nanosecond
// precision (resolved open question 1 — the driver's ts field is not
// truncated anywhere on the way to the wire), name, and untagged params.
type wireEvent struct {
	TS     string                  `json:"ts"`
	Name   string                  `json:"name"`
	Params map[string]value.Value `json:"params"`
}

// MarshalJSON encodes the event exactly as spec §6 describes the outbound
// payload: one JSON object per event with ts (RFC 3339 UTC, nanosecond
// precision), name, and params.
func (e DecodedEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{
		TS:     e.Timestamp.UTC().Format(time.RFC3339Nano),
		Name:   e.Name,
		Params: e.Params,
	})
}

// DecodeRecord decodes one on-wire event given its header and the bytes
// immediately following the header (the length array followed by the
// concatenated parameter payloads — body must NOT include the header
// itself). It returns (DecodedEvent{}, false) when hdr.ID has no entry in
// table; per spec this is the "unknown syscall id, drop silently" path, not
// an error.
func DecodeRecord(hdr EventHeader, body []byte, table syscallmeta.Table) (DecodedEvent, bool) {
	meta, ok := table.Lookup(hdr.ID)
	if !ok {
		return DecodedEvent{}, false
	}

	cur := NewCursor(body)

	lengths := make([]uint16, meta.NParams)
	for i := 0; i < meta.NParams; i++ {
		l, err := cur.ReadUint16()
		if err != nil {
			// Length array itself is truncated; nothing sound to decode.
			return DecodedEvent{}, false
		}
		lengths[i] = l
	}

	params := make(map[string]value.Value, meta.NParams)
	for i := 0; i < meta.NParams; i++ {
		payload, err := cur.Take(int(lengths[i]))
		if err != nil {
			// Payload shorter than declared; stop decoding remaining params
			// but keep what was already recovered rather than dropping the
			// whole record.
			break
		}
		var desc syscallmeta.ParamDescriptor
		if i < len(meta.Params) {
			desc = meta.Params[i]
		}
		params[desc.Name] = DecodeParam(desc, payload)
	}

	consumed := HeaderSize + cur.Pos()
	diag := Diagnostics{LengthMismatch: uint32(consumed) != hdr.Len}

	return DecodedEvent{
		Timestamp:   time.Unix(0, int64(hdr.TS)).UTC(),
		TID:         hdr.TID,
		Name:        meta.Name,
		Params:      params,
		Diagnostics: diag,
	}, true
}
