package decode

import (
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	"github.com/cubostratus/collector/internal/syscallmeta"
)

// buildOpenExitRecord assembles the raw body (length array + payloads) for
// an "open" exit event (syscall id 3: fd, name, flags, mode), matching the
// parameter shape declared in syscallmeta.DefaultTable.
func buildOpenExitRecord() (EventHeader, []byte) {
	name := []byte("/tmp\x00")
	lengths := []uint16{8, uint16(len(name)), 4, 4}

	body := make([]byte, 0, 8*len(lengths)/4+int(lengths[0])+int(lengths[1])+int(lengths[2])+int(lengths[3]))
	for _, l := range lengths {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, l)
		body = append(body, b...)
	}

	fdBuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(fdBuf, uint64(7))
	body = append(body, fdBuf...)

	body = append(body, name...)

	flagsBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(flagsBuf, 0x241)
	body = append(body, flagsBuf...)

	modeBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(modeBuf, 0644)
	body = append(body, modeBuf...)

	hdr := EventHeader{
		TS:  1_700_000_000_000_000_000,
		TID: 42,
		Len: uint32(HeaderSize + len(body)),
		ID:  3,
	}
	return hdr, body
}

func TestDecodeRecord_OpenExit(t *testing.T) {
	hdr, body := buildOpenExitRecord()

	evt, ok := DecodeRecord(hdr, body, syscallmeta.DefaultTable)
	if !ok {
		t.Fatal("DecodeRecord returned ok=false for a known syscall id")
	}

	wantTS := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	if !evt.Timestamp.Equal(wantTS) {
		t.Errorf("Timestamp = %v, want %v", evt.Timestamp, wantTS)
	}
	if evt.Name != "open" {
		t.Errorf("Name = %q, want %q", evt.Name, "open")
	}
	if evt.Diagnostics.LengthMismatch {
		t.Error("Diagnostics.LengthMismatch = true, want false")
	}

	if got := evt.Params["fd"].String(); got != "7" {
		t.Errorf("params[fd] = %q, want %q", got, "7")
	}
	if got := evt.Params["name"].String(); got != "/tmp" {
		t.Errorf("params[name] = %q, want %q", got, "/tmp")
	}
	if got := evt.Params["flags"].String(); got != "577" {
		t.Errorf("params[flags] = %q, want %q", got, "577")
	}
	if got := evt.Params["mode"].String(); got != "420" {
		t.Errorf("params[mode] = %q, want %q", got, "420")
	}
}

func TestDecodeRecord_UnknownID(t *testing.T) {
	hdr := EventHeader{TS: 1, TID: 1, Len: HeaderSize, ID: 65535}
	_, ok := DecodeRecord(hdr, nil, syscallmeta.DefaultTable)
	if ok {
		t.Error("DecodeRecord returned ok=true for an out-of-range syscall id")
	}
}

func TestDecodedEvent_MarshalJSON(t *testing.T) {
	hdr, body := buildOpenExitRecord()
	evt, ok := DecodeRecord(hdr, body, syscallmeta.DefaultTable)
	if !ok {
		t.Fatal("DecodeRecord returned ok=false")
	}

	out, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}

	if got["ts"] != "2023-11-14T22:13:20Z" {
		t.Errorf("ts = %v, want RFC3339Nano with no fractional part for a whole-second timestamp", got["ts"])
	}
	if got["name"] != "open" {
		t.Errorf("name = %v, want \"open\"", got["name"])
	}
	params, ok := got["params"].(map[string]any)
	if !ok {
		t.Fatalf("params is not an object: %#v", got["params"])
	}
	if params["fd"] != float64(7) {
		t.Errorf("params[fd] = %v, want 7", params["fd"])
	}
	if params["name"] != "/tmp" {
		t.Errorf("params[name] = %v, want \"/tmp\"", params["name"])
	}
}

func TestDecodeRecord_LengthMismatch(t *testing.T) {
	hdr, body := buildOpenExitRecord()
	hdr.Len += 10 // corrupt the declared length

	evt, ok := DecodeRecord(hdr, body, syscallmeta.DefaultTable)
	if !ok {
		t.Fatal("DecodeRecord returned ok=false")
	}
	if !evt.Diagnostics.LengthMismatch {
		t.Error("Diagnostics.LengthMismatch = false, want true after corrupting hdr.Len")
	}
}
