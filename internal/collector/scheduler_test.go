package collector

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/cubostratus/collector/internal/ringbuf"
	"github.com/cubostratus/collector/internal/syscallmeta"
)

// fakeReader is an in-memory ringReader used to test the scheduler without
// a real device or platform support.
type fakeReader struct {
	cpu        int
	events     [][]byte // raw header+body records, in order
	pos        int
	refreshed  int
	readable   uint32
}

func (f *fakeReader) CPUIndex() int { return f.cpu }

func (f *fakeReader) Remaining() uint32 {
	if f.pos >= len(f.events) {
		return 0
	}
	var n uint32
	for _, e := range f.events[f.pos:] {
		n += uint32(len(e))
	}
	return n
}

func (f *fakeReader) ReadableBytes() uint32 { return f.readable }

func (f *fakeReader) ConsumeEvent() ([]byte, error) {
	e := f.events[f.pos]
	f.pos++
	return e, nil
}

func (f *fakeReader) Refresh() { f.refreshed++ }

func (f *fakeReader) Counters() ringbuf.Counters { return ringbuf.Counters{} }

func (f *fakeReader) Close() error { return nil }

// closeEvent builds a raw "close" enter event (syscall id 4, one Fd param).
func closeEvent(fd int64, tid uint64) []byte {
	body := make([]byte, 2+8) // one u16 length + 8-byte fd payload
	binary.LittleEndian.PutUint16(body[0:2], 8)
	binary.LittleEndian.PutUint64(body[2:10], uint64(fd))

	buf := make([]byte, 22+len(body))
	binary.LittleEndian.PutUint64(buf[0:8], 1) // ts
	binary.LittleEndian.PutUint64(buf[8:16], tid)
	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(buf)))
	binary.LittleEndian.PutUint16(buf[20:22], 4) // id=4, close enter
	copy(buf[22:], body)
	return buf
}

func TestScheduler_LowIndexBias(t *testing.T) {
	cpu0 := &fakeReader{cpu: 0, events: [][]byte{closeEvent(1, 1)}}
	cpu1 := &fakeReader{cpu: 1, events: [][]byte{closeEvent(2, 2)}}

	s := New(nil, syscallmeta.DefaultTable)
	s.readers = []ringReader{cpu0, cpu1}

	evt, ok := s.Next(context.Background())
	if !ok {
		t.Fatal("Next returned ok=false with a pending event on cpu0")
	}
	if got := evt.Params["fd"].String(); got != "1" {
		t.Errorf("expected cpu0's event (fd=1) first, got fd=%s", got)
	}
}

func TestScheduler_NoDuplication(t *testing.T) {
	cpu0 := &fakeReader{cpu: 0, events: [][]byte{closeEvent(1, 1), closeEvent(2, 2), closeEvent(3, 3)}}
	s := New(nil, syscallmeta.DefaultTable)
	s.readers = []ringReader{cpu0}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		evt, ok := s.Next(context.Background())
		if !ok {
			t.Fatalf("call %d: expected an event", i)
		}
		fd := evt.Params["fd"].String()
		if seen[fd] {
			t.Fatalf("fd=%s returned more than once", fd)
		}
		seen[fd] = true
	}

	// Window now empty: Next should enter refresh and report no event,
	// without re-returning any previously consumed event.
	_, ok := s.Next(context.Background())
	if ok {
		t.Fatal("expected no event after window exhausted")
	}
	if cpu0.refreshed != 1 {
		t.Errorf("refreshed = %d, want 1", cpu0.refreshed)
	}
}

func TestScheduler_BackoffResetAfterFourEmptyPolls(t *testing.T) {
	cpu0 := &fakeReader{cpu: 0}
	s := New(nil, syscallmeta.DefaultTable)
	s.readers = []ringReader{cpu0}

	start := time.Now()
	for i := 0; i < 5; i++ {
		s.Next(context.Background())
	}
	elapsed := time.Since(start)

	// Four sleeps of 30ms then a reset on the fifth: elapsed should be
	// well under 5*30ms.
	if elapsed >= 150*time.Millisecond {
		t.Errorf("elapsed = %v, expected back-off reset to skip the 5th sleep", elapsed)
	}
	if cpu0.refreshed != 5 {
		t.Errorf("refreshed = %d, want 5", cpu0.refreshed)
	}
}
