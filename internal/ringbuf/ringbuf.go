// Package ringbuf implements per-CPU lock-free traversal of the kernel
// capture driver's memory-mapped rings: opening /dev/sysdigN, mapping its
// data and control regions, computing the readable window, and advancing
// the consumer cursor. The kernel is the sole writer of each ring; this
// package is the sole reader, making every ring a classic
// single-producer/single-consumer queue.
package ringbuf

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"
)

// RingSize is the logical size of one ring in bytes. The driver double-maps
// the data region at 2*RingSize so any event straddling the logical wrap
// point is readable as a flat range.
const RingSize = 8 * 1024 * 1024

// ControlSize is the packed, fixed size of RingControl on the wire: two
// uint32 cursors plus five uint64 counters.
const ControlSize = 4 + 4 + 8*5

// RingControl mirrors the kernel-shared control page: a producer cursor
// (Head, kernel-owned), a consumer cursor (Tail, userspace-owned), and five
// read-only hint counters. It wraps a raw mmap'd byte slice rather than a Go
// struct so that the cursor fields can be accessed with the acquire/release
// semantics the kernel-userspace handoff requires; casting a Go struct over
// shared memory would not give that control.
type RingControl struct {
	buf []byte
}

// control field byte offsets within the packed layout.
const (
	offHead             = 0
	offTail             = 4
	offNumSyscalls      = 8
	offNumDropsBuffer   = 16
	offNumDropsPF       = 24
	offNumPreemptions   = 32
	offNumCtxSwitches   = 40
)

// wrapControl wraps buf (which must be at least ControlSize bytes, typically
// an mmap'd region) as a RingControl view.
func wrapControl(buf []byte) *RingControl {
	return &RingControl{buf: buf}
}

// Head returns the kernel's write cursor with an acquire load: the reader
// must not look at event bytes addressed by a stale Head value.
func (c *RingControl) Head() uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&c.buf[offHead])))
}

// Tail returns the reader's own published read cursor.
func (c *RingControl) Tail() uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&c.buf[offTail])))
}

// SetTail publishes a new read cursor with a release store: the kernel must
// not observe a Tail advance until every byte up to it has been consumed.
func (c *RingControl) SetTail(v uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&c.buf[offTail])), v)
}

// Counters is a snapshot of the five read-only kernel hint counters.
type Counters struct {
	NumSyscalls        uint64
	NumDropsBuffer     uint64
	NumDropsPageFault  uint64
	NumPreemptions     uint64
	NumContextSwitches uint64
}

// Counters reads the five hint counters. They are not used for any core
// decision (the design note treats them as hints); the admin surface
// surfaces them for observability.
func (c *RingControl) Counters() Counters {
	return Counters{
		NumSyscalls:        binary.LittleEndian.Uint64(c.buf[offNumSyscalls:]),
		NumDropsBuffer:     binary.LittleEndian.Uint64(c.buf[offNumDropsBuffer:]),
		NumDropsPageFault:  binary.LittleEndian.Uint64(c.buf[offNumDropsPF:]),
		NumPreemptions:     binary.LittleEndian.Uint64(c.buf[offNumPreemptions:]),
		NumContextSwitches: binary.LittleEndian.Uint64(c.buf[offNumCtxSwitches:]),
	}
}

// ReadableBytes computes the forward distance from tail to head modulo
// RingSize: the number of bytes currently readable. The double-mapping
// guarantees the entire [tail, tail+readable) range is a flat, contiguous
// slice in this process's address space.
func ReadableBytes(head, tail uint32) uint32 {
	if tail > head {
		return RingSize - tail + head
	}
	return head - tail
}
