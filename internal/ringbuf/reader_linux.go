//go:build linux

package ringbuf

import (
	"errors"
	"fmt"

	"github.com/cubostratus/collector/internal/cubostratusc"
	"golang.org/x/sys/unix"
)

// ppmIoctlMagic is the driver's ioctl magic number ('s').
const ppmIoctlMagic = 's'

// Enable and disable are given distinct opcodes (1 and 0 respectively):
// spec §9 flags the upstream driver's collision of both at opcode 1 as a
// quirk to confirm before shipping; no driver spec contradicts giving
// disable its own value, so the two are split here.
const (
	ioctlEnableCapture  = 1
	ioctlDisableCapture = 0
)

// ErrTooManyCollectors means a device is already attached to another
// consumer (EBUSY on open).
var ErrTooManyCollectors = cubostratusc.New(cubostratusc.TooManyCollectors, "device busy, another collector is attached")

// ErrDeviceError means the device could not be opened for a reason other
// than "not present" or "busy" — typically insufficient privileges or the
// driver not being loaded.
var ErrDeviceError = cubostratusc.New(cubostratusc.DeviceError, "insufficient privileges or driver not loaded")

// ErrRingBufferMapping means mmap of the data or control region failed.
var ErrRingBufferMapping = cubostratusc.New(cubostratusc.RingBufferMapping, "unable to map ring buffer device")

// Reader owns one per-CPU device: its file descriptor, the two mapped
// regions, and the read-cursor bookkeeping needed to hand out one event at
// a time to the collector scheduler.
//
// A Reader is created by Open, used exclusively by the scheduler's single
// drain goroutine, and destroyed by Close. Open never returns a partially
// initialized Reader.
type Reader struct {
	CPU int

	fd   int
	data []byte // 2*RingSize bytes, read-only, shared
	ctl  *RingControl

	lastWindowSize   uint32
	remainingInWindow uint32
	nextEventOff      uint32
}

// devicePath formats the device node path for CPU index i.
func devicePath(i int) string {
	return fmt.Sprintf("/dev/sysdig%d", i)
}

// Open opens /dev/sysdig{cpu}, maps its data and control regions, and issues
// the driver's enable-capture ioctl. A missing device (ENODEV) is reported
// distinctly so the caller can treat "this CPU is not instrumented" as
// non-fatal; EBUSY and any other errno are returned as
// ErrTooManyCollectors / ErrDeviceError respectively so the caller can
// distinguish "skip this CPU" from "abort startup".
//
// If either mmap fails, both are unwound and the fd is closed before Open
// returns: resource hygiene is required on every error path, not just the
// common one.
func Open(cpu int) (*Reader, error) {
	fd, err := unix.Open(devicePath(cpu), unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		switch {
		case errors.Is(err, unix.ENODEV):
			return nil, nil // caller: CPU not instrumented, skip
		case errors.Is(err, unix.EBUSY):
			return nil, ErrTooManyCollectors
		default:
			return nil, fmt.Errorf("%w: %v", ErrDeviceError, err)
		}
	}

	data, err := unix.Mmap(fd, 0, 2*RingSize, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%w: data region: %v", ErrRingBufferMapping, err)
	}

	ctlBuf, err := unix.Mmap(fd, 0, ControlSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Munmap(data)
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%w: control region: %v", ErrRingBufferMapping, err)
	}

	if err := ioctlNone(fd, ioctlEnableCapture); err != nil {
		_ = unix.Munmap(ctlBuf)
		_ = unix.Munmap(data)
		_ = unix.Close(fd)
		return nil, fmt.Errorf("ringbuf: enable capture on cpu %d: %w", cpu, err)
	}

	r := &Reader{
		CPU:  cpu,
		fd:   fd,
		data: data,
		ctl:  wrapControl(ctlBuf),
	}
	r.refreshLocked()
	return r, nil
}

// Close issues the disable-capture ioctl, unmaps both regions, and closes
// the fd. Close is idempotent: calls after the first return nil. Partial
// initialization never reaches Close, because Open itself unwinds every
// step it completed before returning an error.
func (r *Reader) Close() error {
	if r == nil || r.ctl == nil {
		return nil
	}
	defer func() { r.data, r.ctl, r.fd = nil, nil, -1 }()
	_ = ioctlNone(r.fd, ioctlDisableCapture)

	var firstErr error
	if err := unix.Munmap(r.data); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := unix.Munmap(r.ctl.buf); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := unix.Close(r.fd); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// CPUIndex reports which CPU this reader was opened for.
func (r *Reader) CPUIndex() int { return r.CPU }

// Remaining reports the number of unconsumed bytes left in the current
// window.
func (r *Reader) Remaining() uint32 {
	return r.remainingInWindow
}

// ReadableBytes peeks the ring's current readable window without consuming
// anything or mutating reader state, for the back-off policy's per-ring
// inspection.
func (r *Reader) ReadableBytes() uint32 {
	return ReadableBytes(r.ctl.Head(), r.ctl.Tail())
}

// Counters snapshots the kernel's five hint counters for this CPU's ring.
func (r *Reader) Counters() Counters {
	return r.ctl.Counters()
}

// ConsumeEvent returns the raw bytes of the event at the current read
// position (header + length array + payloads, exactly hdr.Len bytes as
// declared by the event's own header) and advances the cursor past it. The
// caller must have already confirmed Remaining() > 0.
//
// It returns an error only if the declared length is internally
// inconsistent (e.g. zero, or larger than what remains in the window); in
// that case the whole remaining window is discarded to resynchronize,
// matching the "malformed records are silently dropped" steady-state error
// policy.
func (r *Reader) ConsumeEvent() ([]byte, error) {
	if r.remainingInWindow == 0 {
		return nil, errors.New("ringbuf: ConsumeEvent called with an empty window")
	}

	// The double-mapping makes data[nextEventOff : nextEventOff+n] a flat
	// range even when the logical event straddles RingSize.
	peek := r.data[r.nextEventOff:]
	if len(peek) < 20 {
		r.remainingInWindow = 0
		return nil, errors.New("ringbuf: truncated event length field")
	}

	// EventHeader.Len lives at byte offset 16 within the 22-byte header
	// (ts uint64, tid uint64, len uint32, id uint16); read it directly here
	// so a zero or oversized length can be rejected before slicing.
	length := uint32(peek[16]) | uint32(peek[17])<<8 | uint32(peek[18])<<16 | uint32(peek[19])<<24
	if length == 0 || length > r.remainingInWindow {
		err := fmt.Errorf("ringbuf: event length %d exceeds remaining window %d", length, r.remainingInWindow)
		r.remainingInWindow = 0
		return nil, err
	}

	raw := peek[:length]
	r.nextEventOff += length
	r.remainingInWindow -= length
	return raw, nil
}

// Refresh advances Tail by the size of the window just consumed, publishes
// it, and reseeds the window bookkeeping from the fresh head/tail delta.
func (r *Reader) Refresh() {
	r.refreshLocked()
}

func (r *Reader) refreshLocked() {
	tail := r.ctl.Tail()
	newTail := tail + r.lastWindowSize
	if newTail >= RingSize {
		newTail -= RingSize
	}
	r.ctl.SetTail(newTail)

	window := ReadableBytes(r.ctl.Head(), newTail)
	r.lastWindowSize = window
	r.remainingInWindow = window
	r.nextEventOff = newTail
}

// ioctlNone issues a no-argument ioctl with the driver's magic number and
// the given command byte, matching nix's ioctl_none! macro: request =
// (magic << 8) | nr, direction NONE, size 0, no data transferred.
func ioctlNone(fd int, nr uint8) error {
	req := uintptr(ppmIoctlMagic)<<8 | uintptr(nr)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
