// Package collector implements the scheduler that owns the vector of
// per-CPU ring readers: round-robin drain biased toward low CPU indices,
// empty-ring back-off, and start/stop orchestration. It is grounded on the
// host-security agent's orchestrator shape (functional options, a
// sync.Once-guarded Stop, context-scoped lifecycle), generalized here from
// "watchers in a slice" to "ring readers in a slice".
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cubostratus/collector/internal/adminapi"
	"github.com/cubostratus/collector/internal/backoff"
	"github.com/cubostratus/collector/internal/decode"
	"github.com/cubostratus/collector/internal/ringbuf"
	"github.com/cubostratus/collector/internal/syscallmeta"
)

// ringReader is the subset of ringbuf.Reader the scheduler depends on. It is
// defined here, not imported as ringbuf.Reader, so the scheduler can be
// exercised in tests with a fake reader that needs no real device or
// platform support. It is an alias of the interface literal, so an open
// function declared elsewhere with the same literal result type is an
// OpenFunc.
type ringReader = interface {
	CPUIndex() int
	Remaining() uint32
	ReadableBytes() uint32
	ConsumeEvent() ([]byte, error)
	Refresh()
	Counters() ringbuf.Counters
	Close() error
}

// OpenFunc opens the reader for CPU index i. It returns (nil, nil) when the
// CPU has no instrumented device (the ENODEV case), which the scheduler
// treats as "skip, not fatal".
type OpenFunc func(cpu int) (ringReader, error)

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithLogger overrides the scheduler's logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithNumCPU overrides the number of per-CPU devices to probe at Start
// (default: the count passed to Start).
func WithNumCPU(n int) Option {
	return func(s *Scheduler) { s.numCPU = n }
}

// Scheduler owns the vector of per-CPU readers and the metadata table used
// to decode each event. Its three operations — Start, Stop, Next — mirror
// the driver-facing Collector trait exactly; Next is the only
// performance-sensitive path and allocates nothing beyond what DecodeRecord
// itself needs.
type Scheduler struct {
	open   OpenFunc
	table  syscallmeta.Table
	logger *slog.Logger
	numCPU int

	mu      sync.Mutex
	readers []ringReader
	policy  *backoff.Policy
	running bool
	stopped sync.Once

	eventsDecoded    atomic.Uint64
	lengthMismatches atomic.Uint64
}

// New creates a Scheduler. open is how the scheduler acquires one CPU's
// reader (ringbuf.Open in production, a fake in tests); table is the
// syscall metadata catalogue consulted by DecodeRecord.
func New(open OpenFunc, table syscallmeta.Table, opts ...Option) *Scheduler {
	s := &Scheduler{
		open:   open,
		table:  table,
		logger: slog.Default(),
		policy: backoff.NewPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens devices 0..numCPU-1, skipping any that report ENODEV, and
// returns the count successfully attached. If any device reports EBUSY or
// another fatal error, every previously opened reader in this call is closed
// before the error is returned — Start never leaks a partial attach.
func (s *Scheduler) Start(numCPU int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return 0, fmt.Errorf("collector: already running")
	}
	if s.numCPU > 0 {
		numCPU = s.numCPU
	}

	var readers []ringReader
	for i := 0; i < numCPU; i++ {
		r, err := s.open(i)
		if err != nil {
			for _, opened := range readers {
				_ = opened.Close()
			}
			return 0, fmt.Errorf("collector: open cpu %d: %w", i, err)
		}
		if r == nil {
			continue // device not instrumented on this CPU, skip
		}
		readers = append(readers, r)
	}

	s.readers = readers
	s.running = true
	s.logger.Info("collector started", slog.Int("readers", len(readers)), slog.Int("cpus_probed", numCPU))
	return len(readers), nil
}

// Stop issues disable-capture and releases every reader's mapped regions
// and file descriptor. Stop is idempotent and safe to call even if Start
// partially failed, because every reader in s.readers was, by construction,
// fully mapped and ioctl-enabled by the time it was appended.
func (s *Scheduler) Stop() {
	s.stopped.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		for _, r := range s.readers {
			if err := r.Close(); err != nil {
				s.logger.Warn("collector: error closing reader", slog.Int("cpu", r.CPUIndex()), slog.Any("error", err))
			}
		}
		s.running = false
		s.logger.Info("collector stopped")
	})
}

// Next implements the scheduler's single-consumer drain step: scan readers
// in order (low CPU index first — fairness is not a goal, throughput is),
// return the first decoded event found, or enter refresh and report no
// event for this call if every reader's window is empty.
func (s *Scheduler) Next(ctx context.Context) (decode.DecodedEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.readers {
		if r.Remaining() == 0 {
			continue
		}
		raw, err := r.ConsumeEvent()
		if err != nil {
			s.logger.Warn("collector: malformed record, dropping", slog.Int("cpu", r.CPUIndex()), slog.Any("error", err))
			continue
		}
		return s.decode(raw)
	}

	s.refresh(ctx)
	return decode.DecodedEvent{}, false
}

// decode parses the fixed header and hands the remaining bytes to
// decode.DecodeRecord. An unknown syscall id or truncated header is the
// normal "drop silently" path, not an error.
func (s *Scheduler) decode(raw []byte) (decode.DecodedEvent, bool) {
	hdr, err := decode.ParseEventHeader(raw)
	if err != nil {
		s.logger.Warn("collector: truncated event header, dropping", slog.Any("error", err))
		return decode.DecodedEvent{}, false
	}

	evt, ok := decode.DecodeRecord(hdr, raw[decode.HeaderSize:], s.table)
	if !ok {
		return decode.DecodedEvent{}, false
	}
	s.eventsDecoded.Add(1)
	if evt.Diagnostics.LengthMismatch {
		s.lengthMismatches.Add(1)
		s.logger.Warn("collector: decoded length does not match header length",
			slog.String("syscall", evt.Name), slog.Uint64("header_len", uint64(hdr.Len)))
	}
	return evt, true
}

// Stats implements adminapi.StatsProvider: a point-in-time snapshot of
// reader count, decode counters, and the summed kernel hint counters across
// every attached ring.
func (s *Scheduler) Stats() adminapi.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := adminapi.Stats{
		ReadersActive:    len(s.readers),
		EventsDecoded:    s.eventsDecoded.Load(),
		LengthMismatches: s.lengthMismatches.Load(),
	}
	for _, r := range s.readers {
		c := r.Counters()
		stats.NumDropsBuffer += c.NumDropsBuffer
		stats.NumDropsPageFault += c.NumDropsPageFault
		stats.NumPreemptions += c.NumPreemptions
		stats.NumContextSwitches += c.NumContextSwitches
	}
	return stats
}

// refresh consults the back-off policy across every reader's current
// readable window, optionally sleeps, then advances every reader's tail and
// reseeds its window bookkeeping.
func (s *Scheduler) refresh(ctx context.Context) {
	var maxReadable int
	for _, r := range s.readers {
		if n := int(r.ReadableBytes()); n > maxReadable {
			maxReadable = n
		}
	}

	decision := s.policy.Observe(maxReadable)
	if decision.Sleep {
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff.EmptyWaitSleep):
		}
	}

	for _, r := range s.readers {
		r.Refresh()
	}
}
