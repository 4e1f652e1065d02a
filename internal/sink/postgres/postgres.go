// Package postgres is an optional audit-mirror sink.Sink: every submitted
// payload is additionally batched and written to PostgreSQL so that decoded
// events remain queryable after the Kafka topic's retention window expires.
// It is grounded on the dashboard storage layer's alert-batching Store
// (in-memory buffer, synchronous flush at batchSize, a background ticker for
// partially-filled batches), generalized here from typed Alert rows to
// opaque JSON payloads.
package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// DefaultBatchSize is the maximum number of payloads buffered before an
	// automatic flush.
	DefaultBatchSize = 100

	// DefaultFlushInterval is how often the background goroutine flushes a
	// partially-filled batch.
	DefaultFlushInterval = 200 * time.Millisecond
)

// Sink buffers decoded-event payloads in memory and flushes them to
// PostgreSQL in a single batched round-trip. It implements sink.Sink.
type Sink struct {
	pool          *pgxpool.Pool
	mu            sync.Mutex
	batch         [][]byte
	batchSize     int
	flushInterval time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// Open connects to connStr, pings the database, and starts the background
// flush goroutine. batchSize ≤ 0 is replaced with DefaultBatchSize;
// flushInterval ≤ 0 is replaced with DefaultFlushInterval.
func Open(ctx context.Context, connStr string, batchSize int, flushInterval time.Duration) (*Sink, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("postgres sink: pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres sink: ping: %w", err)
	}

	s := &Sink{
		pool:          pool,
		batch:         make([][]byte, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	go s.flushLoop()
	return s, nil
}

// Close stops the background flush goroutine, flushes any buffered payloads,
// and closes the connection pool. Safe to call more than once.
func (s *Sink) Close(ctx context.Context) {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
		<-s.doneCh
		_ = s.Flush(ctx)
	}
	s.pool.Close()
}

func (s *Sink) flushLoop() {
	defer close(s.doneCh)
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			_ = s.Flush(context.Background())
		}
	}
}

// Submit appends payload to the in-memory buffer, implementing sink.Sink. If
// the buffer reaches batchSize, Flush is called synchronously so the caller
// observes back-pressure rather than unbounded memory growth.
func (s *Sink) Submit(ctx context.Context, payload []byte) error {
	s.mu.Lock()
	s.batch = append(s.batch, payload)
	full := len(s.batch) >= s.batchSize
	s.mu.Unlock()

	if full {
		return s.Flush(ctx)
	}
	return nil
}

// Flush drains the current buffer and inserts all rows in one pgx.Batch
// round-trip. Safe to call concurrently: a mutex swap ensures each call
// drains a distinct snapshot of the buffer.
func (s *Sink) Flush(ctx context.Context) error {
	s.mu.Lock()
	if len(s.batch) == 0 {
		s.mu.Unlock()
		return nil
	}
	toInsert := s.batch
	s.batch = make([][]byte, 0, s.batchSize)
	s.mu.Unlock()

	const query = `INSERT INTO syscall_events (payload) VALUES ($1)`

	b := &pgx.Batch{}
	for _, payload := range toInsert {
		b.Queue(query, payload)
	}

	br := s.pool.SendBatch(ctx, b)
	defer br.Close()

	for range toInsert {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres sink: batch exec: %w", err)
		}
	}
	return nil
}

// QueryRecent returns up to limit of the most recently stored payloads,
// newest first. It is a diagnostic helper, not part of the ingestion hot
// path; no admin API route calls it.
func (s *Sink) QueryRecent(ctx context.Context, limit int) ([][]byte, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM syscall_events
		ORDER BY id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres sink: query recent: %w", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("postgres sink: scan: %w", err)
		}
		out = append(out, payload)
	}
	return out, rows.Err()
}
