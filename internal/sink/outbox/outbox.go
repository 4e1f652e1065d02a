// Package outbox wraps a sink.Sink with a WAL-mode SQLite-backed durable
// queue, grounded on the host-security agent's SQLiteQueue (WAL journal
// mode, single-writer connection pool, an at-least-once delivered flag, and
// an atomic depth counter) generalized here from structured alert rows to
// opaque event payloads. It resolves the collector's open question on what
// a sink submission failure should do: retry a bounded number of times, then
// drop the event and keep serving newer ones rather than blocking forever.
package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cubostratus/collector/internal/sink"
	_ "modernc.org/sqlite" // register "sqlite" driver with database/sql
)

// Config controls retry and overflow behavior.
type Config struct {
	// MaxAttempts is how many delivery attempts a single payload gets before
	// it is dropped. Zero means use DefaultMaxAttempts.
	MaxAttempts int
	// MaxQueueDepth bounds the number of undelivered rows kept on disk. When
	// a new Submit would exceed it, the oldest undelivered row is dropped to
	// make room: this is a deliberately lossy queue, not an unbounded one.
	MaxQueueDepth int
	// BatchSize is how many rows deliverOnce attempts per call.
	BatchSize int
	// PollInterval is how often the background delivery loop wakes up.
	PollInterval time.Duration
}

const (
	DefaultMaxAttempts   = 5
	DefaultMaxQueueDepth = 100_000
	DefaultBatchSize     = 64
	DefaultPollInterval  = 2 * time.Second
)

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = DefaultMaxQueueDepth
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// Sink is a durable wrapper around an inner sink.Sink. Submit persists the
// payload and returns as soon as it is committed to disk; a background
// goroutine started by Run drains the queue into the inner sink.
type Sink struct {
	inner  sink.Sink
	cfg    Config
	logger *slog.Logger

	db    *sql.DB
	depth atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Open creates or opens the durable queue at path and wraps inner. path may
// be ":memory:" for tests.
func Open(path string, inner sink.Sink, cfg Config, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("outbox: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("outbox: set WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous = NORMAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("outbox: set synchronous = NORMAL: %w", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("outbox: apply schema: %w", err)
	}

	s := &Sink{inner: inner, cfg: cfg, logger: logger, db: db, stop: make(chan struct{})}

	var count int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM outbox_queue WHERE delivered = 0`).Scan(&count); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("outbox: count pending rows: %w", err)
	}
	s.depth.Store(count)

	return s, nil
}

const ddl = `
CREATE TABLE IF NOT EXISTS outbox_queue (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    payload     BLOB    NOT NULL,
    enqueued_at TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    attempts    INTEGER NOT NULL DEFAULT 0,
    delivered   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_outbox_queue_pending
    ON outbox_queue (delivered, id);
`

// Submit persists payload durably and returns. It implements sink.Sink; the
// ctx deadline applies only to the database write, not to eventual delivery.
func (s *Sink) Submit(ctx context.Context, payload []byte) error {
	if s.depth.Load() >= int64(s.cfg.MaxQueueDepth) {
		if err := s.dropOldest(ctx); err != nil {
			return fmt.Errorf("outbox: drop oldest to make room: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO outbox_queue (payload) VALUES (?)`, payload)
	if err != nil {
		return fmt.Errorf("outbox: enqueue: %w", err)
	}
	s.depth.Add(1)
	return nil
}

func (s *Sink) dropOldest(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM outbox_queue
		WHERE id = (SELECT id FROM outbox_queue WHERE delivered = 0 ORDER BY id LIMIT 1)`)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.depth.Add(-n)
		s.logger.Warn("outbox: queue depth exceeded, dropped oldest payload", slog.Int("max_depth", s.cfg.MaxQueueDepth))
	}
	return nil
}

// Depth returns the current number of undelivered rows.
func (s *Sink) Depth() int {
	return int(s.depth.Load())
}

// Run starts the background delivery loop and blocks until ctx is cancelled
// or Stop is called. Call it in its own goroutine.
func (s *Sink) Run(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.deliverOnce(ctx); err != nil {
				s.logger.Warn("outbox: delivery pass failed", slog.Any("error", err))
			}
		}
	}
}

// Stop halts the background delivery loop started by Run and closes the
// database. It is idempotent.
func (s *Sink) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	return s.db.Close()
}

type pendingRow struct {
	id       int64
	payload  []byte
	attempts int
}

// deliverOnce attempts to deliver up to BatchSize pending rows to the inner
// sink. A row that fails is re-attempted on the next pass unless it has
// reached MaxAttempts, in which case it is dropped and a warning is logged:
// this is the bounded-retry-then-drop policy, not an infinite queue.
func (s *Sink) deliverOnce(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload, attempts FROM outbox_queue WHERE delivered = 0 ORDER BY id LIMIT ?`,
		s.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("outbox: select pending: %w", err)
	}

	var pending []pendingRow
	for rows.Next() {
		var r pendingRow
		if err := rows.Scan(&r.id, &r.payload, &r.attempts); err != nil {
			rows.Close()
			return fmt.Errorf("outbox: scan pending: %w", err)
		}
		pending = append(pending, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("outbox: iterate pending: %w", err)
	}
	rows.Close()

	for _, r := range pending {
		if err := s.inner.Submit(ctx, r.payload); err != nil {
			attempts := r.attempts + 1
			if attempts >= s.cfg.MaxAttempts {
				if _, delErr := s.db.ExecContext(ctx, `DELETE FROM outbox_queue WHERE id = ?`, r.id); delErr == nil {
					s.depth.Add(-1)
				}
				s.logger.Error("outbox: dropping payload after max attempts",
					slog.Int64("id", r.id), slog.Int("attempts", attempts), slog.Any("error", err))
				continue
			}
			if _, updErr := s.db.ExecContext(ctx, `UPDATE outbox_queue SET attempts = ? WHERE id = ?`, attempts, r.id); updErr != nil {
				s.logger.Warn("outbox: failed to record attempt", slog.Int64("id", r.id), slog.Any("error", updErr))
			}
			continue
		}

		if _, err := s.db.ExecContext(ctx, `UPDATE outbox_queue SET delivered = 1 WHERE id = ?`, r.id); err != nil {
			s.logger.Warn("outbox: failed to mark delivered", slog.Int64("id", r.id), slog.Any("error", err))
			continue
		}
		s.depth.Add(-1)
	}

	return nil
}
