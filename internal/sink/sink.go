// Package sink defines the narrow outbound interface the collector submits
// decoded, serialized events to. It intentionally says nothing about
// brokers, topics, or delivery guarantees — those are the concern of a
// specific Sink implementation (internal/sink/kafka) or of a wrapping Sink
// (internal/sink/outbox) layered in by the daemon.
package sink

import "context"

// Sink accepts one already-serialized event payload. Implementations may
// block; the core treats that as the caller's concern. Submission failures
// are not retried by anything in this package — retry and backpressure
// policy belongs to a wrapping Sink, not to this interface.
type Sink interface {
	Submit(ctx context.Context, payload []byte) error
}
