// Package kafka is the reference sink.Sink implementation: a persistent
// Kafka producer publishing to one fixed topic, grounded on the original
// collector's KafkaAggregator (a persistent producer, an ack timeout
// configured out of band, and a fixed topic) but using a real Kafka client,
// github.com/IBM/sarama, instead of a hand-rolled wire protocol.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"
)

// Config configures the Kafka sink. It mirrors spec §6's [kafka] table:
// Hosts, AckTimeout (a time.Duration here; the table gives seconds), Topic.
type Config struct {
	Hosts      []string
	AckTimeout time.Duration
	Topic      string
}

// Sink is a sarama-backed sink.Sink. It maintains one persistent
// SyncProducer for the process lifetime; Submit publishes synchronously so
// that a broker-side failure is visible to the caller (and, at the daemon
// layer, to the outbox wrapper) rather than silently dropped.
type Sink struct {
	cfg      Config
	producer sarama.SyncProducer
	logger   *slog.Logger
}

// Dial connects to the configured brokers with capped exponential backoff
// (github.com/cenkalti/backoff/v4), matching the host-security agent's
// reconnect idiom for its own transport client. It returns once a producer
// is established, ctx is cancelled, or the default exponential backoff's
// maximum elapsed time (15 minutes) runs out.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("kafka sink: hosts must be non-empty")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka sink: topic must be set")
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal
	saramaCfg.Producer.Timeout = cfg.AckTimeout
	saramaCfg.Producer.Return.Successes = true

	var producer sarama.SyncProducer
	op := func() error {
		p, err := sarama.NewSyncProducer(cfg.Hosts, saramaCfg)
		if err != nil {
			logger.Warn("kafka sink: dial attempt failed, retrying", slog.Any("error", err))
			return err
		}
		producer = p
		return nil
	}

	bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("kafka sink: dial %v: %w", cfg.Hosts, err)
	}

	return &Sink{cfg: cfg, producer: producer, logger: logger}, nil
}

// Submit publishes payload to the configured topic. It blocks until the
// broker acknowledges (or Producer.Timeout elapses). Submission failures are
// returned as-is; this Sink implements no retry of its own — see
// internal/sink/outbox for a wrapping Sink that adds bounded retry.
func (s *Sink) Submit(ctx context.Context, payload []byte) error {
	_, _, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.cfg.Topic,
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("kafka sink: submit: %w", err)
	}
	return nil
}

// Close releases the underlying producer.
func (s *Sink) Close() error {
	return s.producer.Close()
}
