// Command collector is the cubostratusc syscall telemetry collector. It is
// a single binary with no subcommands: it loads its TOML configuration,
// attaches to every instrumented CPU's ring buffer, decodes syscall events,
// forwards them to a durable Kafka sink, and runs until killed.
//
// Resolved open question (spec §9): unlike the original collector, which
// exits 0 on any startup failure, this binary exits non-zero so that a
// process supervisor observes the failure.
package main

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cubostratus/collector/internal/adminapi"
	"github.com/cubostratus/collector/internal/collector"
	"github.com/cubostratus/collector/internal/config"
	"github.com/cubostratus/collector/internal/procstate"
	"github.com/cubostratus/collector/internal/ringbuf"
	"github.com/cubostratus/collector/internal/sink"
	"github.com/cubostratus/collector/internal/sink/kafka"
	"github.com/cubostratus/collector/internal/sink/outbox"
	"github.com/cubostratus/collector/internal/sink/postgres"
	"github.com/cubostratus/collector/internal/syscallmeta"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cubostratusc: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("cubostratusc starting",
		slog.Any("kafka_hosts", cfg.Kafka.Hosts),
		slog.String("kafka_topic", cfg.Kafka.Topic),
	)

	kafkaSink, err := kafka.Dial(ctx, kafka.Config{
		Hosts:      cfg.Kafka.Hosts,
		AckTimeout: cfg.Kafka.AckTimeoutDuration(),
		Topic:      cfg.Kafka.Topic,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect kafka sink: %w", err)
	}
	defer kafkaSink.Close()

	outboxSink, err := outbox.Open(cfg.Outbox.Path, kafkaSink, outbox.Config{
		MaxAttempts:   cfg.Outbox.MaxAttempts,
		MaxQueueDepth: cfg.Outbox.MaxQueueDepth,
	}, logger)
	if err != nil {
		return fmt.Errorf("open outbox: %w", err)
	}
	go outboxSink.Run(ctx)
	defer outboxSink.Stop()

	var mirror *postgres.Sink
	if cfg.Postgres.ConnString != "" {
		mirror, err = postgres.Open(ctx, cfg.Postgres.ConnString, cfg.Postgres.BatchSize, 0)
		if err != nil {
			return fmt.Errorf("open postgres mirror: %w", err)
		}
		defer mirror.Close(context.Background())
		logger.Info("postgres audit mirror enabled")
	}

	sched := collector.New(openReader, syscallmeta.DefaultTable, collector.WithLogger(logger))

	numCPU := runtime.NumCPU()
	attached, err := sched.Start(numCPU)
	if err != nil {
		return fmt.Errorf("start collector: %w", err)
	}
	logger.Info("collector attached to rings", slog.Int("cpus_probed", numCPU), slog.Int("readers", attached))
	defer sched.Stop()

	var adminSrv *http.Server
	if cfg.AdminAPI.ListenAddr != "" {
		adminSrv, err = startAdminServer(cfg, sched, cancel, logger)
		if err != nil {
			return fmt.Errorf("start admin API: %w", err)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = adminSrv.Shutdown(shutdownCtx)
		}()
	}

	registry := procstate.NewRegistry()
	go drainLoop(ctx, sched, registry, outboxSink, mirror, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutdown requested via admin API")
	}
	cancel()

	logger.Info("cubostratusc exited cleanly")
	return nil
}

// openReader adapts ringbuf.Open to collector.OpenFunc: ringbuf.Reader must
// be returned through the scheduler's narrower ringReader interface, which
// Go satisfies structurally without any explicit adapter type.
func openReader(cpu int) (interface {
	CPUIndex() int
	Remaining() uint32
	ReadableBytes() uint32
	ConsumeEvent() ([]byte, error)
	Refresh()
	Counters() ringbuf.Counters
	Close() error
}, error) {
	r, err := ringbuf.Open(cpu)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	return r, nil
}

// drainLoop is the collector's steady-state consumer: pull one decoded
// event at a time, enrich it with /proc thread context on a best-effort
// basis, serialize, and submit to the durable sink (and, if configured, the
// audit mirror).
func drainLoop(ctx context.Context, sched *collector.Scheduler, registry *procstate.Registry, out sink.Sink, mirror *postgres.Sink, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		evt, ok := sched.Next(ctx)
		if !ok {
			continue
		}

		payload, err := evt.MarshalJSON()
		if err != nil {
			logger.Warn("failed to serialize event", slog.Any("error", err))
			continue
		}

		if thread, err := registry.Lookup(int32(evt.TID)); err != nil {
			logger.Debug("thread enrichment unavailable", slog.Uint64("tid", evt.TID), slog.Any("error", err))
		} else {
			enriched, err := attachThread(payload, thread)
			if err != nil {
				logger.Warn("failed to attach thread enrichment", slog.Any("error", err))
			} else {
				payload = enriched
			}
		}

		if err := out.Submit(ctx, payload); err != nil {
			logger.Warn("failed to submit event to sink", slog.Any("error", err))
		}
		if mirror != nil {
			if err := mirror.Submit(ctx, payload); err != nil {
				logger.Warn("failed to submit event to postgres mirror", slog.Any("error", err))
			}
		}
	}
}

// attachThread merges thread's fields into the already-serialized event as
// a "thread" object, without the decode package needing to know procstate
// exists: enrichment stays a daemon-level concern layered on top of the
// core {ts,name,params} wire shape.
func attachThread(payload []byte, thread procstate.ThreadInfo) ([]byte, error) {
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, fmt.Errorf("unmarshal event for enrichment: %w", err)
	}
	obj["thread"] = thread
	return json.Marshal(obj)
}

func startAdminServer(cfg *config.Config, sched *collector.Scheduler, stop func(), logger *slog.Logger) (*http.Server, error) {
	var pubKey *rsa.PublicKey
	if cfg.AdminAPI.JWTPublicKeyPath != "" {
		pemBytes, err := os.ReadFile(cfg.AdminAPI.JWTPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read JWT public key: %w", err)
		}
		pubKey, err = adminapi.ParseRSAPublicKey(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("parse JWT public key: %w", err)
		}
	}

	srv := adminapi.NewServer(sched, stop)
	handler := adminapi.NewRouter(srv, pubKey)

	httpServer := &http.Server{
		Addr:         cfg.AdminAPI.ListenAddr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("admin API listening", slog.String("addr", cfg.AdminAPI.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin API server error", slog.Any("error", err))
		}
	}()

	return httpServer, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
