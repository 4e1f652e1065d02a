package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cubostratus/collector/internal/config"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "config-*.toml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	f.Close()
	return f.Name()
}

const validTOML = `
log_level = "debug"

[kafka]
hosts = ["kafka-1:9092", "kafka-2:9092"]
ack_timeout = 5
topic = "syscall-events"
`

func TestParseFile_Valid(t *testing.T) {
	path := writeTemp(t, validTOML)
	cfg, err := config.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Kafka.Hosts) != 2 || cfg.Kafka.Hosts[0] != "kafka-1:9092" {
		t.Errorf("Kafka.Hosts = %v", cfg.Kafka.Hosts)
	}
	if cfg.Kafka.AckTimeout != 5 {
		t.Errorf("Kafka.AckTimeout = %d, want 5", cfg.Kafka.AckTimeout)
	}
	if cfg.Kafka.Topic != "syscall-events" {
		t.Errorf("Kafka.Topic = %q", cfg.Kafka.Topic)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestParseFile_Defaults(t *testing.T) {
	toml := `
[kafka]
hosts       = ["kafka:9092"]
ack_timeout = 1
topic       = "syscall-events"
`
	path := writeTemp(t, toml)
	cfg, err := config.ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Outbox.Path != "/var/lib/cubostratusc/outbox.db" {
		t.Errorf("default Outbox.Path = %q", cfg.Outbox.Path)
	}
}

func TestParseFile_MissingHosts(t *testing.T) {
	toml := `
[kafka]
ack_timeout = 1
topic       = "syscall-events"
`
	path := writeTemp(t, toml)
	_, err := config.ParseFile(path)
	if err == nil {
		t.Fatal("expected error for missing kafka.hosts, got nil")
	}
	if !strings.Contains(err.Error(), "kafka.hosts") {
		t.Errorf("error %q does not mention kafka.hosts", err.Error())
	}
}

func TestParseFile_MissingTopic(t *testing.T) {
	toml := `
[kafka]
hosts       = ["kafka:9092"]
ack_timeout = 1
`
	path := writeTemp(t, toml)
	_, err := config.ParseFile(path)
	if err == nil {
		t.Fatal("expected error for missing kafka.topic, got nil")
	}
	if !strings.Contains(err.Error(), "kafka.topic") {
		t.Errorf("error %q does not mention kafka.topic", err.Error())
	}
}

func TestParseFile_InvalidAckTimeout(t *testing.T) {
	toml := `
[kafka]
hosts       = ["kafka:9092"]
ack_timeout = 0
topic       = "syscall-events"
`
	path := writeTemp(t, toml)
	_, err := config.ParseFile(path)
	if err == nil {
		t.Fatal("expected error for zero ack_timeout, got nil")
	}
	if !strings.Contains(err.Error(), "ack_timeout") {
		t.Errorf("error %q does not mention ack_timeout", err.Error())
	}
}

func TestParseFile_InvalidLogLevel(t *testing.T) {
	toml := `
log_level   = "verbose"

[kafka]
hosts       = ["kafka:9092"]
ack_timeout = 1
topic       = "syscall-events"
`
	path := writeTemp(t, toml)
	_, err := config.ParseFile(path)
	if err == nil {
		t.Fatal("expected error for invalid log_level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error %q does not mention log_level", err.Error())
	}
}

func TestParseFile_FileNotFound(t *testing.T) {
	missingPath := filepath.Join(t.TempDir(), "nonexistent.toml")
	_, err := config.ParseFile(missingPath)
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestParseFile_InvalidTOML(t *testing.T) {
	path := writeTemp(t, ":::invalid toml:::")
	_, err := config.ParseFile(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestLoad_NoConfigFound(t *testing.T) {
	t.Setenv("CUBOSTRATUSC_CONFIG", "")
	if _, err := config.Load(); err == nil {
		// This only reliably fails when /etc/cubostratusc.toml does not
		// exist on the test machine, which holds in CI and containers.
		t.Skip("a config file exists at a well-known location on this machine")
	}
}
