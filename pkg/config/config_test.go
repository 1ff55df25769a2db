package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
environment: test
server:
  port: 9090
  read_timeout: 5s
  write_timeout: 5s
  shutdown_timeout: 10s
logger:
  level: info
  format: console
  output: stdout
storage:
  backend: memory
cache:
  backend: memory
orchestrator:
  pipeline_timeout: 15m
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Orchestrator.PipelineTimeout != 15*time.Minute {
		t.Fatalf("pipeline timeout = %s", cfg.Orchestrator.PipelineTimeout)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	body := `
environment: test
storage:
  backend: postgres
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("unknown storage backend should fail")
	}
}

func TestLoadRequiresClickHouseHost(t *testing.T) {
	body := `
environment: test
storage:
  backend: clickhouse
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("clickhouse backend without host should fail")
	}
}

func TestLoadKafkaValidation(t *testing.T) {
	body := `
environment: test
storage:
  backend: memory
kafka:
  enabled: true
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("enabled kafka without brokers should fail")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")

	cfg, err := LoadWithEnv(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("brokers = %v", cfg.Kafka.Brokers)
	}
}
