package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDefaultsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write defaults file: %v", err)
	}
	return path
}

func TestApplyDefaultsFileOverlaysUnsetFields(t *testing.T) {
	path := writeDefaultsFile(t, `
retry_interval: 45s
pending_batch_size: 10
database:
  max_conns: 40
`)

	cfg := &Config{RetryInterval: 30 * time.Second, PendingBatchSize: 5, DatabaseMaxConns: 25}
	if err := ApplyDefaultsFile(cfg, path); err != nil {
		t.Fatalf("ApplyDefaultsFile: %v", err)
	}

	if cfg.RetryInterval != 45*time.Second {
		t.Errorf("RetryInterval = %v, want 45s", cfg.RetryInterval)
	}
	if cfg.PendingBatchSize != 10 {
		t.Errorf("PendingBatchSize = %d, want 10", cfg.PendingBatchSize)
	}
	if cfg.DatabaseMaxConns != 40 {
		t.Errorf("DatabaseMaxConns = %d, want 40", cfg.DatabaseMaxConns)
	}
}

func TestApplyDefaultsFileEnvVarTakesPrecedence(t *testing.T) {
	t.Setenv("RETRY_INTERVAL", "1m")
	path := writeDefaultsFile(t, "retry_interval: 45s\n")

	cfg := &Config{RetryInterval: 30 * time.Second}
	if err := ApplyDefaultsFile(cfg, path); err != nil {
		t.Fatalf("ApplyDefaultsFile: %v", err)
	}

	if cfg.RetryInterval != 30*time.Second {
		t.Errorf("RetryInterval = %v, want unchanged 30s (env var should win)", cfg.RetryInterval)
	}
}

func TestApplyDefaultsFileSubstitutesEnvVars(t *testing.T) {
	t.Setenv("AIP_BATCH_SIZE", "7")
	path := writeDefaultsFile(t, "pending_batch_size: ${AIP_BATCH_SIZE}\n")

	cfg := &Config{PendingBatchSize: 5}
	if err := ApplyDefaultsFile(cfg, path); err != nil {
		t.Fatalf("ApplyDefaultsFile: %v", err)
	}
	if cfg.PendingBatchSize != 7 {
		t.Errorf("PendingBatchSize = %d, want 7", cfg.PendingBatchSize)
	}
}

func TestApplyDefaultsFileMissingFile(t *testing.T) {
	cfg := &Config{}
	if err := ApplyDefaultsFile(cfg, "/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing defaults file")
	}
}
