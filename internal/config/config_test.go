// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, timeout resolution, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
map:
  timeout_amount: 36
  timeout_unit: hours

storage:
  enabled: true
  backend: sqlite
  data_dir: "./data"

bridges:
  - name: "general"
    discord_channel: "123456789"
    telegram_chat_id: "-1001234"
  - name: "offtopic"
    discord_channel: "987654321"
    telegram_chat_id: "-1005678"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Map.Timeout != 36*time.Hour {
		t.Errorf("Map.Timeout = %v, want %v", cfg.Map.Timeout, 36*time.Hour)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, "sqlite")
	}
	if len(cfg.Bridges) != 2 {
		t.Fatalf("len(Bridges) = %d, want 2", len(cfg.Bridges))
	}
	if cfg.Bridges[0].Name != "general" {
		t.Errorf("Bridges[0].Name = %q, want %q", cfg.Bridges[0].Name, "general")
	}
	if cfg.Bridges[1].TelegramChatID != "-1005678" {
		t.Errorf("Bridges[1].TelegramChatID = %q, want %q", cfg.Bridges[1].TelegramChatID, "-1005678")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
bridges:
  - name: "general"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Map.Timeout != 24*time.Hour {
		t.Errorf("Map.Timeout = %v, want default 24h", cfg.Map.Timeout)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("Storage.Backend = %q, want default %q", cfg.Storage.Backend, "file")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging defaults = %q/%q, want info/console", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("ECHORELAY_TEST_DATA_DIR", "/var/lib/echorelay")

	path := writeConfig(t, `
map:
  timeout_amount: 1
  timeout_unit: days

storage:
  enabled: true
  data_dir: "${ECHORELAY_TEST_DATA_DIR}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.DataDir != "/var/lib/echorelay" {
		t.Errorf("Storage.DataDir = %q, want expanded env value", cfg.Storage.DataDir)
	}
}

func TestLoad_TimeoutUnits(t *testing.T) {
	tests := []struct {
		unit string
		want time.Duration
	}{
		{"seconds", 10 * time.Second},
		{"minutes", 10 * time.Minute},
		{"hours", 10 * time.Hour},
		{"days", 240 * time.Hour},
	}

	for _, tt := range tests {
		path := writeConfig(t, `
map:
  timeout_amount: 10
  timeout_unit: `+tt.unit+`
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() with unit %q error = %v", tt.unit, err)
		}
		if cfg.Map.Timeout != tt.want {
			t.Errorf("unit %q: Timeout = %v, want %v", tt.unit, cfg.Map.Timeout, tt.want)
		}
	}
}

func TestLoad_InvalidTimeoutUnit(t *testing.T) {
	path := writeConfig(t, `
map:
  timeout_amount: 5
  timeout_unit: fortnights
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "timeout_unit") {
		t.Errorf("Load() error = %v, want timeout_unit validation failure", err)
	}
}

func TestLoad_StorageRequiresDataDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  enabled: true
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "data_dir") {
		t.Errorf("Load() error = %v, want data_dir validation failure", err)
	}
}

func TestLoad_DuplicateBridgeName(t *testing.T) {
	path := writeConfig(t, `
bridges:
  - name: "general"
  - name: "general"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "duplicated") {
		t.Errorf("Load() error = %v, want duplicate bridge failure", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("Load() of missing file should fail")
	}
}
