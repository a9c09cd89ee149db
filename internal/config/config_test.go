package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.HubPath != DefaultHubPath {
		t.Errorf("HubPath = %q, want %q", cfg.HubPath, DefaultHubPath)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel = %v, want info", cfg.SlogLevel())
	}
	if cfg.WriteTimeoutDuration() != 10*time.Second {
		t.Errorf("WriteTimeoutDuration = %v, want 10s", cfg.WriteTimeoutDuration())
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"addr": ":9999", "logLevel": "debug"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", cfg.Addr)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, want debug", cfg.SlogLevel())
	}
	if cfg.HubPath != DefaultHubPath {
		t.Errorf("unset HubPath should default, got %q", cfg.HubPath)
	}
	if cfg.Path() != path {
		t.Errorf("Path = %q, want %q", cfg.Path(), path)
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `{"logLevel": "loud"}`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid logLevel")
	}
}

func TestLoadRejectsInvalidWriteTimeout(t *testing.T) {
	path := writeConfig(t, `{"writeTimeout": "soon"}`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid writeTimeout")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"addr": `)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestLoadOrDefault(t *testing.T) {
	missing := filepath.Join(t.TempDir(), ConfigFileName)

	cfg, err := LoadOrDefault(missing)
	if err != nil {
		t.Fatalf("LoadOrDefault on missing file: %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want default %q", cfg.Addr, DefaultAddr)
	}

	path := writeConfig(t, `{"addr": ":7777"}`)
	cfg, err = LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault on existing file: %v", err)
	}
	if cfg.Addr != ":7777" {
		t.Errorf("Addr = %q, want :7777", cfg.Addr)
	}
}
