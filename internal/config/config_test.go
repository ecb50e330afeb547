package config

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "PBLSTUDIO_LISTEN_ADDR", "PBLSTUDIO_DB_PATH", "PBLSTUDIO_ACCESS_LOG", "PBLSTUDIO_SHUTDOWN_TIMEOUT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if got := cfg.Addr(); got != ":4321" {
		t.Fatalf("addr: expected %q, got %q", ":4321", got)
	}
	if cfg.DatabasePath != "pblstudio_db.sqlite" {
		t.Fatalf("db path: expected default, got %q", cfg.DatabasePath)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown timeout: expected 10s, got %s", cfg.ShutdownTimeout)
	}
	if !cfg.AccessLog {
		t.Fatal("expected access log to be enabled by default")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	unsetEnv(t, "PBLSTUDIO_LISTEN_ADDR")
	t.Setenv("PORT", "9000")
	t.Setenv("PBLSTUDIO_DB_PATH", " /tmp/studio.sqlite ")
	t.Setenv("PBLSTUDIO_ACCESS_LOG", "false")
	t.Setenv("PBLSTUDIO_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if got := cfg.Addr(); got != ":9000" {
		t.Fatalf("addr: expected %q, got %q", ":9000", got)
	}
	if cfg.DatabasePath != "/tmp/studio.sqlite" {
		t.Fatalf("db path: expected trimmed value, got %q", cfg.DatabasePath)
	}
	if cfg.AccessLog {
		t.Fatal("expected access log to be disabled")
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("shutdown timeout: expected 3s, got %s", cfg.ShutdownTimeout)
	}
}

func TestListenAddrOverridesPort(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PBLSTUDIO_LISTEN_ADDR", "127.0.0.1:8081")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if got := cfg.Addr(); got != "127.0.0.1:8081" {
		t.Fatalf("addr: expected listen addr override, got %q", got)
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("PBLSTUDIO_SHUTDOWN_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error for invalid duration")
	}
}
