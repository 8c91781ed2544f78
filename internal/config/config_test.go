package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Plugin.Name != "courier" {
		t.Errorf("unexpected default name %q", cfg.Plugin.Name)
	}
	if cfg.Updater.MaxAttempts != -1 {
		t.Errorf("expected unlimited attempts by default, got %d", cfg.Updater.MaxAttempts)
	}
	if cfg.StartingBackoff() != 5*time.Second || cfg.MaxBackoff() != 30*time.Second {
		t.Errorf("unexpected backoff defaults: %v / %v", cfg.StartingBackoff(), cfg.MaxBackoff())
	}
	if cfg.GatewayTimeout() != 30*time.Second {
		t.Errorf("unexpected gateway timeout %v", cfg.GatewayTimeout())
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courier.yaml")
	data := `
plugin:
  name: shipper
amqp:
  prefetch: 10
updater:
  max_attempts: 3
  starting_backoff_sec: 2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Plugin.Name != "shipper" {
		t.Errorf("expected name shipper, got %q", cfg.Plugin.Name)
	}
	if cfg.AMQP.Prefetch != 10 {
		t.Errorf("expected prefetch 10, got %d", cfg.AMQP.Prefetch)
	}
	if cfg.Updater.MaxAttempts != 3 {
		t.Errorf("expected max_attempts 3, got %d", cfg.Updater.MaxAttempts)
	}
	if cfg.StartingBackoff() != 2*time.Second {
		t.Errorf("expected starting backoff 2s, got %v", cfg.StartingBackoff())
	}
	// Незатронутые файлом поля остаются дефолтными.
	if cfg.Gateway.BaseURL != "http://localhost:2337" {
		t.Errorf("unexpected gateway url %q", cfg.Gateway.BaseURL)
	}
}

func TestLoad_MissingFileTolerated(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults, got %v", err)
	}
	if cfg.Plugin.Name != "courier" {
		t.Errorf("unexpected name %q", cfg.Plugin.Name)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courier.yaml")
	if err := os.WriteFile(path, []byte("plugin:\n  name: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("COURIER_PLUGIN_NAME", "from-env")
	t.Setenv("COURIER_MAX_ATTEMPTS", "7")
	t.Setenv("COURIER_GATEWAY_DISABLED", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Plugin.Name != "from-env" {
		t.Errorf("env must win over file, got %q", cfg.Plugin.Name)
	}
	if cfg.Updater.MaxAttempts != 7 {
		t.Errorf("expected max_attempts 7, got %d", cfg.Updater.MaxAttempts)
	}
	if !cfg.Gateway.Disabled {
		t.Error("expected gateway to be disabled")
	}
}

func TestLoad_EmptyNameRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courier.yaml")
	if err := os.WriteFile(path, []byte("plugin:\n  name: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty plugin name")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courier.yaml")
	if err := os.WriteFile(path, []byte("plugin: [not a mapping"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
