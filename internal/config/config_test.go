package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/config"
)

func TestLoadDaemonMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.LoadDaemon(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("LoadDaemon: %v", err)
	}
	want := config.DefaultDaemon()
	if cfg != want {
		t.Fatalf("got %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadDaemonEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.LoadDaemon("")
	if err != nil {
		t.Fatalf("LoadDaemon: %v", err)
	}
	if cfg != config.DefaultDaemon() {
		t.Fatalf("got %+v, want defaults", cfg)
	}
}

func TestLoadDaemonOverlaysPartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "listenAddr: 0.0.0.0:9999\nstore: badger\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.LoadDaemon(path)
	if err != nil {
		t.Fatalf("LoadDaemon: %v", err)
	}
	if cfg.ListenAddr != "0.0.0.0:9999" {
		t.Fatalf("ListenAddr = %q, want overlay value", cfg.ListenAddr)
	}
	if cfg.Store != config.StoreBadger {
		t.Fatalf("Store = %q, want badger", cfg.Store)
	}
	// Fields absent from the YAML keep their documented defaults.
	want := config.DefaultDaemon()
	if cfg.ServerName != want.ServerName {
		t.Fatalf("ServerName = %q, want default %q", cfg.ServerName, want.ServerName)
	}
	if cfg.LoginTimeoutSeconds != want.LoginTimeoutSeconds {
		t.Fatalf("LoginTimeoutSeconds = %d, want default %d", cfg.LoginTimeoutSeconds, want.LoginTimeoutSeconds)
	}
}

func TestLoadDaemonMalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("::::not yaml"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := config.LoadDaemon(path); err == nil {
		t.Fatalf("expected an error for malformed YAML")
	}
}
