// Package config loads the daemon's and CLI's runtime configuration from
// a YAML file plus flag overrides, layering os.ReadFile and yaml.v2 under
// a handful of documented defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// StoreBackend selects which RatchetSessionStore/IdentityStore/etc.
// implementation the daemon wires up.
type StoreBackend string

const (
	StoreFile   StoreBackend = "file"
	StoreBadger StoreBackend = "badger"
)

// Daemon holds everything cmd/webcryptogwd needs to start serving.
type Daemon struct {
	// Home is the directory identity, pre-key, and session state live
	// under. Defaults to $HOME/.webcryptogw.
	Home string `yaml:"home"`
	// ListenAddr is the host:port the websocket and discovery HTTP
	// servers bind to.
	ListenAddr string `yaml:"listenAddr"`
	// Store selects the persistence backend.
	Store StoreBackend `yaml:"store"`
	// Passphrase protects the identity file at rest. An empty passphrase
	// is accepted: a new identity is then sealed under the empty
	// passphrase, and an existing one loads only if it was sealed that
	// way.
	Passphrase string `yaml:"passphrase"`
	// LoginTimeoutSeconds is loaded and defaulted here, but the daemon
	// does not pass it on: a provider Login call waits for its prompt for
	// the dispatcher's fixed 30 seconds before failing with
	// "CryptoLogin timeout".
	LoginTimeoutSeconds int `yaml:"loginTimeoutSeconds"`
	// ServerName/ServerVersion are echoed verbatim in the discovery
	// endpoint's ServerInfo response.
	ServerName    string `yaml:"serverName"`
	ServerVersion string `yaml:"serverVersion"`
}

const (
	defaultListenAddr          = "127.0.0.1:8787"
	defaultStore               = StoreFile
	defaultLoginTimeoutSeconds = 30
	defaultServerName          = "webcrypto-local"
	defaultServerVersion       = "dev"
)

// DefaultDaemon returns a Daemon config with every field at its documented
// default; callers then overlay a YAML file and flags on top.
func DefaultDaemon() Daemon {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Daemon{
		Home:                home + "/.webcryptogw",
		ListenAddr:          defaultListenAddr,
		Store:               defaultStore,
		LoginTimeoutSeconds: defaultLoginTimeoutSeconds,
		ServerName:          defaultServerName,
		ServerVersion:       defaultServerVersion,
	}
}

// LoadDaemon reads a YAML config file at path and overlays it onto
// DefaultDaemon. A missing file is not an error: the defaults alone are
// returned.
func LoadDaemon(path string) (Daemon, error) {
	cfg := DefaultDaemon()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
