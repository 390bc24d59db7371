package app_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/app"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/config"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestLoadOrCreateIdentityBootstrapsOnFirstRun(t *testing.T) {
	cfg := config.DefaultDaemon()
	cfg.Home = t.TempDir()
	cfg.Passphrase = "hunter2"

	stores, err := app.NewStores(cfg)
	if err != nil {
		t.Fatalf("NewStores: %v", err)
	}
	defer stores.Close()

	id, err := app.LoadOrCreateIdentity(stores.Identity)
	if err != nil {
		t.Fatalf("LoadOrCreateIdentity: %v", err)
	}
	var zero domaintypes.Ed25519Public
	if id.SigningPub == zero {
		t.Fatalf("expected a non-zero signing key")
	}

	again, err := app.LoadOrCreateIdentity(stores.Identity)
	if err != nil {
		t.Fatalf("second LoadOrCreateIdentity: %v", err)
	}
	if again != id {
		t.Fatalf("expected the bootstrapped identity to persist across calls")
	}
}

func TestLoadOrCreateIdentityBootstrapsOnBadgerBackend(t *testing.T) {
	cfg := config.DefaultDaemon()
	cfg.Home = t.TempDir()
	cfg.Store = config.StoreBadger
	cfg.Passphrase = "hunter2"

	stores, err := app.NewStores(cfg)
	if err != nil {
		t.Fatalf("NewStores: %v", err)
	}
	defer stores.Close()

	id, err := app.LoadOrCreateIdentity(stores.Identity)
	if err != nil {
		t.Fatalf("LoadOrCreateIdentity: %v", err)
	}

	again, err := app.LoadOrCreateIdentity(stores.Identity)
	if err != nil {
		t.Fatalf("second LoadOrCreateIdentity: %v", err)
	}
	if again != id {
		t.Fatalf("expected the bootstrapped identity to persist across calls")
	}
}

func TestNewWiresAFullApp(t *testing.T) {
	cfg := config.DefaultDaemon()
	cfg.Home = filepath.Join(t.TempDir(), "home")
	cfg.Passphrase = "hunter2"

	a, err := app.New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Stores.Close()

	if a.Dispatcher == nil {
		t.Fatalf("expected a non-nil Dispatcher")
	}
	if a.Providers == nil {
		t.Fatalf("expected a non-nil provider registry")
	}
}

func TestNewStoresUnknownBackend(t *testing.T) {
	cfg := config.DefaultDaemon()
	cfg.Home = t.TempDir()
	cfg.Store = config.StoreBackend("nonsense")

	if _, err := app.NewStores(cfg); err == nil {
		t.Fatalf("expected an error for an unknown store backend")
	}
}
