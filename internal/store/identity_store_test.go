package store_test

import (
	"testing"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/store"
)

func TestIdentityFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := store.NewIdentityFileStore(dir, "correct horse battery staple")

	want := domaintypes.Identity{
		SigningPub:   domaintypes.Ed25519Public{1, 2, 3},
		SigningPriv:  domaintypes.Ed25519Private{4, 5, 6},
		ExchangePub:  domaintypes.X25519Public{7, 8, 9},
		ExchangePriv: domaintypes.X25519Private{10, 11, 12},
	}
	if err := s.SaveIdentity(want); err != nil {
		t.Fatalf("SaveIdentity: %v", err)
	}

	got, err := s.LoadIdentity()
	if err != nil {
		t.Fatalf("LoadIdentity: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestIdentityFileStoreWrongPassphraseFails(t *testing.T) {
	dir := t.TempDir()
	s := store.NewIdentityFileStore(dir, "right passphrase")
	if err := s.SaveIdentity(domaintypes.Identity{}); err != nil {
		t.Fatalf("SaveIdentity: %v", err)
	}

	wrong := store.NewIdentityFileStore(dir, "wrong passphrase")
	if _, err := wrong.LoadIdentity(); err == nil {
		t.Fatalf("expected LoadIdentity to fail with the wrong passphrase")
	}
}
