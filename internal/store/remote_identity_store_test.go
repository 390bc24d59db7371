package store_test

import (
	"testing"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/store"
)

func TestRemoteIdentityFileStoreRoundTrip(t *testing.T) {
	s := store.NewRemoteIdentityFileStore(t.TempDir())

	remote := domaintypes.RemoteID("carol")
	want := domaintypes.RemoteIdentity{
		RemoteID:    remote,
		SigningPub:  domaintypes.Ed25519Public{1, 1, 1},
		ExchangePub: domaintypes.X25519Public{2, 2, 2},
	}

	if err := s.SaveRemoteIdentity(remote, want); err != nil {
		t.Fatalf("SaveRemoteIdentity: %v", err)
	}

	got, ok, err := s.LoadRemoteIdentity(remote)
	if err != nil {
		t.Fatalf("LoadRemoteIdentity: %v", err)
	}
	if !ok || got != want {
		t.Fatalf("got %+v ok=%v, want %+v true", got, ok, want)
	}
}

func TestRemoteIdentityFileStoreMissingRemoteMisses(t *testing.T) {
	s := store.NewRemoteIdentityFileStore(t.TempDir())

	_, ok, err := s.LoadRemoteIdentity(domaintypes.RemoteID("nobody"))
	if err != nil {
		t.Fatalf("LoadRemoteIdentity: %v", err)
	}
	if ok {
		t.Fatalf("expected no pinned identity for an unknown remote")
	}
}
