package store_test

import (
	"bytes"
	"testing"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/store"
)

func TestRatchetSessionFileStoreRoundTrip(t *testing.T) {
	s := store.NewRatchetSessionFileStore(t.TempDir())

	remote := domaintypes.RemoteID("alice")
	serialized := []byte(`{"rootKey":"deadbeef"}`)

	if err := s.SaveSession(remote, serialized); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, ok, err := s.LoadSession(remote)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if !ok {
		t.Fatalf("expected session to be found")
	}
	if !bytes.Equal(got, serialized) {
		t.Fatalf("got %q, want %q", got, serialized)
	}
}

func TestRatchetSessionFileStoreMissingRemoteMisses(t *testing.T) {
	s := store.NewRatchetSessionFileStore(t.TempDir())

	_, ok, err := s.LoadSession(domaintypes.RemoteID("nobody"))
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if ok {
		t.Fatalf("expected no session for an unknown remote")
	}
}

func TestRatchetSessionFileStoreOverwritesExistingSession(t *testing.T) {
	s := store.NewRatchetSessionFileStore(t.TempDir())
	remote := domaintypes.RemoteID("bob")

	if err := s.SaveSession(remote, []byte("first")); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := s.SaveSession(remote, []byte("second")); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, ok, err := s.LoadSession(remote)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if !ok || string(got) != "second" {
		t.Fatalf("got %q ok=%v, want %q true", got, ok, "second")
	}
}
