package badger_test

import (
	"bytes"
	"testing"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	badgerstore "github.com/murat-sen-cloudpeer/webcrypto-local/internal/store/badger"
)

func TestIdentityRoundTrip(t *testing.T) {
	s, err := badgerstore.Open(t.TempDir(), "hunter2")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	want := domaintypes.Identity{
		SigningPub:  domaintypes.Ed25519Public{1, 2, 3},
		ExchangePub: domaintypes.X25519Public{4, 5, 6},
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

func TestIdentityWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	s, err := badgerstore.Open(dir, "hunter2")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveIdentity(domaintypes.Identity{SigningPub: domaintypes.Ed25519Public{1}}); err != nil {
		t.Fatalf("SaveIdentity: %v", err)
	}
	s.Close()

	reopened, err := badgerstore.Open(dir, "wrong-passphrase")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.LoadIdentity(); err == nil {
		t.Fatalf("expected LoadIdentity with wrong passphrase to fail")
	}
}

func TestRemoteIdentityRoundTrip(t *testing.T) {
	s, err := badgerstore.Open(t.TempDir(), "hunter2")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	remote := domaintypes.RemoteID("0")
	want := domaintypes.RemoteIdentity{RemoteID: remote, SigningPub: domaintypes.Ed25519Public{9}}
	if err := s.SaveRemoteIdentity(remote, want); err != nil {
		t.Fatalf("SaveRemoteIdentity: %v", err)
	}
	got, ok, err := s.LoadRemoteIdentity(remote)
	if err != nil || !ok || got != want {
		t.Fatalf("got %+v ok=%v err=%v, want %+v", got, ok, err, want)
	}

	if _, ok, err := s.LoadRemoteIdentity(domaintypes.RemoteID("missing")); err != nil || ok {
		t.Fatalf("expected miss for unknown remote, got ok=%v err=%v", ok, err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s, err := badgerstore.Open(t.TempDir(), "hunter2")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	remote := domaintypes.RemoteID("0")
	serialized := []byte("opaque-ratchet-state")
	if err := s.SaveSession(remote, serialized); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	got, ok, err := s.LoadSession(remote)
	if err != nil || !ok || !bytes.Equal(got, serialized) {
		t.Fatalf("got %q ok=%v err=%v, want %q", got, ok, err, serialized)
	}
}

func TestPreKeyLifecycle(t *testing.T) {
	s, err := badgerstore.Open(t.TempDir(), "hunter2")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	spkID := domaintypes.SignedPreKeyID("spk-1")
	if err := s.SaveSignedPreKey(spkID, domaintypes.X25519Private{1}, domaintypes.X25519Public{2}, []byte("sig")); err != nil {
		t.Fatalf("SaveSignedPreKey: %v", err)
	}
	if err := s.SetCurrentSignedPreKeyID(spkID); err != nil {
		t.Fatalf("SetCurrentSignedPreKeyID: %v", err)
	}
	current, ok, err := s.CurrentSignedPreKeyID()
	if err != nil || !ok || current != spkID {
		t.Fatalf("got current=%q ok=%v err=%v, want %q", current, ok, err, spkID)
	}

	opkID := domaintypes.OneTimePreKeyID("opk-1")
	pair := domaintypes.OneTimePreKeyPair{ID: opkID, Priv: domaintypes.X25519Private{7}, Pub: domaintypes.X25519Public{8}}
	if err := s.SaveOneTimePreKeys([]domaintypes.OneTimePreKeyPair{pair}); err != nil {
		t.Fatalf("SaveOneTimePreKeys: %v", err)
	}
	publics, err := s.ListOneTimePreKeyPublics()
	if err != nil || len(publics) != 1 || publics[0].ID != opkID {
		t.Fatalf("got %+v err=%v, want one entry with id %q", publics, err, opkID)
	}

	priv, pub, ok, err := s.ConsumeOneTimePreKey(opkID)
	if err != nil || !ok || priv != pair.Priv || pub != pair.Pub {
		t.Fatalf("unexpected consume result: priv=%v pub=%v ok=%v err=%v", priv, pub, ok, err)
	}
	if _, _, ok, err := s.ConsumeOneTimePreKey(opkID); err != nil || ok {
		t.Fatalf("expected second consume to miss, got ok=%v err=%v", ok, err)
	}
}
