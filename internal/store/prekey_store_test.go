package store_test

import (
	"testing"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/store"
)

func TestPreKeyFileStoreSignedPreKeyRoundTrip(t *testing.T) {
	s := store.NewPreKeyFileStore(t.TempDir())

	id := domaintypes.SignedPreKeyID("spk-1")
	priv := domaintypes.X25519Private{1}
	pub := domaintypes.X25519Public{2}
	sig := []byte("signature")

	if err := s.SaveSignedPreKey(id, priv, pub, sig); err != nil {
		t.Fatalf("SaveSignedPreKey: %v", err)
	}
	if err := s.SetCurrentSignedPreKeyID(id); err != nil {
		t.Fatalf("SetCurrentSignedPreKeyID: %v", err)
	}

	gotPriv, gotPub, gotSig, ok, err := s.LoadSignedPreKey(id)
	if err != nil {
		t.Fatalf("LoadSignedPreKey: %v", err)
	}
	if !ok {
		t.Fatalf("expected signed pre-key to be found")
	}
	if gotPriv != priv || gotPub != pub || string(gotSig) != string(sig) {
		t.Fatalf("round trip mismatch")
	}

	current, ok, err := s.CurrentSignedPreKeyID()
	if err != nil {
		t.Fatalf("CurrentSignedPreKeyID: %v", err)
	}
	if !ok || current != id {
		t.Fatalf("got current=%q ok=%v, want %q true", current, ok, id)
	}
}

func TestPreKeyFileStoreOneTimePreKeyConsumedOnce(t *testing.T) {
	s := store.NewPreKeyFileStore(t.TempDir())

	id := domaintypes.OneTimePreKeyID("opk-1")
	pair := domaintypes.OneTimePreKeyPair{ID: id, Priv: domaintypes.X25519Private{9}, Pub: domaintypes.X25519Public{8}}
	if err := s.SaveOneTimePreKeys([]domaintypes.OneTimePreKeyPair{pair}); err != nil {
		t.Fatalf("SaveOneTimePreKeys: %v", err)
	}

	publics, err := s.ListOneTimePreKeyPublics()
	if err != nil {
		t.Fatalf("ListOneTimePreKeyPublics: %v", err)
	}
	if len(publics) != 1 || publics[0].ID != id {
		t.Fatalf("got %+v, want one entry with id %q", publics, id)
	}

	priv, pub, ok, err := s.ConsumeOneTimePreKey(id)
	if err != nil {
		t.Fatalf("ConsumeOneTimePreKey: %v", err)
	}
	if !ok || priv != pair.Priv || pub != pair.Pub {
		t.Fatalf("unexpected consume result: priv=%v pub=%v ok=%v", priv, pub, ok)
	}

	if _, _, ok, err := s.ConsumeOneTimePreKey(id); err != nil || ok {
		t.Fatalf("expected second consume of %q to miss, got ok=%v err=%v", id, ok, err)
	}
}
