package ratchetproto_test

import (
	"testing"

	internalcrypto "github.com/murat-sen-cloudpeer/webcrypto-local/internal/crypto"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/ratchetproto"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/store"
)

func testIdentity(t *testing.T) domaintypes.Identity {
	t.Helper()
	signPriv, signPub, err := internalcrypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	exPriv, exPub, err := internalcrypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	return domaintypes.Identity{
		SigningPriv:  signPriv,
		SigningPub:   signPub,
		ExchangePriv: exPriv,
		ExchangePub:  exPub,
	}
}

func TestBuildPreKeyBundleBootstrapsOnFirstCall(t *testing.T) {
	identity := testIdentity(t)
	preKeys := store.NewPreKeyFileStore(t.TempDir())

	bundle, err := ratchetproto.BuildPreKeyBundle(identity, preKeys)
	if err != nil {
		t.Fatalf("BuildPreKeyBundle: %v", err)
	}
	if bundle.SignedPreKeyID == "" {
		t.Fatalf("expected a non-empty signed pre-key id")
	}
	if len(bundle.OneTimePreKeys) != 10 {
		t.Fatalf("got %d one-time pre-keys, want 10", len(bundle.OneTimePreKeys))
	}
	if !internalcrypto.VerifyEd25519(identity.SigningPub, bundle.SignedPreKey.Slice(), bundle.SignedPreKeySignature) {
		t.Fatalf("signed pre-key signature does not verify against the identity's signing key")
	}
}

func TestBuildPreKeyBundleReusesExistingSignedPreKey(t *testing.T) {
	identity := testIdentity(t)
	preKeys := store.NewPreKeyFileStore(t.TempDir())

	first, err := ratchetproto.BuildPreKeyBundle(identity, preKeys)
	if err != nil {
		t.Fatalf("first BuildPreKeyBundle: %v", err)
	}
	second, err := ratchetproto.BuildPreKeyBundle(identity, preKeys)
	if err != nil {
		t.Fatalf("second BuildPreKeyBundle: %v", err)
	}
	if first.SignedPreKeyID != second.SignedPreKeyID {
		t.Fatalf("expected the same signed pre-key id across calls, got %q then %q", first.SignedPreKeyID, second.SignedPreKeyID)
	}
}

func TestGenerateOneTimePreKeysAppends(t *testing.T) {
	preKeys := store.NewPreKeyFileStore(t.TempDir())

	if err := ratchetproto.GenerateOneTimePreKeys(preKeys, 3); err != nil {
		t.Fatalf("GenerateOneTimePreKeys: %v", err)
	}
	publics, err := preKeys.ListOneTimePreKeyPublics()
	if err != nil {
		t.Fatalf("ListOneTimePreKeyPublics: %v", err)
	}
	if len(publics) != 3 {
		t.Fatalf("got %d one-time pre-keys, want 3", len(publics))
	}

	if err := ratchetproto.GenerateOneTimePreKeys(preKeys, 2); err != nil {
		t.Fatalf("GenerateOneTimePreKeys: %v", err)
	}
	publics, err = preKeys.ListOneTimePreKeyPublics()
	if err != nil {
		t.Fatalf("ListOneTimePreKeyPublics: %v", err)
	}
	if len(publics) != 5 {
		t.Fatalf("got %d one-time pre-keys after topping up, want 5", len(publics))
	}
}
