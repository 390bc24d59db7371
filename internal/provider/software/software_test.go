package software_test

import (
	"testing"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/provider/software"
)

func TestDigestSHA256(t *testing.T) {
	p := software.New()
	got, err := p.Subtle().Digest("SHA-256", []byte("hello"))
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if len(got) != 32 {
		t.Fatalf("got digest length %d, want 32", len(got))
	}
}

func TestGenerateKeyAESGCMEncryptDecryptRoundTrip(t *testing.T) {
	p := software.New()
	handles, err := p.Subtle().GenerateKey("AES-GCM", true, []domaintypes.KeyUsage{domaintypes.UsageEncrypt, domaintypes.UsageDecrypt})
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if len(handles) != 1 {
		t.Fatalf("got %d handles, want 1", len(handles))
	}
	key := handles[0]

	plaintext := []byte("the message")
	ct, err := p.Subtle().Encrypt("AES-GCM", key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	pt, err := p.Subtle().Decrypt("AES-GCM", key, ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(pt) != string(plaintext) {
		t.Fatalf("got %q, want %q", pt, plaintext)
	}
}

func TestGenerateKeyECDSASignVerify(t *testing.T) {
	p := software.New()
	handles, err := p.Subtle().GenerateKey("ECDSA-P256", true, []domaintypes.KeyUsage{domaintypes.UsageSign, domaintypes.UsageVerify})
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	var pub, priv domaintypes.CryptoHandle
	for _, h := range handles {
		if h.Kind == domaintypes.HandlePublicKey {
			pub = h
		} else {
			priv = h
		}
	}
	if pub.ID != priv.ID {
		t.Fatalf("expected the public and private handle to share an id, got %q and %q", pub.ID, priv.ID)
	}

	data := []byte("sign me")
	sig, err := p.Subtle().Sign("SHA-256", priv, data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	ok, err := p.Subtle().Verify("SHA-256", pub, sig, data)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected signature to verify")
	}

	if ok, _ := p.Subtle().Verify("SHA-256", pub, sig, []byte("tampered")); ok {
		t.Fatal("expected signature over tampered data to fail verification")
	}
}

func TestX25519DeriveBitsAgreesBothDirections(t *testing.T) {
	p := software.New()

	aliceHandles, err := p.Subtle().GenerateKey("X25519", true, nil)
	if err != nil {
		t.Fatalf("GenerateKey alice: %v", err)
	}
	bobHandles, err := p.Subtle().GenerateKey("X25519", true, nil)
	if err != nil {
		t.Fatalf("GenerateKey bob: %v", err)
	}

	var alicePriv, alicePub, bobPriv, bobPub domaintypes.CryptoHandle
	for _, h := range aliceHandles {
		if h.Kind == domaintypes.HandlePrivateKey {
			alicePriv = h
		} else {
			alicePub = h
		}
	}
	for _, h := range bobHandles {
		if h.Kind == domaintypes.HandlePrivateKey {
			bobPriv = h
		} else {
			bobPub = h
		}
	}

	bobPubRaw, err := p.Subtle().ExportKey("raw", bobPub)
	if err != nil {
		t.Fatalf("ExportKey bob public: %v", err)
	}
	alicePubRaw, err := p.Subtle().ExportKey("raw", alicePub)
	if err != nil {
		t.Fatalf("ExportKey alice public: %v", err)
	}

	aliceShared, err := p.Subtle().DeriveBits("X25519|"+string(bobPubRaw), alicePriv, 256)
	if err != nil {
		t.Fatalf("DeriveBits alice: %v", err)
	}
	bobShared, err := p.Subtle().DeriveBits("X25519|"+string(alicePubRaw), bobPriv, 256)
	if err != nil {
		t.Fatalf("DeriveBits bob: %v", err)
	}
	if string(aliceShared) != string(bobShared) {
		t.Fatal("expected both sides to derive the same shared secret")
	}
}

func TestKeyStorageLifecycle(t *testing.T) {
	p := software.New()
	ks := p.KeyStorage()

	handle := domaintypes.CryptoHandle{ID: "abc", ProviderID: software.ProviderID, Kind: domaintypes.HandleSecretKey}
	if err := ks.SetItem("slot-1", handle); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	got, ok, err := ks.GetItem("slot-1")
	if err != nil || !ok || got != handle {
		t.Fatalf("got %+v ok=%v err=%v, want %+v", got, ok, err, handle)
	}

	keys, err := ks.Keys()
	if err != nil || len(keys) != 1 || keys[0] != "slot-1" {
		t.Fatalf("got %v err=%v, want [slot-1]", keys, err)
	}

	if err := ks.RemoveItem("slot-1"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if _, ok, _ := ks.GetItem("slot-1"); ok {
		t.Fatal("expected slot-1 to be removed")
	}
}
