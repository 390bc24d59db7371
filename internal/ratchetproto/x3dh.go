package ratchetproto

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"

	"golang.org/x/crypto/curve25519"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/util/memzero"
)

// x3dhRoot derives the shared root key from the four (or three, if no
// one-time pre-key was available) Diffie-Hellman outputs of an X3DH
// handshake. The DH order must be identical on both ends: initiator and
// responder exchange the same four values, just computed from opposite
// sides of each pair.
func x3dhRoot(dh1, dh2, dh3 [32]byte, dh4 *[32]byte) []byte {
	concat := make([]byte, 0, 32*4)
	concat = append(concat, dh1[:]...)
	concat = append(concat, dh2[:]...)
	concat = append(concat, dh3[:]...)
	if dh4 != nil {
		concat = append(concat, dh4[:]...)
	}
	root := hkdfSHA256(concat, nil, []byte("webcrypto-local|x3dh-root"), 32)
	memzero.Zero(concat)
	return root
}

// verifySignedPreKey checks that identityKey actually signed signedPreKey.
func verifySignedPreKey(identityKey domaintypes.Ed25519Public, signedPreKey domaintypes.X25519Public, sig []byte) bool {
	return ed25519.Verify(identityKey.Slice(), signedPreKey.Slice(), sig)
}

func dh(priv domaintypes.X25519Private, pub domaintypes.X25519Public) ([32]byte, error) {
	res, err := curve25519.X25519(priv.Slice(), pub.Slice())
	var out [32]byte
	if err != nil {
		return out, err
	}
	copy(out[:], res)
	return out, nil
}

// hkdfSHA256 is a minimal RFC 5869 HKDF-Extract-then-Expand over SHA-256,
// used for the one-shot root key derivation (the ratchet chains
// themselves use golang.org/x/crypto/hkdf directly).
func hkdfSHA256(ikm, salt, info []byte, outLen int) []byte {
	if salt == nil {
		salt = make([]byte, sha256.Size)
	}
	prk := hmacSum(salt, ikm)
	var (
		t   []byte
		okm []byte
		cnt byte = 1
	)
	for len(okm) < outLen {
		h := hmac.New(sha256.New, prk)
		h.Write(t)
		h.Write(info)
		h.Write([]byte{cnt})
		t = h.Sum(nil)
		okm = append(okm, t...)
		cnt++
	}
	return okm[:outLen]
}

func hmacSum(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
