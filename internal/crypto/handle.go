package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

// SPKIFingerprint derives a handle ID for a public key by hashing its
// raw SPKI-equivalent encoding. Public keys of the same bytes always
// collide onto the same handle ID, so two independently imported copies
// of a public key share one handle ID; each import still adds its own
// registry entry, and a lookup of that ID resolves to the first one.
func SPKIFingerprint(pub []byte) domaintypes.Fingerprint {
	sum := sha256.Sum256(pub)
	return domaintypes.Fingerprint(hex.EncodeToString(sum[:]))
}

// RandomFingerprint mints an unlinkable handle ID for private and secret
// keys, which have no stable public encoding to hash.
func RandomFingerprint() (domaintypes.Fingerprint, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return domaintypes.Fingerprint(hex.EncodeToString(b[:])), nil
}
