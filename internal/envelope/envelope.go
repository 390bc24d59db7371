// Package envelope implements a passphrase-encrypted blob format shared by
// every persistence backend that needs to protect the local identity at
// rest: file-backed and badger-backed stores alike.
package envelope

import (
	"crypto/rand"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// Blob is the on-disk envelope for a passphrase-encrypted value: enough
// scrypt parameters to re-derive the key plus a random salt and nonce.
type Blob struct {
	N          int    `json:"n"`
	R          int    `json:"r"`
	P          int    `json:"p"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// DefaultScryptParams returns the cost parameters used for newly sealed
// envelopes. N=2^15 keeps key derivation under roughly 100ms on commodity
// hardware while remaining expensive for an offline guesser.
func DefaultScryptParams() (n, r, p int) { return 1 << 15, 8, 1 }

// ErrWrongPassphrase is returned by Open when the passphrase does not match
// or the envelope has been tampered with.
var ErrWrongPassphrase = errors.New("envelope: wrong passphrase or corrupted data")

// Seal encrypts plaintext under a key derived from passphrase and returns
// the serialized envelope.
func Seal(passphrase string, plaintext []byte, n, r, p int) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt, n, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, plaintext, nil)
	return json.Marshal(Blob{N: n, R: r, P: p, Salt: salt, Nonce: nonce, Ciphertext: ct})
}

// Open decrypts a serialized envelope under a key derived from passphrase.
func Open(passphrase string, data []byte) ([]byte, error) {
	var b Blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), b.Salt, b.N, b.R, b.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, b.Nonce, b.Ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
