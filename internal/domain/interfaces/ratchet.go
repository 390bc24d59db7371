package interfaces

import domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"

// Ratchet is a live Double Ratchet session. A session's Encrypt and Decrypt
// must never be called concurrently from more than one goroutine; callers
// serialize access (the dispatcher holds one mutex per connection across
// every encrypt/decrypt call).
type Ratchet interface {
	// Encrypt advances the sending chain and returns a single opaque frame
	// (header plus ciphertext) ready to hand to the transport.
	Encrypt(plaintext []byte) (frame []byte, err error)
	// Decrypt opens a frame produced by the peer's Encrypt, transparently
	// handling out-of-order delivery and DH-ratcheting forward as needed.
	Decrypt(frame []byte) (plaintext []byte, err error)

	// Serialize captures the full ratchet state (root key, chain keys,
	// skipped-message-key window, DH ratchet key pair) so it can be
	// persisted via a RatchetSessionStore and resumed with FromSerialized.
	Serialize() ([]byte, error)

	// Updates fires whenever the ratchet's internal state advances
	// (every successful Encrypt or Decrypt), letting a caller trigger a
	// persist-before-ack write without polling.
	Updates() <-chan struct{}
}

// RatchetFactory constructs a Ratchet either fresh from an X3DH handshake
// or resumed from a previously serialized state.
type RatchetFactory interface {
	// NewInitiator runs X3DH against a published PreKeyBundle and returns
	// the resulting session along with the fresh ephemeral public key the
	// caller must send to the peer to let it derive the same root key.
	NewInitiator(local domaintypes.Identity, remote domaintypes.PreKeyBundle) (session Ratchet, ephemeralPublic domaintypes.X25519Public, err error)
	NewResponder(
		local domaintypes.Identity,
		remoteIdentityKey domaintypes.X25519Public,
		remoteEphemeral domaintypes.X25519Public,
		usedSignedPreKeyID domaintypes.SignedPreKeyID,
		usedOneTimePreKeyID domaintypes.OneTimePreKeyID,
		hasOneTimePreKey bool,
		preKeys PreKeyStore,
	) (Ratchet, error)
	FromSerialized(state []byte) (Ratchet, error)
}
