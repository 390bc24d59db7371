package interfaces

import domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"

// IdentityStore persists the long-lived local identity. SaveIdentity and
// LoadIdentity are atomic with respect to every other store pair: no
// partial writes are observable by a concurrent reader.
type IdentityStore interface {
	SaveIdentity(id domaintypes.Identity) error
	LoadIdentity() (domaintypes.Identity, error)
}

// RemoteIdentityStore persists pinned counterparty identities, keyed by
// their logical RemoteID.
type RemoteIdentityStore interface {
	SaveRemoteIdentity(remote domaintypes.RemoteID, id domaintypes.RemoteIdentity) error
	LoadRemoteIdentity(remote domaintypes.RemoteID) (domaintypes.RemoteIdentity, bool, error)
}

// RatchetSessionStore persists the serialized Double Ratchet session state
// for a peer. The blob is opaque to the store; only internal/ratchetproto
// knows how to interpret it. Saves happen synchronously before the reply
// that advanced the ratchet is acknowledged (see DESIGN.md's
// persist-before-ack decision), so a crash never desynchronizes the
// ratchet.
type RatchetSessionStore interface {
	SaveSession(remote domaintypes.RemoteID, serialized []byte) error
	LoadSession(remote domaintypes.RemoteID) ([]byte, bool, error)
}

// PreKeyStore manages the signed pre-key and one-time pre-keys this
// identity has published, so an inbound handshake can be completed
// against the matching private halves.
type PreKeyStore interface {
	SaveSignedPreKey(
		id domaintypes.SignedPreKeyID,
		priv domaintypes.X25519Private,
		pub domaintypes.X25519Public,
		sig []byte,
	) error
	LoadSignedPreKey(id domaintypes.SignedPreKeyID) (
		priv domaintypes.X25519Private,
		pub domaintypes.X25519Public,
		sig []byte,
		ok bool,
		err error,
	)
	SetCurrentSignedPreKeyID(id domaintypes.SignedPreKeyID) error
	CurrentSignedPreKeyID() (domaintypes.SignedPreKeyID, bool, error)

	SaveOneTimePreKeys(pairs []domaintypes.OneTimePreKeyPair) error
	ConsumeOneTimePreKey(id domaintypes.OneTimePreKeyID) (
		priv domaintypes.X25519Private,
		pub domaintypes.X25519Public,
		ok bool,
		err error,
	)
	ListOneTimePreKeyPublics() ([]domaintypes.OneTimePreKeyPublic, error)
}
