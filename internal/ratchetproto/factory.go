package ratchetproto

import (
	"encoding/json"
	"errors"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

// ErrBadSignedPreKeySignature is returned when a peer's published signed
// pre-key does not verify against their identity signing key.
var ErrBadSignedPreKeySignature = errors.New("ratchetproto: signed pre-key signature invalid")

// Factory is the concrete domaininterfaces.RatchetFactory.
type Factory struct{}

// NewFactory returns a stateless Double Ratchet/X3DH session factory.
func NewFactory() *Factory { return &Factory{} }

var _ domaininterfaces.RatchetFactory = (*Factory)(nil)

// NewInitiator runs the X3DH handshake as the initiator against a peer's
// published PreKeyBundle and bootstraps a sending-capable ratchet session.
func (f *Factory) NewInitiator(local domaintypes.Identity, remote domaintypes.PreKeyBundle) (domaininterfaces.Ratchet, domaintypes.X25519Public, error) {
	if !verifySignedPreKey(remote.SigningKey, remote.SignedPreKey, remote.SignedPreKeySignature) {
		return nil, domaintypes.X25519Public{}, ErrBadSignedPreKeySignature
	}

	ephPriv, ephPub, err := generateX25519()
	if err != nil {
		return nil, domaintypes.X25519Public{}, err
	}

	dh1, err := dh(local.ExchangePriv, remote.SignedPreKey)
	if err != nil {
		return nil, domaintypes.X25519Public{}, err
	}
	dh2, err := dh(ephPriv, remote.IdentityKey)
	if err != nil {
		return nil, domaintypes.X25519Public{}, err
	}
	dh3, err := dh(ephPriv, remote.SignedPreKey)
	if err != nil {
		return nil, domaintypes.X25519Public{}, err
	}

	var dh4 *[32]byte
	if len(remote.OneTimePreKeys) > 0 {
		v, err := dh(ephPriv, remote.OneTimePreKeys[0].Pub)
		if err != nil {
			return nil, domaintypes.X25519Public{}, err
		}
		dh4 = &v
	}

	root := x3dhRoot(dh1, dh2, dh3, dh4)
	newRK, sendCK := kdfRK(root, dh3[:])

	var st state
	copy(st.RootKey[:], newRK)
	st.DHPriv = ephPriv
	st.DHPub = ephPub
	st.PeerDHPub = remote.SignedPreKey
	st.SendCK = sendCK
	st.Skipped = make(map[string][]byte)

	return newSession(st), ephPub, nil
}

// NewResponder completes the X3DH handshake as the responder, using the
// signed pre-key (and, if the initiator consumed one, the one-time
// pre-key) named in the handshake message.
func (f *Factory) NewResponder(
	local domaintypes.Identity,
	remoteIdentityKey domaintypes.X25519Public,
	remoteEphemeral domaintypes.X25519Public,
	usedSignedPreKeyID domaintypes.SignedPreKeyID,
	usedOneTimePreKeyID domaintypes.OneTimePreKeyID,
	hasOneTimePreKey bool,
	preKeys domaininterfaces.PreKeyStore,
) (domaininterfaces.Ratchet, error) {
	spkPriv, spkPub, _, ok, err := preKeys.LoadSignedPreKey(usedSignedPreKeyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("ratchetproto: unknown signed pre-key id")
	}

	dh1, err := dh(spkPriv, remoteIdentityKey)
	if err != nil {
		return nil, err
	}
	dh2, err := dh(local.ExchangePriv, remoteEphemeral)
	if err != nil {
		return nil, err
	}
	dh3, err := dh(spkPriv, remoteEphemeral)
	if err != nil {
		return nil, err
	}

	var dh4 *[32]byte
	if hasOneTimePreKey {
		opkPriv, _, ok, err := preKeys.ConsumeOneTimePreKey(usedOneTimePreKeyID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("ratchetproto: unknown or already-consumed one-time pre-key id")
		}
		v, err := dh(opkPriv, remoteEphemeral)
		if err != nil {
			return nil, err
		}
		dh4 = &v
	}

	root := x3dhRoot(dh1, dh2, dh3, dh4)
	newRK, recvCK := kdfRK(root, dh3[:])

	var st state
	copy(st.RootKey[:], newRK)
	st.DHPriv = spkPriv
	st.DHPub = spkPub
	st.PeerDHPub = remoteEphemeral
	st.RecvCK = recvCK
	st.Skipped = make(map[string][]byte)

	return newSession(st), nil
}

// FromSerialized resumes a ratchet session from a SessionStore blob
// written by a prior Serialize call.
func (f *Factory) FromSerialized(data []byte) (domaininterfaces.Ratchet, error) {
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st.Skipped == nil {
		st.Skipped = make(map[string][]byte)
	}
	return newSession(st), nil
}
