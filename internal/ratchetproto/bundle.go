package ratchetproto

import (
	"fmt"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	internalcrypto "github.com/murat-sen-cloudpeer/webcrypto-local/internal/crypto"
)

// GenerateSignedPreKey mints a fresh X25519 pre-key pair, signs its public
// half with identity's Ed25519 key, and persists it via preKeys before
// returning. The returned id is the one a published PreKeyBundle must
// carry in its SignedPreKeyID field.
func GenerateSignedPreKey(identity domaintypes.Identity, preKeys domaininterfaces.PreKeyStore) (domaintypes.SignedPreKeyID, error) {
	priv, pub, err := internalcrypto.GenerateX25519()
	if err != nil {
		return "", fmt.Errorf("ratchetproto: generating signed pre-key: %w", err)
	}
	fp, err := internalcrypto.RandomFingerprint()
	if err != nil {
		return "", fmt.Errorf("ratchetproto: minting signed pre-key id: %w", err)
	}
	id := domaintypes.SignedPreKeyID(fp)
	sig := internalcrypto.SignEd25519(identity.SigningPriv, pub.Slice())
	if err := preKeys.SaveSignedPreKey(id, priv, pub, sig); err != nil {
		return "", fmt.Errorf("ratchetproto: saving signed pre-key: %w", err)
	}
	if err := preKeys.SetCurrentSignedPreKeyID(id); err != nil {
		return "", fmt.Errorf("ratchetproto: setting current signed pre-key: %w", err)
	}
	return id, nil
}

// GenerateOneTimePreKeys mints count fresh one-time pre-key pairs and
// persists them via preKeys, topping up the pool a client can draw from
// during X3DH.
func GenerateOneTimePreKeys(preKeys domaininterfaces.PreKeyStore, count int) error {
	pairs := make([]domaintypes.OneTimePreKeyPair, 0, count)
	for i := 0; i < count; i++ {
		priv, pub, err := internalcrypto.GenerateX25519()
		if err != nil {
			return fmt.Errorf("ratchetproto: generating one-time pre-key: %w", err)
		}
		fp, err := internalcrypto.RandomFingerprint()
		if err != nil {
			return fmt.Errorf("ratchetproto: minting one-time pre-key id: %w", err)
		}
		pairs = append(pairs, domaintypes.OneTimePreKeyPair{
			ID:   domaintypes.OneTimePreKeyID(fp),
			Priv: priv,
			Pub:  pub,
		})
	}
	return preKeys.SaveOneTimePreKeys(pairs)
}

// BuildPreKeyBundle assembles the publishable PreKeyBundle for identity
// out of whatever pre-key material preKeys currently holds, minting a
// fresh signed pre-key first if none has been published yet.
func BuildPreKeyBundle(identity domaintypes.Identity, preKeys domaininterfaces.PreKeyStore) (domaintypes.PreKeyBundle, error) {
	id, ok, err := preKeys.CurrentSignedPreKeyID()
	if err != nil {
		return domaintypes.PreKeyBundle{}, fmt.Errorf("ratchetproto: loading current signed pre-key id: %w", err)
	}
	if !ok {
		id, err = GenerateSignedPreKey(identity, preKeys)
		if err != nil {
			return domaintypes.PreKeyBundle{}, err
		}
		if err := GenerateOneTimePreKeys(preKeys, defaultOneTimePreKeyBatch); err != nil {
			return domaintypes.PreKeyBundle{}, err
		}
	}

	_, spkPub, sig, ok, err := preKeys.LoadSignedPreKey(id)
	if err != nil {
		return domaintypes.PreKeyBundle{}, fmt.Errorf("ratchetproto: loading signed pre-key: %w", err)
	}
	if !ok {
		return domaintypes.PreKeyBundle{}, fmt.Errorf("ratchetproto: signed pre-key %q vanished", id)
	}

	otps, err := preKeys.ListOneTimePreKeyPublics()
	if err != nil {
		return domaintypes.PreKeyBundle{}, fmt.Errorf("ratchetproto: listing one-time pre-keys: %w", err)
	}

	return domaintypes.PreKeyBundle{
		IdentityKey:           identity.ExchangePub,
		SigningKey:            identity.SigningPub,
		SignedPreKeyID:        id,
		SignedPreKey:          spkPub,
		SignedPreKeySignature: sig,
		OneTimePreKeys:        otps,
	}, nil
}

// defaultOneTimePreKeyBatch is how many one-time pre-keys a freshly
// bootstrapped identity publishes before any have been consumed.
const defaultOneTimePreKeyBatch = 10
