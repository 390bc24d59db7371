package app

import (
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	internalcrypto "github.com/murat-sen-cloudpeer/webcrypto-local/internal/crypto"
)

// generateIdentity mints a fresh long-term signing and exchange key pair
// for a first-run daemon.
func generateIdentity() (domaintypes.Identity, error) {
	signingPriv, signingPub, err := internalcrypto.GenerateEd25519()
	if err != nil {
		return domaintypes.Identity{}, err
	}
	exchangePriv, exchangePub, err := internalcrypto.GenerateX25519()
	if err != nil {
		return domaintypes.Identity{}, err
	}
	return domaintypes.Identity{
		SigningPub:   signingPub,
		SigningPriv:  signingPriv,
		ExchangePub:  exchangePub,
		ExchangePriv: exchangePriv,
	}, nil
}
