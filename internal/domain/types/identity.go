package types

// Identity holds the long-lived local asymmetric identity used to bootstrap
// the Double Ratchet channel: a signing key pair, an exchange key pair, and
// the pre-key material published to counterparties. Created on first run,
// persisted, and reused across every subsequent connection.
type Identity struct {
	SigningPub  Ed25519Public  `json:"signing_pub"`
	SigningPriv Ed25519Private `json:"signing_priv"`
	ExchangePub X25519Public   `json:"exchange_pub"`
	ExchangePriv X25519Private `json:"exchange_priv"`
}

// RemoteIdentity is a pinned counterparty public identity, keyed by a
// stable logical identifier. Created on the first successful handshake;
// overwritten on reprovisioning.
type RemoteIdentity struct {
	RemoteID    RemoteID      `json:"remote_id"`
	SigningPub  Ed25519Public `json:"signing_pub"`
	ExchangePub X25519Public  `json:"exchange_pub"`
}
