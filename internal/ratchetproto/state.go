// Package ratchetproto implements the X3DH handshake and Double Ratchet
// session algorithm behind the domain/interfaces.Ratchet contract.
package ratchetproto

import (
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

const maxSkippedMessageKeys = 1000

// header travels alongside each ciphertext so the peer can advance its
// ratchet: the sender's current DH public key, the length of the previous
// sending chain, and the message index within the current chain.
type header struct {
	DHPub [32]byte `json:"dh_pub"`
	PN    uint32   `json:"pn"`
	N     uint32   `json:"n"`
}

// state is the full mutable Double Ratchet state for one peer. It is the
// exact shape persisted by a SessionStore between connections.
type state struct {
	RootKey   [32]byte               `json:"root_key"`
	DHPriv    domaintypes.X25519Private `json:"dh_priv"`
	DHPub     domaintypes.X25519Public  `json:"dh_pub"`
	PeerDHPub domaintypes.X25519Public  `json:"peer_dh_pub"`
	SendCK    []byte                 `json:"send_ck,omitempty"`
	RecvCK    []byte                 `json:"recv_ck,omitempty"`
	Ns        uint32                 `json:"ns"`
	Nr        uint32                 `json:"nr"`
	PN        uint32                 `json:"pn"`
	// Skipped maps a peer-DH-pub||index key to a derived but unused
	// message key, bounded by maxSkippedMessageKeys.
	Skipped map[string][]byte `json:"skipped,omitempty"`
}
