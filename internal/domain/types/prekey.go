package types

// OneTimePreKeyPair is the full (private+public) one-time pre-key stored
// locally, consumed at most once.
type OneTimePreKeyPair struct {
	ID   OneTimePreKeyID `json:"id"`
	Priv X25519Private   `json:"priv"`
	Pub  X25519Public    `json:"pub"`
}

// OneTimePreKeyPublic is only the public half, as published in a bundle.
type OneTimePreKeyPublic struct {
	ID  OneTimePreKeyID `json:"id"`
	Pub X25519Public    `json:"pub"`
}

// PreKeyBundle is the ephemeral bootstrap material the server publishes
// over the plaintext discovery endpoint. A client consumes it once per
// handshake to create a Session.
type PreKeyBundle struct {
	IdentityKey           X25519Public          `json:"identity_key"`
	SigningKey            Ed25519Public         `json:"signing_key"`
	SignedPreKeyID        SignedPreKeyID        `json:"signed_pre_key_id"`
	SignedPreKey          X25519Public          `json:"signed_pre_key"`
	SignedPreKeySignature []byte                `json:"signed_pre_key_signature"`
	OneTimePreKeys        []OneTimePreKeyPublic `json:"one_time_pre_keys,omitempty"`
}

// ServerInfo is served as JSON from the plaintext discovery endpoint.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	// PreKey is the base64 encoding of a serialized PreKeyBundle.
	PreKey string `json:"preKey"`
}
