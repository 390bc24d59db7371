package types

// CryptoHandle is the opaque reference to a live key or certificate object
// that crosses the wire. It never contains key material. Handles for an
// asymmetric key pair share the same ID (the public key's thumbprint) with
// different Kind fields.
type CryptoHandle struct {
	ID         Fingerprint `json:"id"`
	ProviderID string      `json:"provider_id"`
	Kind       HandleKind  `json:"type"`
}

// Equal reports whether two handles reference the same triple.
func (h CryptoHandle) Equal(o CryptoHandle) bool {
	return h.ID == o.ID && h.ProviderID == o.ProviderID && h.Kind == o.Kind
}
