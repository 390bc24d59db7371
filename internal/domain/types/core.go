package types

// RemoteID is the stable logical identifier a RemoteIdentity is keyed by.
// The source pins the unique local server under the literal id "0"; a
// gateway that fronts several distinct peers would use one RemoteID per
// peer instead.
type RemoteID string

// String returns the string form of the identifier.
func (id RemoteID) String() string { return string(id) }

// Fingerprint is a short identifier for a public key, presented to users
// or compared out-of-band.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// SignedPreKeyID uniquely identifies a signed pre-key.
type SignedPreKeyID string

// String returns the string form of the identifier.
func (id SignedPreKeyID) String() string { return string(id) }

// OneTimePreKeyID uniquely identifies a one-time pre-key.
type OneTimePreKeyID string

// String returns the string form of the identifier.
func (id OneTimePreKeyID) String() string { return string(id) }

// ActionTag is the stable wire identifier of an action family member, e.g.
// "Digest" or "KeyStorage.GetItem". Tags never collide across families.
type ActionTag string

// String returns the string form of the tag.
func (t ActionTag) String() string { return string(t) }

// HandleKind is the type discriminator carried on a CryptoHandle.
type HandleKind string

const (
	HandlePublicKey  HandleKind = "public"
	HandlePrivateKey HandleKind = "private"
	HandleSecretKey  HandleKind = "secret"
	HandleX509Cert   HandleKind = "x509"
	HandleRequest    HandleKind = "request"
)
