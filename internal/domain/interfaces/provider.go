package interfaces

import (
	"context"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

// PromptFunc requests a PIN or passphrase from whatever is driving the
// provider login (a CLI prompt, a UI dialog) without the provider itself
// depending on any presentation layer.
type PromptFunc func(ctx context.Context, prompt string) (string, error)

// Subtle is the crypto.subtle-shaped operation surface a Provider exposes.
// Every method takes and returns opaque CryptoHandles; key material never
// leaves the provider's process boundary.
type Subtle interface {
	Digest(algorithm string, data []byte) ([]byte, error)

	GenerateKey(algorithm string, extractable bool, usages []domaintypes.KeyUsage) ([]domaintypes.CryptoHandle, error)
	ImportKey(format string, keyData []byte, algorithm string, extractable bool, usages []domaintypes.KeyUsage) (domaintypes.CryptoHandle, error)
	ExportKey(format string, key domaintypes.CryptoHandle) ([]byte, error)

	Sign(algorithm string, key domaintypes.CryptoHandle, data []byte) ([]byte, error)
	Verify(algorithm string, key domaintypes.CryptoHandle, signature []byte, data []byte) (bool, error)

	Encrypt(algorithm string, key domaintypes.CryptoHandle, data []byte) ([]byte, error)
	Decrypt(algorithm string, key domaintypes.CryptoHandle, data []byte) ([]byte, error)

	DeriveBits(algorithm string, baseKey domaintypes.CryptoHandle, length int) ([]byte, error)
	DeriveKey(algorithm string, baseKey domaintypes.CryptoHandle, derivedKeyAlgorithm string, extractable bool, usages []domaintypes.KeyUsage) (domaintypes.CryptoHandle, error)

	WrapKey(format string, key domaintypes.CryptoHandle, wrappingKey domaintypes.CryptoHandle, algorithm string) ([]byte, error)
	UnwrapKey(format string, wrappedKey []byte, unwrappingKey domaintypes.CryptoHandle, unwrapAlgorithm string, unwrappedKeyAlgorithm string, extractable bool, usages []domaintypes.KeyUsage) (domaintypes.CryptoHandle, error)
}

// KeyStorage is the provider-resident named-slot key store backing the
// KeyStorage.* action family.
type KeyStorage interface {
	GetItem(name string) (domaintypes.CryptoHandle, bool, error)
	SetItem(name string, key domaintypes.CryptoHandle) error
	RemoveItem(name string) error
	Keys() ([]string, error)
	Clear() error
}

// CertStorage is the provider-resident named-slot certificate store
// backing the CertStorage.* action family, mirroring KeyStorage.
type CertStorage interface {
	GetItem(name string) (domaintypes.CryptoHandle, bool, error)
	SetItem(name string, cert domaintypes.CryptoHandle) error
	RemoveItem(name string) error
	Keys() ([]string, error)
	Clear() error
	ImportCert(data []byte, certType domaintypes.HandleKind) (domaintypes.CryptoHandle, error)
	ExportCert(cert domaintypes.CryptoHandle) ([]byte, error)
}

// Provider is a single crypto backend, software-only or token-backed. Its
// ID is stable for its lifetime and is embedded in every CryptoHandle it
// mints.
type Provider interface {
	ID() string
	Info() domaintypes.ProviderInfo
	Subtle() Subtle
	KeyStorage() KeyStorage
	CertStorage() CertStorage
	RequiresLogin() bool
	Login(ctx context.Context, prompt PromptFunc) error
}

// ProviderRegistry tracks the set of live providers and notifies
// subscribers when token-backed ones appear or disappear.
type ProviderRegistry interface {
	List() []domaintypes.ProviderInfo
	Get(id string) (Provider, bool)
	Subscribe() <-chan domaintypes.ProviderTokenEvent
}
