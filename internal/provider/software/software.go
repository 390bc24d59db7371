// Package software implements the always-present software-only
// WebCrypto provider: RSA-PSS/PKCS1v1.5, ECDSA P-256/P-384, X25519,
// Ed25519, AES-GCM, HMAC and HKDF, built on stdlib crypto/* plus
// golang.org/x/crypto where the stdlib has no equivalent. It never
// requires login.
package software

import (
	"context"
	"sync"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

// ProviderID is the stable id embedded in every handle this provider mints.
const ProviderID = "software"

// storedKey is whatever live Go crypto object a minted handle resolves
// to: a crypto.Signer, a crypto.Decrypter, raw secret bytes, or raw public
// key bytes for algorithms the stdlib has no interface type for (X25519).
type storedKey struct {
	kind domaintypes.HandleKind
	alg  string
	obj  interface{}
}

// Provider is the concrete software WebCrypto provider.
type Provider struct {
	mu   sync.RWMutex
	keys map[domaintypes.Fingerprint]map[domaintypes.HandleKind]storedKey

	keyStorage  *namedStorage
	certStorage *certStorage
}

// New returns a ready-to-use software Provider.
func New() *Provider {
	p := &Provider{
		keys:       make(map[domaintypes.Fingerprint]map[domaintypes.HandleKind]storedKey),
		keyStorage: newNamedStorage(),
	}
	p.certStorage = newCertStorage(p)
	return p
}

// ID implements domaininterfaces.Provider.
func (p *Provider) ID() string { return ProviderID }

// Info implements domaininterfaces.Provider.
func (p *Provider) Info() domaintypes.ProviderInfo {
	return domaintypes.ProviderInfo{ID: ProviderID, Name: "Software", RequiresAuth: false}
}

// RequiresLogin implements domaininterfaces.Provider. The software
// provider never gates on a login step.
func (p *Provider) RequiresLogin() bool { return false }

// Login implements domaininterfaces.Provider as a no-op success.
func (p *Provider) Login(ctx context.Context, prompt domaininterfaces.PromptFunc) error { return nil }

// Subtle implements domaininterfaces.Provider.
func (p *Provider) Subtle() domaininterfaces.Subtle { return (*subtle)(p) }

// KeyStorage implements domaininterfaces.Provider.
func (p *Provider) KeyStorage() domaininterfaces.KeyStorage { return p.keyStorage }

// CertStorage implements domaininterfaces.Provider.
func (p *Provider) CertStorage() domaininterfaces.CertStorage { return p.certStorage }

func (p *Provider) put(id domaintypes.Fingerprint, kind domaintypes.HandleKind, alg string, obj interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	byKind, ok := p.keys[id]
	if !ok {
		byKind = make(map[domaintypes.HandleKind]storedKey)
		p.keys[id] = byKind
	}
	byKind[kind] = storedKey{kind: kind, alg: alg, obj: obj}
}

func (p *Provider) get(h domaintypes.CryptoHandle) (storedKey, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	byKind, ok := p.keys[h.ID]
	if !ok {
		return storedKey{}, false
	}
	sk, ok := byKind[h.Kind]
	return sk, ok
}

var _ domaininterfaces.Provider = (*Provider)(nil)
