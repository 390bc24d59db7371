package software

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"sort"
	"sync"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	internalcrypto "github.com/murat-sen-cloudpeer/webcrypto-local/internal/crypto"
)

// algNameForPublicKey guesses the algorithm label to store alongside a
// certificate's embedded public key. Sign/Verify dispatch on the stored
// object's Go type, not this label; it exists for ExportKey's raw-support
// check and error messages.
func algNameForPublicKey(pub interface{}) string {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		if k.Curve == elliptic.P384() {
			return "ECDSA-P384"
		}
		return "ECDSA-P256"
	case *rsa.PublicKey:
		return "RSASSA-PKCS1-v1_5"
	default:
		return "unknown"
	}
}

// certStorage is the provider-resident named-slot certificate store
// backing the CertStorage.* action family, mirroring namedStorage plus
// DER certificate parsing for ImportCert/ExportCert.
type certStorage struct {
	mu     sync.RWMutex
	items  map[string]domaintypes.CryptoHandle
	certs  map[domaintypes.Fingerprint][]byte
	parent *Provider
}

func newCertStorage(parent *Provider) *certStorage {
	return &certStorage{
		items:  make(map[string]domaintypes.CryptoHandle),
		certs:  make(map[domaintypes.Fingerprint][]byte),
		parent: parent,
	}
}

func (s *certStorage) GetItem(name string) (domaintypes.CryptoHandle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.items[name]
	return h, ok, nil
}

func (s *certStorage) SetItem(name string, cert domaintypes.CryptoHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[name] = cert
	return nil
}

func (s *certStorage) RemoveItem(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, name)
	return nil
}

func (s *certStorage) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (s *certStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]domaintypes.CryptoHandle)
	return nil
}

// ImportCert parses DER-encoded certificate material and stores it keyed
// by the embedded public key's thumbprint, the same id the public key
// itself would get from GenerateKey/ImportKey. certType selects the DER
// grammar: domaintypes.HandleX509Cert parses a signed certificate,
// domaintypes.HandleRequest parses a PKCS#10 certificate signing request.
// Either way the embedded public key is also registered with the
// provider's key store, so a client can Verify or Encrypt against it
// without a separate ImportKey call. The caller (the dispatcher) is still
// responsible for inserting a second handle-registry entry for that
// public key, per the certificate-storage family contract.
func (s *certStorage) ImportCert(data []byte, certType domaintypes.HandleKind) (domaintypes.CryptoHandle, error) {
	var pub interface{}
	switch certType {
	case domaintypes.HandleRequest:
		csr, err := x509.ParseCertificateRequest(data)
		if err != nil {
			return domaintypes.CryptoHandle{}, err
		}
		pub = csr.PublicKey
	default:
		cert, err := x509.ParseCertificate(data)
		if err != nil {
			return domaintypes.CryptoHandle{}, err
		}
		pub = cert.PublicKey
		certType = domaintypes.HandleX509Cert
	}

	pubDER, err := spkiBytes(pub)
	if err != nil {
		return domaintypes.CryptoHandle{}, err
	}
	id := internalcrypto.SPKIFingerprint(pubDER)

	s.mu.Lock()
	s.certs[id] = append([]byte{}, data...)
	s.mu.Unlock()

	if s.parent != nil {
		s.parent.put(id, domaintypes.HandlePublicKey, algNameForPublicKey(pub), pub)
	}

	return domaintypes.CryptoHandle{ID: id, ProviderID: ProviderID, Kind: certType}, nil
}

// ExportCert returns the raw DER bytes of a previously imported
// certificate.
func (s *certStorage) ExportCert(cert domaintypes.CryptoHandle) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.certs[cert.ID]
	if !ok {
		return nil, &certNotFoundError{id: cert.ID}
	}
	return data, nil
}

type certNotFoundError struct{ id domaintypes.Fingerprint }

func (e *certNotFoundError) Error() string {
	return "Cannot get CryptoItem by ID '" + string(e.id) + "'"
}

var _ domaininterfaces.CertStorage = (*certStorage)(nil)
