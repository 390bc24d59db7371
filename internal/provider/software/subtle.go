package software

import (
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"errors"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	internalcrypto "github.com/murat-sen-cloudpeer/webcrypto-local/internal/crypto"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

// subtle is Provider viewed through the domaininterfaces.Subtle lens; it
// shares Provider's key table via the identical underlying pointer.
type subtle Provider

func (s *subtle) p() *Provider { return (*Provider)(s) }

func hashFor(alg string) (func() hash.Hash, error) {
	switch alg {
	case "SHA-256":
		return sha256.New, nil
	case "SHA-384":
		return sha512.New384, nil
	case "SHA-512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("software: unsupported digest algorithm %q", alg)
	}
}

// Digest implements domaininterfaces.Subtle.
func (s *subtle) Digest(algorithm string, data []byte) ([]byte, error) {
	hf, err := hashFor(algorithm)
	if err != nil {
		return nil, err
	}
	h := hf()
	h.Write(data)
	return h.Sum(nil), nil
}

// GenerateKey implements domaininterfaces.Subtle.
func (s *subtle) GenerateKey(algorithm string, extractable bool, usages []domaintypes.KeyUsage) ([]domaintypes.CryptoHandle, error) {
	p := s.p()
	switch algorithm {
	case "AES-GCM":
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		id, err := internalcrypto.RandomFingerprint()
		if err != nil {
			return nil, err
		}
		p.put(id, domaintypes.HandleSecretKey, algorithm, key)
		return []domaintypes.CryptoHandle{{ID: id, ProviderID: ProviderID, Kind: domaintypes.HandleSecretKey}}, nil

	case "HMAC-SHA256":
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		id, err := internalcrypto.RandomFingerprint()
		if err != nil {
			return nil, err
		}
		p.put(id, domaintypes.HandleSecretKey, algorithm, key)
		return []domaintypes.CryptoHandle{{ID: id, ProviderID: ProviderID, Kind: domaintypes.HandleSecretKey}}, nil

	case "ECDSA-P256", "ECDSA-P384":
		curve := elliptic.P256()
		if algorithm == "ECDSA-P384" {
			curve = elliptic.P384()
		}
		priv, err := ecdsa.GenerateKey(curve, rand.Reader)
		if err != nil {
			return nil, err
		}
		return s.registerKeyPair(algorithm, &priv.PublicKey, priv)

	case "RSA-PSS", "RSASSA-PKCS1-v1_5", "RSA-OAEP":
		priv, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, err
		}
		return s.registerKeyPair(algorithm, &priv.PublicKey, priv)

	case "X25519":
		var priv [32]byte
		if _, err := rand.Read(priv[:]); err != nil {
			return nil, err
		}
		pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
		if err != nil {
			return nil, err
		}
		return s.registerKeyPair(algorithm, pub, priv[:])

	case "Ed25519":
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		return s.registerKeyPair(algorithm, []byte(pub), priv)

	default:
		return nil, fmt.Errorf("software: unsupported GenerateKey algorithm %q", algorithm)
	}
}

// registerKeyPair mints one shared thumbprint for the public half and
// stores both the public and private objects under it, per the rule that
// sibling private keys share their public key's thumbprint as their id.
func (s *subtle) registerKeyPair(algorithm string, pub interface{}, priv interface{}) ([]domaintypes.CryptoHandle, error) {
	spki, err := spkiBytes(pub)
	if err != nil {
		return nil, err
	}
	id := internalcrypto.SPKIFingerprint(spki)

	p := s.p()
	p.put(id, domaintypes.HandlePublicKey, algorithm, pub)
	p.put(id, domaintypes.HandlePrivateKey, algorithm, priv)

	return []domaintypes.CryptoHandle{
		{ID: id, ProviderID: ProviderID, Kind: domaintypes.HandlePublicKey},
		{ID: id, ProviderID: ProviderID, Kind: domaintypes.HandlePrivateKey},
	}, nil
}

func spkiBytes(pub interface{}) ([]byte, error) {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		return x509.MarshalPKIXPublicKey(k)
	case *rsa.PublicKey:
		return x509.MarshalPKIXPublicKey(k)
	case []byte:
		return k, nil
	default:
		return nil, fmt.Errorf("software: cannot derive a thumbprint for public key type %T", pub)
	}
}

// ImportKey implements domaininterfaces.Subtle.
func (s *subtle) ImportKey(format string, keyData []byte, algorithm string, extractable bool, usages []domaintypes.KeyUsage) (domaintypes.CryptoHandle, error) {
	p := s.p()
	switch algorithm {
	case "AES-GCM", "HMAC-SHA256":
		if format != "raw" {
			return domaintypes.CryptoHandle{}, fmt.Errorf("software: ImportKey(%q) requires format raw for %q", algorithm, algorithm)
		}
		id, err := internalcrypto.RandomFingerprint()
		if err != nil {
			return domaintypes.CryptoHandle{}, err
		}
		p.put(id, domaintypes.HandleSecretKey, algorithm, append([]byte{}, keyData...))
		return domaintypes.CryptoHandle{ID: id, ProviderID: ProviderID, Kind: domaintypes.HandleSecretKey}, nil

	case "X25519":
		if format != "raw" || len(keyData) != 32 {
			return domaintypes.CryptoHandle{}, errors.New("software: X25519 ImportKey requires 32 raw bytes")
		}
		id := internalcrypto.SPKIFingerprint(keyData)
		p.put(id, domaintypes.HandlePublicKey, algorithm, append([]byte{}, keyData...))
		return domaintypes.CryptoHandle{ID: id, ProviderID: ProviderID, Kind: domaintypes.HandlePublicKey}, nil

	case "Ed25519":
		if format != "raw" || len(keyData) != ed25519.PublicKeySize {
			return domaintypes.CryptoHandle{}, errors.New("software: Ed25519 ImportKey requires 32 raw bytes")
		}
		id := internalcrypto.SPKIFingerprint(keyData)
		p.put(id, domaintypes.HandlePublicKey, algorithm, append([]byte{}, keyData...))
		return domaintypes.CryptoHandle{ID: id, ProviderID: ProviderID, Kind: domaintypes.HandlePublicKey}, nil

	case "ECDSA-P256", "ECDSA-P384", "RSA-PSS", "RSASSA-PKCS1-v1_5", "RSA-OAEP":
		switch format {
		case "spki":
			pub, err := x509.ParsePKIXPublicKey(keyData)
			if err != nil {
				return domaintypes.CryptoHandle{}, err
			}
			id := internalcrypto.SPKIFingerprint(keyData)
			p.put(id, domaintypes.HandlePublicKey, algorithm, pub)
			return domaintypes.CryptoHandle{ID: id, ProviderID: ProviderID, Kind: domaintypes.HandlePublicKey}, nil
		case "pkcs8":
			priv, err := x509.ParsePKCS8PrivateKey(keyData)
			if err != nil {
				return domaintypes.CryptoHandle{}, err
			}
			id, err := internalcrypto.RandomFingerprint()
			if err != nil {
				return domaintypes.CryptoHandle{}, err
			}
			p.put(id, domaintypes.HandlePrivateKey, algorithm, priv)
			return domaintypes.CryptoHandle{ID: id, ProviderID: ProviderID, Kind: domaintypes.HandlePrivateKey}, nil
		default:
			return domaintypes.CryptoHandle{}, fmt.Errorf("software: ImportKey(%q) unsupported format %q", algorithm, format)
		}

	default:
		return domaintypes.CryptoHandle{}, fmt.Errorf("software: unsupported ImportKey algorithm %q", algorithm)
	}
}

// ExportKey implements domaininterfaces.Subtle.
func (s *subtle) ExportKey(format string, key domaintypes.CryptoHandle) ([]byte, error) {
	sk, ok := s.p().get(key)
	if !ok {
		return nil, fmt.Errorf("Cannot get CryptoItem by ID '%s'", key.ID)
	}
	switch format {
	case "raw":
		switch v := sk.obj.(type) {
		case []byte:
			return v, nil
		default:
			return nil, fmt.Errorf("software: key %q does not support raw export", sk.alg)
		}
	case "spki":
		return spkiBytes(sk.obj)
	case "pkcs8":
		return x509.MarshalPKCS8PrivateKey(sk.obj)
	case "jwk":
		return exportJWK(sk)
	default:
		return nil, fmt.Errorf("software: unsupported export format %q", format)
	}
}

// Sign implements domaininterfaces.Subtle.
func (s *subtle) Sign(algorithm string, key domaintypes.CryptoHandle, data []byte) ([]byte, error) {
	sk, ok := s.p().get(key)
	if !ok {
		return nil, fmt.Errorf("Cannot get CryptoItem by ID '%s'", key.ID)
	}
	switch v := sk.obj.(type) {
	case *ecdsa.PrivateKey:
		hf, err := hashFor(algorithm)
		if err != nil {
			return nil, err
		}
		h := hf()
		h.Write(data)
		return ecdsa.SignASN1(rand.Reader, v, h.Sum(nil))
	case *rsa.PrivateKey:
		h := cryptoHashFor(algorithm).New()
		h.Write(data)
		digest := h.Sum(nil)
		if algorithm == "RSASSA-PKCS1-v1_5" {
			return rsa.SignPKCS1v15(rand.Reader, v, cryptoHashFor(algorithm), digest)
		}
		return rsa.SignPSS(rand.Reader, v, cryptoHashFor(algorithm), digest, nil)
	case ed25519.PrivateKey:
		return ed25519.Sign(v, data), nil
	case []byte:
		mac := hmac.New(sha256.New, v)
		mac.Write(data)
		return mac.Sum(nil), nil
	default:
		return nil, fmt.Errorf("software: key %q cannot sign", sk.alg)
	}
}

func cryptoHashFor(algorithm string) crypto.Hash {
	switch algorithm {
	case "RSA-PSS":
		return crypto.SHA256
	default:
		return crypto.SHA256
	}
}

// Verify implements domaininterfaces.Subtle.
func (s *subtle) Verify(algorithm string, key domaintypes.CryptoHandle, signature []byte, data []byte) (bool, error) {
	sk, ok := s.p().get(key)
	if !ok {
		return false, fmt.Errorf("Cannot get CryptoItem by ID '%s'", key.ID)
	}
	switch v := sk.obj.(type) {
	case *ecdsa.PublicKey:
		hf, err := hashFor(algorithm)
		if err != nil {
			return false, err
		}
		h := hf()
		h.Write(data)
		return ecdsa.VerifyASN1(v, h.Sum(nil), signature), nil
	case *rsa.PublicKey:
		h := cryptoHashFor(algorithm).New()
		h.Write(data)
		digest := h.Sum(nil)
		var err2 error
		if algorithm == "RSASSA-PKCS1-v1_5" {
			err2 = rsa.VerifyPKCS1v15(v, cryptoHashFor(algorithm), digest, signature)
		} else {
			err2 = rsa.VerifyPSS(v, cryptoHashFor(algorithm), digest, signature, nil)
		}
		return err2 == nil, nil
	case []byte:
		if sk.alg == "Ed25519" {
			return ed25519.Verify(ed25519.PublicKey(v), data, signature), nil
		}
		mac := hmac.New(sha256.New, v)
		mac.Write(data)
		return hmac.Equal(mac.Sum(nil), signature), nil
	default:
		return false, fmt.Errorf("software: key %q cannot verify", sk.alg)
	}
}

// Encrypt implements domaininterfaces.Subtle.
func (s *subtle) Encrypt(algorithm string, key domaintypes.CryptoHandle, data []byte) ([]byte, error) {
	sk, ok := s.p().get(key)
	if !ok {
		return nil, fmt.Errorf("Cannot get CryptoItem by ID '%s'", key.ID)
	}
	switch algorithm {
	case "AES-GCM":
		secret, ok := sk.obj.([]byte)
		if !ok {
			return nil, fmt.Errorf("software: key %q is not an AES-GCM key", sk.alg)
		}
		return aesGCMSeal(secret, data)
	case "RSA-OAEP":
		pub, ok := sk.obj.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("software: RSA-OAEP encrypt requires a public key")
		}
		return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, data, nil)
	default:
		return nil, fmt.Errorf("software: unsupported Encrypt algorithm %q", algorithm)
	}
}

// Decrypt implements domaininterfaces.Subtle.
func (s *subtle) Decrypt(algorithm string, key domaintypes.CryptoHandle, data []byte) ([]byte, error) {
	sk, ok := s.p().get(key)
	if !ok {
		return nil, fmt.Errorf("Cannot get CryptoItem by ID '%s'", key.ID)
	}
	switch algorithm {
	case "AES-GCM":
		secret, ok := sk.obj.([]byte)
		if !ok {
			return nil, fmt.Errorf("software: key %q is not an AES-GCM key", sk.alg)
		}
		return aesGCMOpen(secret, data)
	case "RSA-OAEP":
		priv, ok := sk.obj.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("software: RSA-OAEP decrypt requires a private key")
		}
		return rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, data, nil)
	default:
		return nil, fmt.Errorf("software: unsupported Decrypt algorithm %q", algorithm)
	}
}

// DeriveBits implements domaininterfaces.Subtle. algorithm additionally
// carries the peer's raw public key bytes, which the dispatcher has
// already resolved from the connection handle registry and appended
// after a '|' separator — the provider never talks to the registry
// itself.
func (s *subtle) DeriveBits(algorithm string, baseKey domaintypes.CryptoHandle, length int) ([]byte, error) {
	alg, peerRaw, err := splitDeriveAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	sk, ok := s.p().get(baseKey)
	if !ok {
		return nil, fmt.Errorf("Cannot get CryptoItem by ID '%s'", baseKey.ID)
	}
	switch alg {
	case "X25519":
		priv, ok := sk.obj.([]byte)
		if !ok || len(priv) != 32 {
			return nil, errors.New("software: X25519 DeriveBits requires a 32-byte private scalar")
		}
		if len(peerRaw) != 32 {
			return nil, errors.New("software: X25519 DeriveBits requires a 32-byte peer public key")
		}
		shared, err := curve25519.X25519(priv, peerRaw)
		if err != nil {
			return nil, err
		}
		if length > 0 && length/8 < len(shared) {
			return shared[:length/8], nil
		}
		return shared, nil
	case "HKDF-SHA256":
		secret, ok := sk.obj.([]byte)
		if !ok {
			return nil, errors.New("software: HKDF-SHA256 DeriveBits requires a secret base key")
		}
		r := hkdf.New(sha256.New, secret, nil, peerRaw)
		out := make([]byte, length/8)
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("software: unsupported DeriveBits algorithm %q", alg)
	}
}

func splitDeriveAlgorithm(algorithm string) (name string, peer []byte, err error) {
	for i := 0; i < len(algorithm); i++ {
		if algorithm[i] == '|' {
			return algorithm[:i], []byte(algorithm[i+1:]), nil
		}
	}
	return algorithm, nil, nil
}

// DeriveKey implements domaininterfaces.Subtle.
func (s *subtle) DeriveKey(algorithm string, baseKey domaintypes.CryptoHandle, derivedKeyAlgorithm string, extractable bool, usages []domaintypes.KeyUsage) (domaintypes.CryptoHandle, error) {
	bits, err := s.DeriveBits(algorithm, baseKey, 256)
	if err != nil {
		return domaintypes.CryptoHandle{}, err
	}
	return s.ImportKey("raw", bits, derivedKeyAlgorithm, extractable, usages)
}

// WrapKey implements domaininterfaces.Subtle. Wrapping is implemented as
// ExportKey in the caller's format followed by Encrypt with the caller's
// algorithm (AES-GCM or RSA-OAEP) under the wrapping key; RFC 3394 key
// wrap is not implemented.
func (s *subtle) WrapKey(format string, key domaintypes.CryptoHandle, wrappingKey domaintypes.CryptoHandle, algorithm string) ([]byte, error) {
	exported, err := s.ExportKey(format, key)
	if err != nil {
		return nil, err
	}
	return s.Encrypt(algorithm, wrappingKey, exported)
}

// UnwrapKey implements domaininterfaces.Subtle.
func (s *subtle) UnwrapKey(format string, wrappedKey []byte, unwrappingKey domaintypes.CryptoHandle, unwrapAlgorithm string, unwrappedKeyAlgorithm string, extractable bool, usages []domaintypes.KeyUsage) (domaintypes.CryptoHandle, error) {
	plain, err := s.Decrypt(unwrapAlgorithm, unwrappingKey, wrappedKey)
	if err != nil {
		return domaintypes.CryptoHandle{}, err
	}
	return s.ImportKey(format, plain, unwrappedKeyAlgorithm, extractable, usages)
}

// aesGCMSeal always draws its own nonce rather than taking a caller-
// supplied IV; aesGCMOpen expects that same nonce prepended to the
// ciphertext it is given.
func aesGCMSeal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func aesGCMOpen(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, errors.New("software: ciphertext shorter than nonce")
	}
	nonce, ct := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ct, nil)
}
