package software

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// jwk is a minimal RFC 7517 JSON Web Key, covering exactly the key types
// this provider mints.
type jwk struct {
	Kty string `json:"kty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
	D   string `json:"d,omitempty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
	K   string `json:"k,omitempty"`
}

func b64(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

func exportJWK(sk storedKey) ([]byte, error) {
	var j jwk
	switch v := sk.obj.(type) {
	case *ecdsa.PublicKey:
		j = jwk{Kty: "EC", Crv: curveName(sk.alg), X: b64(v.X.Bytes()), Y: b64(v.Y.Bytes())}
	case *ecdsa.PrivateKey:
		j = jwk{Kty: "EC", Crv: curveName(sk.alg), X: b64(v.X.Bytes()), Y: b64(v.Y.Bytes()), D: b64(v.D.Bytes())}
	case *rsa.PublicKey:
		j = jwk{Kty: "RSA", N: b64(v.N.Bytes()), E: b64(big64(v.E))}
	case *rsa.PrivateKey:
		j = jwk{Kty: "RSA", N: b64(v.N.Bytes()), E: b64(big64(v.E)), D: b64(v.D.Bytes())}
	case ed25519.PrivateKey:
		pub := v.Public().(ed25519.PublicKey)
		j = jwk{Kty: "OKP", Crv: "Ed25519", X: b64(pub), D: b64(v.Seed())}
	case []byte:
		if len(v) == ed25519.PublicKeySize && sk.alg == "Ed25519" {
			j = jwk{Kty: "OKP", Crv: "Ed25519", X: b64(v)}
		} else if len(v) == 32 && sk.alg == "X25519" {
			j = jwk{Kty: "OKP", Crv: "X25519", X: b64(v)}
		} else {
			j = jwk{Kty: "oct", K: b64(v)}
		}
	default:
		return nil, fmt.Errorf("software: no JWK export for key type %T", sk.obj)
	}
	return json.Marshal(j)
}

func curveName(alg string) string {
	if alg == "ECDSA-P384" {
		return "P-384"
	}
	return "P-256"
}

func big64(e int) []byte {
	b := make([]byte, 0, 4)
	for e > 0 {
		b = append([]byte{byte(e & 0xff)}, b...)
		e >>= 8
	}
	if len(b) == 0 {
		b = []byte{0}
	}
	return b
}
