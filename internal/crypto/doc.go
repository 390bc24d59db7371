// Package crypto exposes the asymmetric primitives shared by the
// ratchet/X3DH protocol layer and the software provider: X25519
// generation/DH, Ed25519 signing, base64 encoding, and handle-ID
// fingerprinting. Bulk symmetric operations (AEAD, HKDF) live closer to
// their callers in internal/ratchetproto and internal/provider/software.
package crypto
