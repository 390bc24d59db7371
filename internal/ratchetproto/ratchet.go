package ratchetproto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/util/memzero"
)

const (
	aeadKeySize = 32
	nonceSize   = chacha20poly1305.NonceSize
)

var (
	// ErrChainUninitialised is returned by Encrypt/Decrypt if a ratchet was
	// resumed in a state that cannot yet send or receive.
	ErrChainUninitialised = errors.New("ratchetproto: chain key uninitialised")
)

// Session is the concrete interfaces.Ratchet implementation. No
// associated data is bound into the AEAD beyond the header itself; the
// gateway has no transcript to authenticate beyond the ratchet's own
// framing.
type Session struct {
	st      state
	updates chan struct{}
}

var _ domaininterfaces.Ratchet = (*Session)(nil)

// Updates fires once per successful Encrypt or Decrypt. It is buffered so
// a caller that persists lazily never blocks the ratchet itself.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

func (s *Session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// newSession wraps st in a Session with its update channel ready to fire.
func newSession(st state) *Session {
	return &Session{st: st, updates: make(chan struct{}, 1)}
}

// Encrypt advances the sending chain by one step and seals plaintext into
// a single frame (a length-prefixed header followed by the ciphertext).
// It performs the deferred DH ratchet step on the very first send after a
// responder session is created.
func (s *Session) Encrypt(plaintext []byte) ([]byte, error) {
	if len(s.st.SendCK) == 0 {
		if err := s.stepSendingRatchet(); err != nil {
			return nil, err
		}
	}

	mk, err := s.advanceSendChain()
	if err != nil {
		return nil, err
	}
	h := header{DHPub: s.st.DHPub, PN: s.st.PN, N: s.st.Ns}

	ct, err := seal(mk, h, nil, plaintext)
	memzero.Zero(mk)
	if err != nil {
		return nil, err
	}
	s.st.Ns++

	frame, err := encodeFrame(h, ct)
	if err != nil {
		return nil, err
	}
	s.notify()
	return frame, nil
}

// Decrypt opens a frame produced by the peer's Encrypt, transparently
// handling out-of-order delivery via the skipped-key window and
// DH-ratcheting forward when the peer has advanced to a new ratchet key.
func (s *Session) Decrypt(frame []byte) ([]byte, error) {
	h, ciphertext, err := decodeFrame(frame)
	if err != nil {
		return nil, err
	}

	if equal32(s.st.PeerDHPub[:], h.DHPub[:]) {
		if pt, ok, err := s.trySkipped(h, nil, ciphertext); ok || err != nil {
			if err == nil {
				s.notify()
			}
			return pt, err
		}
	} else {
		if err := s.dhRatchetStep(h); err != nil {
			return nil, err
		}
	}

	mk, err := s.advanceRecvChain()
	if err != nil {
		return nil, err
	}
	pt, err := open(mk, h, nil, ciphertext)
	memzero.Zero(mk)
	if err != nil {
		return nil, err
	}
	s.st.Nr = h.N + 1
	s.notify()
	return pt, nil
}

// Serialize captures the full ratchet state as JSON, the same encoding
// the file-backed stores use for every other persisted structure.
func (s *Session) Serialize() ([]byte, error) {
	return json.Marshal(s.st)
}

// encodeFrame packs a header and ciphertext into the single opaque blob
// the Ratchet interface exchanges: a 2-byte big-endian header length
// followed by the JSON header and the raw ciphertext.
func encodeFrame(h header, ciphertext []byte) ([]byte, error) {
	hb, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	if len(hb) > 0xFFFF {
		return nil, errors.New("ratchetproto: header too large to frame")
	}
	out := make([]byte, 0, 2+len(hb)+len(ciphertext))
	out = binary.BigEndian.AppendUint16(out, uint16(len(hb)))
	out = append(out, hb...)
	out = append(out, ciphertext...)
	return out, nil
}

func decodeFrame(frame []byte) (header, []byte, error) {
	var h header
	if len(frame) < 2 {
		return h, nil, errors.New("ratchetproto: truncated frame")
	}
	hLen := int(binary.BigEndian.Uint16(frame[:2]))
	if len(frame) < 2+hLen {
		return h, nil, errors.New("ratchetproto: truncated frame header")
	}
	if err := json.Unmarshal(frame[2:2+hLen], &h); err != nil {
		return h, nil, err
	}
	return h, frame[2+hLen:], nil
}

func (s *Session) trySkipped(h header, ad, ciphertext []byte) ([]byte, bool, error) {
	s.skipUntil(h.N)
	key := skippedKeyID(s.st.PeerDHPub, h.N)
	mk, ok := s.st.Skipped[key]
	if !ok {
		return nil, false, nil
	}
	delete(s.st.Skipped, key)
	pt, err := open(mk, h, ad, ciphertext)
	memzero.Zero(mk)
	if err != nil {
		return nil, true, err
	}
	s.st.Nr = h.N + 1
	return pt, true, nil
}

func (s *Session) dhRatchetStep(h header) error {
	s.skipUntil(h.PN)

	var newPeer domaintypes.X25519Public
	copy(newPeer[:], h.DHPub[:])

	dh, err := x25519(s.st.DHPriv, newPeer)
	if err != nil {
		return err
	}
	rk2, recvCK := kdfRK(s.st.RootKey[:], dh[:])
	memzero.Zero(dh[:])

	newPriv, newPub, err := generateX25519()
	if err != nil {
		return err
	}

	dh2, err := x25519(newPriv, newPeer)
	if err != nil {
		return err
	}
	rk3, sendCK := kdfRK(rk2, dh2[:])
	memzero.Zero(dh2[:])

	s.st.PN = s.st.Ns
	s.st.Ns, s.st.Nr = 0, 0
	copy(s.st.RootKey[:], rk3)
	s.st.DHPriv, s.st.DHPub = newPriv, newPub
	s.st.PeerDHPub = newPeer
	s.st.SendCK, s.st.RecvCK = sendCK, recvCK
	return nil
}

func (s *Session) stepSendingRatchet() error {
	s.st.PN = s.st.Ns
	s.st.Ns = 0

	newPriv, newPub, err := generateX25519()
	if err != nil {
		return err
	}

	dh, err := x25519(newPriv, s.st.PeerDHPub)
	if err != nil {
		return err
	}
	rk2, sendCK := kdfRK(s.st.RootKey[:], dh[:])
	memzero.Zero(dh[:])

	copy(s.st.RootKey[:], rk2)
	s.st.DHPriv, s.st.DHPub = newPriv, newPub
	s.st.SendCK = sendCK
	return nil
}

func (s *Session) advanceSendChain() ([]byte, error) {
	if len(s.st.SendCK) == 0 {
		return nil, ErrChainUninitialised
	}
	nextCK, mk := kdfCK(s.st.SendCK)
	s.st.SendCK = nextCK
	return mk, nil
}

func (s *Session) advanceRecvChain() ([]byte, error) {
	if len(s.st.RecvCK) == 0 {
		return nil, ErrChainUninitialised
	}
	nextCK, mk := kdfCK(s.st.RecvCK)
	s.st.RecvCK = nextCK
	return mk, nil
}

// skipUntil derives and stores message keys for indices below pn so a
// reordered message can still be decrypted later, bounded to avoid
// unbounded memory growth from a misbehaving peer.
func (s *Session) skipUntil(pn uint32) {
	if s.st.Skipped == nil {
		s.st.Skipped = make(map[string][]byte)
	}
	for s.st.Nr < pn {
		mk, err := s.advanceRecvChain()
		if err != nil {
			return
		}
		if len(s.st.Skipped) >= maxSkippedMessageKeys {
			for k := range s.st.Skipped {
				delete(s.st.Skipped, k)
				break
			}
		}
		s.st.Skipped[skippedKeyID(s.st.PeerDHPub, s.st.Nr)] = mk
		s.st.Nr++
	}
}

func seal(mk []byte, h header, ad, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(mk[:aeadKeySize])
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	binary.BigEndian.PutUint32(nonce[nonceSize-4:], h.N)
	return aead.Seal(nil, nonce, plaintext, append(ad, headerBytes(h)...)), nil
}

func open(mk []byte, h header, ad, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(mk[:aeadKeySize])
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	binary.BigEndian.PutUint32(nonce[nonceSize-4:], h.N)
	return aead.Open(nil, nonce, ciphertext, append(ad, headerBytes(h)...))
}

func headerBytes(h header) []byte {
	out := make([]byte, 0, 32+8)
	out = append(out, h.DHPub[:]...)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], h.PN)
	out = append(out, b[:]...)
	binary.BigEndian.PutUint32(b[:], h.N)
	out = append(out, b[:]...)
	return out
}

func x25519(priv domaintypes.X25519Private, pub domaintypes.X25519Public) ([32]byte, error) {
	res, err := curve25519.X25519(priv.Slice(), pub.Slice())
	var out [32]byte
	if err != nil {
		return out, err
	}
	copy(out[:], res)
	return out, nil
}

func generateX25519() (domaintypes.X25519Private, domaintypes.X25519Public, error) {
	var priv domaintypes.X25519Private
	if _, err := rand.Read(priv[:]); err != nil {
		return priv, domaintypes.X25519Public{}, err
	}
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pubBytes, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return priv, domaintypes.X25519Public{}, err
	}
	var pub domaintypes.X25519Public
	copy(pub[:], pubBytes)
	return priv, pub, nil
}

func kdfRK(rk, dh []byte) (newRK, ck []byte) {
	r := hkdf.New(sha256.New, dh, rk, []byte("webcrypto-local|ratchet-rk"))
	newRK = make([]byte, 32)
	ck = make([]byte, 32)
	_, _ = io.ReadFull(r, newRK)
	_, _ = io.ReadFull(r, ck)
	return
}

func kdfCK(ck []byte) (nextCK, mk []byte) {
	r := hkdf.New(sha256.New, ck, nil, []byte("webcrypto-local|ratchet-ck"))
	nextCK = make([]byte, 32)
	mk = make([]byte, 32)
	_, _ = io.ReadFull(r, nextCK)
	_, _ = io.ReadFull(r, mk)
	return
}

func skippedKeyID(peer domaintypes.X25519Public, n uint32) string {
	b := make([]byte, 32+4)
	copy(b, peer[:])
	binary.BigEndian.PutUint32(b[32:], n)
	return string(b)
}

func equal32(a, b []byte) bool {
	if len(a) != 32 || len(b) != 32 {
		return false
	}
	var v byte
	for i := 0; i < 32; i++ {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
