package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

// HandshakeHello is the single unencrypted frame a client sends immediately
// after opening the transport connection, before any ActionEnvelope. It
// carries everything the server needs to complete X3DH as the responder:
// the initiator's long-term identity, the fresh ephemeral it generated for
// this handshake, and which of the server's published pre-keys it consumed.
type HandshakeHello struct {
	IdentityKey      domaintypes.X25519Public
	SigningKey       domaintypes.Ed25519Public
	EphemeralKey     domaintypes.X25519Public
	SignedPreKeyID   domaintypes.SignedPreKeyID
	OneTimePreKeyID  domaintypes.OneTimePreKeyID
	HasOneTimePreKey bool
}

const (
	fieldHelloIdentityKey     protowire.Number = 1
	fieldHelloSigningKey      protowire.Number = 2
	fieldHelloEphemeralKey    protowire.Number = 3
	fieldHelloSignedPreKeyID  protowire.Number = 4
	fieldHelloOneTimePreKeyID protowire.Number = 5
	fieldHelloHasOneTime      protowire.Number = 6
)

// Marshal encodes the handshake hello.
func (h HandshakeHello) Marshal() []byte {
	var b []byte
	b = appendBytes(b, fieldHelloIdentityKey, h.IdentityKey.Slice())
	b = appendBytes(b, fieldHelloSigningKey, h.SigningKey.Slice())
	b = appendBytes(b, fieldHelloEphemeralKey, h.EphemeralKey.Slice())
	b = appendString(b, fieldHelloSignedPreKeyID, string(h.SignedPreKeyID))
	b = appendString(b, fieldHelloOneTimePreKeyID, string(h.OneTimePreKeyID))
	b = appendBool(b, fieldHelloHasOneTime, h.HasOneTimePreKey)
	return b
}

// UnmarshalHandshakeHello decodes a handshake hello frame.
func UnmarshalHandshakeHello(b []byte) (HandshakeHello, error) {
	var h HandshakeHello
	err := consumeFields("HandshakeHello", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldHelloIdentityKey:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			if err := copyFixed32(h.IdentityKey[:], v); err != nil {
				return 0, err
			}
			return n, nil
		case fieldHelloSigningKey:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			if err := copyFixed32(h.SigningKey[:], v); err != nil {
				return 0, err
			}
			return n, nil
		case fieldHelloEphemeralKey:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			if err := copyFixed32(h.EphemeralKey[:], v); err != nil {
				return 0, err
			}
			return n, nil
		case fieldHelloSignedPreKeyID:
			s, n, err := consumeString(typ, rest)
			h.SignedPreKeyID = domaintypes.SignedPreKeyID(s)
			return n, err
		case fieldHelloOneTimePreKeyID:
			s, n, err := consumeString(typ, rest)
			h.OneTimePreKeyID = domaintypes.OneTimePreKeyID(s)
			return n, err
		case fieldHelloHasOneTime:
			v, n, err := consumeVarint(typ, rest)
			h.HasOneTimePreKey = v != 0
			return n, err
		default:
			return -1, nil
		}
	})
	return h, err
}

func copyFixed32(dst, src []byte) error {
	if len(src) != 32 {
		return fmt.Errorf("codec: expected 32-byte key, got %d bytes", len(src))
	}
	copy(dst, src)
	return nil
}
