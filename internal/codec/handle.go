package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

const (
	fieldHandleID         protowire.Number = 1
	fieldHandleProviderID protowire.Number = 2
	fieldHandleKind       protowire.Number = 3
)

func appendHandle(b []byte, num protowire.Number, h domaintypes.CryptoHandle) []byte {
	var inner []byte
	inner = appendString(inner, fieldHandleID, string(h.ID))
	inner = appendString(inner, fieldHandleProviderID, h.ProviderID)
	inner = appendString(inner, fieldHandleKind, string(h.Kind))
	return appendBytes(b, num, inner)
}

func decodeHandle(b []byte) (domaintypes.CryptoHandle, error) {
	var h domaintypes.CryptoHandle
	err := consumeFields("CryptoHandle", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldHandleID:
			s, n, err := consumeString(typ, rest)
			if err != nil {
				return 0, err
			}
			h.ID = domaintypes.Fingerprint(s)
			return n, nil
		case fieldHandleProviderID:
			s, n, err := consumeString(typ, rest)
			if err != nil {
				return 0, err
			}
			h.ProviderID = s
			return n, nil
		case fieldHandleKind:
			s, n, err := consumeString(typ, rest)
			if err != nil {
				return 0, err
			}
			h.Kind = domaintypes.HandleKind(s)
			return n, nil
		default:
			return -1, nil
		}
	})
	return h, err
}

func appendUsages(b []byte, num protowire.Number, usages []domaintypes.KeyUsage) []byte {
	for _, u := range usages {
		b = appendString(b, num, string(u))
	}
	return b
}
