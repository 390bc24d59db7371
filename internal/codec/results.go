package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

const (
	fieldProviderInfoID           protowire.Number = 1
	fieldProviderInfoName         protowire.Number = 2
	fieldProviderInfoRequiresAuth protowire.Number = 3
)

// MarshalProviderInfo encodes the result of ActionProviderInfo.
func MarshalProviderInfo(info domaintypes.ProviderInfo) []byte {
	var b []byte
	b = appendString(b, fieldProviderInfoID, info.ID)
	b = appendString(b, fieldProviderInfoName, info.Name)
	b = appendBool(b, fieldProviderInfoRequiresAuth, info.RequiresAuth)
	return b
}

// UnmarshalProviderInfo decodes the result of ActionProviderInfo.
func UnmarshalProviderInfo(b []byte) (domaintypes.ProviderInfo, error) {
	var info domaintypes.ProviderInfo
	err := consumeFields("ProviderInfo", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldProviderInfoID:
			s, n, err := consumeString(typ, rest)
			info.ID = s
			return n, err
		case fieldProviderInfoName:
			s, n, err := consumeString(typ, rest)
			info.Name = s
			return n, err
		case fieldProviderInfoRequiresAuth:
			v, n, err := consumeVarint(typ, rest)
			info.RequiresAuth = v != 0
			return n, err
		default:
			return -1, nil
		}
	})
	return info, err
}

// MarshalBool encodes a boolean-as-1-byte result, used by Verify and
// IsLoggedIn.
func MarshalBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// UnmarshalBool decodes a boolean-as-1-byte result.
func UnmarshalBool(b []byte) bool {
	return len(b) > 0 && b[0] != 0
}

const fieldHandleResult protowire.Number = 1

// MarshalHandle encodes a single CryptoHandle result, used by every action
// that mints or resolves one handle (ImportKey, DeriveKey, UnwrapKey,
// KeyStorage.GetItem, CertStorage.GetItem/ImportCert, ...).
func MarshalHandle(h domaintypes.CryptoHandle) []byte {
	return appendHandle(nil, fieldHandleResult, h)
}

// UnmarshalHandle decodes a single CryptoHandle result.
func UnmarshalHandle(b []byte) (domaintypes.CryptoHandle, error) {
	var h domaintypes.CryptoHandle
	err := consumeFields("HandleResult", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != fieldHandleResult {
			return -1, nil
		}
		v, n, err := consumeBytes(typ, rest)
		if err != nil {
			return 0, err
		}
		decoded, err := decodeHandle(v)
		if err != nil {
			return 0, err
		}
		h = decoded
		return n, nil
	})
	return h, err
}

const fieldStringListItem protowire.Number = 1

// MarshalStringList encodes a repeated string result, used by
// KeyStorage.Keys and CertStorage.Keys.
func MarshalStringList(items []string) []byte {
	var b []byte
	for _, s := range items {
		b = protowire.AppendTag(b, fieldStringListItem, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	return b
}

// UnmarshalStringList decodes a repeated string result.
func UnmarshalStringList(b []byte) ([]string, error) {
	var out []string
	err := consumeFields("StringList", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != fieldStringListItem {
			return -1, nil
		}
		s, n, err := consumeString(typ, rest)
		out = append(out, s)
		return n, err
	})
	return out, err
}
