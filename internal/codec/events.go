package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

const (
	fieldProviderInfoListItem protowire.Number = 1
)

// MarshalProviderInfoList encodes the result of ActionProviderInfo: the
// static descriptor of every provider currently registered, so a client
// can pick one before calling ProviderGetCrypto.
func MarshalProviderInfoList(infos []domaintypes.ProviderInfo) []byte {
	var b []byte
	for _, info := range infos {
		b = protowire.AppendTag(b, fieldProviderInfoListItem, protowire.BytesType)
		b = protowire.AppendBytes(b, MarshalProviderInfo(info))
	}
	return b
}

// UnmarshalProviderInfoList decodes the result of ActionProviderInfo.
func UnmarshalProviderInfoList(b []byte) ([]domaintypes.ProviderInfo, error) {
	var out []domaintypes.ProviderInfo
	err := consumeFields("ProviderInfoList", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != fieldProviderInfoListItem {
			return -1, nil
		}
		v, n, err := consumeBytes(typ, rest)
		if err != nil {
			return 0, err
		}
		info, err := UnmarshalProviderInfo(v)
		if err != nil {
			return 0, err
		}
		out = append(out, info)
		return n, nil
	})
	return out, err
}

const (
	fieldCryptoInfoID   protowire.Number = 1
	fieldCryptoInfoName protowire.Number = 2
)

func marshalProviderCryptoInfo(info domaintypes.ProviderCryptoInfo) []byte {
	var b []byte
	b = appendString(b, fieldCryptoInfoID, info.ID)
	b = appendString(b, fieldCryptoInfoName, info.Name)
	return b
}

func unmarshalProviderCryptoInfo(b []byte) (domaintypes.ProviderCryptoInfo, error) {
	var info domaintypes.ProviderCryptoInfo
	err := consumeFields("ProviderCryptoInfo", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldCryptoInfoID:
			s, n, err := consumeString(typ, rest)
			info.ID = s
			return n, err
		case fieldCryptoInfoName:
			s, n, err := consumeString(typ, rest)
			info.Name = s
			return n, err
		default:
			return -1, nil
		}
	})
	return info, err
}

const (
	fieldTokenEventAdded   protowire.Number = 1
	fieldTokenEventRemoved protowire.Number = 2
)

// MarshalProviderTokenEvent encodes the unsolicited "token" event payload.
func MarshalProviderTokenEvent(ev domaintypes.ProviderTokenEvent) []byte {
	var b []byte
	for _, a := range ev.Added {
		b = protowire.AppendTag(b, fieldTokenEventAdded, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalProviderCryptoInfo(a))
	}
	for _, r := range ev.Removed {
		b = protowire.AppendTag(b, fieldTokenEventRemoved, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalProviderCryptoInfo(r))
	}
	return b
}

// UnmarshalProviderTokenEvent decodes the unsolicited "token" event payload.
func UnmarshalProviderTokenEvent(b []byte) (domaintypes.ProviderTokenEvent, error) {
	var ev domaintypes.ProviderTokenEvent
	err := consumeFields("ProviderTokenEvent", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldTokenEventAdded:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			info, err := unmarshalProviderCryptoInfo(v)
			if err != nil {
				return 0, err
			}
			ev.Added = append(ev.Added, info)
			return n, nil
		case fieldTokenEventRemoved:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			info, err := unmarshalProviderCryptoInfo(v)
			if err != nil {
				return 0, err
			}
			ev.Removed = append(ev.Removed, info)
			return n, nil
		default:
			return -1, nil
		}
	})
	return ev, err
}
