package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

// ProviderScopedPayload is the bare provider-id shape: every
// Subtle/KeyStorage/CertStorage action dispatches to a specific provider.
// No payload embeds it; each declares its own ProviderID field.
type ProviderScopedPayload struct {
	ProviderID string
}

const fieldProviderID protowire.Number = 1

// ProviderGetCryptoPayload is the payload for ActionProviderGetCrypto.
type ProviderGetCryptoPayload struct {
	ProviderID string
}

func (p ProviderGetCryptoPayload) Marshal() []byte {
	return appendString(nil, fieldProviderID, p.ProviderID)
}

func UnmarshalProviderGetCryptoPayload(b []byte) (ProviderGetCryptoPayload, error) {
	var p ProviderGetCryptoPayload
	err := consumeFields("ProviderGetCryptoPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != fieldProviderID {
			return -1, nil
		}
		s, n, err := consumeString(typ, rest)
		p.ProviderID = s
		return n, err
	})
	return p, err
}

// LoginPayload is the payload for ActionLogin.
type LoginPayload struct {
	ProviderID string
}

func (p LoginPayload) Marshal() []byte { return appendString(nil, fieldProviderID, p.ProviderID) }

func UnmarshalLoginPayload(b []byte) (LoginPayload, error) {
	var p LoginPayload
	err := consumeFields("LoginPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != fieldProviderID {
			return -1, nil
		}
		s, n, err := consumeString(typ, rest)
		p.ProviderID = s
		return n, err
	})
	return p, err
}

const (
	fieldAlgProviderID protowire.Number = 1
	fieldAlgAlg        protowire.Number = 2
	fieldAlgData       protowire.Number = 3
)

// DigestPayload is the payload for ActionDigest.
type DigestPayload struct {
	ProviderID string
	Alg        string
	Data       []byte
}

func (p DigestPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldAlgProviderID, p.ProviderID)
	b = appendString(b, fieldAlgAlg, p.Alg)
	b = appendBytes(b, fieldAlgData, p.Data)
	return b
}

func UnmarshalDigestPayload(b []byte) (DigestPayload, error) {
	var p DigestPayload
	err := consumeFields("DigestPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldAlgProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldAlgAlg:
			s, n, err := consumeString(typ, rest)
			p.Alg = s
			return n, err
		case fieldAlgData:
			v, n, err := consumeBytes(typ, rest)
			p.Data = v
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

const (
	fieldGenProviderID  protowire.Number = 1
	fieldGenAlg         protowire.Number = 2
	fieldGenExtractable protowire.Number = 3
	fieldGenUsage       protowire.Number = 4
)

// GenerateKeyPayload is the payload for ActionGenerateKey.
type GenerateKeyPayload struct {
	ProviderID  string
	Alg         string
	Extractable bool
	Usages      []domaintypes.KeyUsage
}

func (p GenerateKeyPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldGenProviderID, p.ProviderID)
	b = appendString(b, fieldGenAlg, p.Alg)
	b = appendBool(b, fieldGenExtractable, p.Extractable)
	b = appendUsages(b, fieldGenUsage, p.Usages)
	return b
}

func UnmarshalGenerateKeyPayload(b []byte) (GenerateKeyPayload, error) {
	var p GenerateKeyPayload
	err := consumeFields("GenerateKeyPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldGenProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldGenAlg:
			s, n, err := consumeString(typ, rest)
			p.Alg = s
			return n, err
		case fieldGenExtractable:
			v, n, err := consumeVarint(typ, rest)
			p.Extractable = v != 0
			return n, err
		case fieldGenUsage:
			s, n, err := consumeString(typ, rest)
			p.Usages = append(p.Usages, domaintypes.KeyUsage(s))
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

const (
	fieldGenResultPublic  protowire.Number = 1
	fieldGenResultPrivate protowire.Number = 2
)

// GenerateKeyResult is the result of ActionGenerateKey: a single handle for
// a symmetric key, or a public/private pair for an asymmetric algorithm.
type GenerateKeyResult struct {
	Public  *domaintypes.CryptoHandle
	Private *domaintypes.CryptoHandle
}

func (r GenerateKeyResult) Marshal() []byte {
	var b []byte
	if r.Public != nil {
		b = appendHandle(b, fieldGenResultPublic, *r.Public)
	}
	if r.Private != nil {
		b = appendHandle(b, fieldGenResultPrivate, *r.Private)
	}
	return b
}

func UnmarshalGenerateKeyResult(b []byte) (GenerateKeyResult, error) {
	var r GenerateKeyResult
	err := consumeFields("GenerateKeyResult", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldGenResultPublic:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			if err != nil {
				return 0, err
			}
			r.Public = &h
			return n, nil
		case fieldGenResultPrivate:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			if err != nil {
				return 0, err
			}
			r.Private = &h
			return n, nil
		default:
			return -1, nil
		}
	})
	return r, err
}

const (
	fieldSigProviderID protowire.Number = 1
	fieldSigAlg        protowire.Number = 2
	fieldSigKeyHandle  protowire.Number = 3
	fieldSigData       protowire.Number = 4
	fieldSigSignature  protowire.Number = 5
)

// SignPayload is the payload for ActionSign.
type SignPayload struct {
	ProviderID string
	Alg        string
	KeyHandle  domaintypes.CryptoHandle
	Data       []byte
}

func (p SignPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldSigProviderID, p.ProviderID)
	b = appendString(b, fieldSigAlg, p.Alg)
	b = appendHandle(b, fieldSigKeyHandle, p.KeyHandle)
	b = appendBytes(b, fieldSigData, p.Data)
	return b
}

func UnmarshalSignPayload(b []byte) (SignPayload, error) {
	var p SignPayload
	err := consumeFields("SignPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldSigProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldSigAlg:
			s, n, err := consumeString(typ, rest)
			p.Alg = s
			return n, err
		case fieldSigKeyHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.KeyHandle = h
			return n, err
		case fieldSigData:
			v, n, err := consumeBytes(typ, rest)
			p.Data = v
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

// VerifyPayload is the payload for ActionVerify.
type VerifyPayload struct {
	ProviderID string
	Alg        string
	KeyHandle  domaintypes.CryptoHandle
	Data       []byte
	Signature  []byte
}

func (p VerifyPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldSigProviderID, p.ProviderID)
	b = appendString(b, fieldSigAlg, p.Alg)
	b = appendHandle(b, fieldSigKeyHandle, p.KeyHandle)
	b = appendBytes(b, fieldSigData, p.Data)
	b = appendBytes(b, fieldSigSignature, p.Signature)
	return b
}

func UnmarshalVerifyPayload(b []byte) (VerifyPayload, error) {
	var p VerifyPayload
	err := consumeFields("VerifyPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldSigProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldSigAlg:
			s, n, err := consumeString(typ, rest)
			p.Alg = s
			return n, err
		case fieldSigKeyHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.KeyHandle = h
			return n, err
		case fieldSigData:
			v, n, err := consumeBytes(typ, rest)
			p.Data = v
			return n, err
		case fieldSigSignature:
			v, n, err := consumeBytes(typ, rest)
			p.Signature = v
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

// CipherPayload is the shared payload shape for ActionEncrypt and
// ActionDecrypt.
type CipherPayload struct {
	ProviderID string
	Alg        string
	KeyHandle  domaintypes.CryptoHandle
	Data       []byte
}

func (p CipherPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldSigProviderID, p.ProviderID)
	b = appendString(b, fieldSigAlg, p.Alg)
	b = appendHandle(b, fieldSigKeyHandle, p.KeyHandle)
	b = appendBytes(b, fieldSigData, p.Data)
	return b
}

func UnmarshalCipherPayload(b []byte) (CipherPayload, error) {
	var p CipherPayload
	err := consumeFields("CipherPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldSigProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldSigAlg:
			s, n, err := consumeString(typ, rest)
			p.Alg = s
			return n, err
		case fieldSigKeyHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.KeyHandle = h
			return n, err
		case fieldSigData:
			v, n, err := consumeBytes(typ, rest)
			p.Data = v
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

const (
	fieldDeriveProviderID   protowire.Number = 1
	fieldDeriveAlg          protowire.Number = 2
	fieldDeriveKeyHandle    protowire.Number = 3
	fieldDerivePublicHandle protowire.Number = 4
	fieldDeriveLength       protowire.Number = 5
	fieldDeriveDerivedAlg   protowire.Number = 6
	fieldDeriveExtractable  protowire.Number = 7
	fieldDeriveUsage        protowire.Number = 8
)

// DeriveBitsPayload is the payload for ActionDeriveBits. The public half of
// the peer's key arrives as a serialized handle, resolved from the
// registry before the provider's subtle call.
type DeriveBitsPayload struct {
	ProviderID   string
	Alg          string
	KeyHandle    domaintypes.CryptoHandle
	PublicHandle domaintypes.CryptoHandle
	Length       uint32
}

func (p DeriveBitsPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldDeriveProviderID, p.ProviderID)
	b = appendString(b, fieldDeriveAlg, p.Alg)
	b = appendHandle(b, fieldDeriveKeyHandle, p.KeyHandle)
	b = appendHandle(b, fieldDerivePublicHandle, p.PublicHandle)
	b = appendVarint(b, fieldDeriveLength, uint64(p.Length))
	return b
}

func UnmarshalDeriveBitsPayload(b []byte) (DeriveBitsPayload, error) {
	var p DeriveBitsPayload
	err := consumeFields("DeriveBitsPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldDeriveProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldDeriveAlg:
			s, n, err := consumeString(typ, rest)
			p.Alg = s
			return n, err
		case fieldDeriveKeyHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.KeyHandle = h
			return n, err
		case fieldDerivePublicHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.PublicHandle = h
			return n, err
		case fieldDeriveLength:
			v, n, err := consumeVarint(typ, rest)
			p.Length = uint32(v)
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

// DeriveKeyPayload is the payload for ActionDeriveKey.
type DeriveKeyPayload struct {
	ProviderID   string
	Alg          string
	KeyHandle    domaintypes.CryptoHandle
	PublicHandle domaintypes.CryptoHandle
	DerivedAlg   string
	Extractable  bool
	Usages       []domaintypes.KeyUsage
}

func (p DeriveKeyPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldDeriveProviderID, p.ProviderID)
	b = appendString(b, fieldDeriveAlg, p.Alg)
	b = appendHandle(b, fieldDeriveKeyHandle, p.KeyHandle)
	b = appendHandle(b, fieldDerivePublicHandle, p.PublicHandle)
	b = appendString(b, fieldDeriveDerivedAlg, p.DerivedAlg)
	b = appendBool(b, fieldDeriveExtractable, p.Extractable)
	b = appendUsages(b, fieldDeriveUsage, p.Usages)
	return b
}

func UnmarshalDeriveKeyPayload(b []byte) (DeriveKeyPayload, error) {
	var p DeriveKeyPayload
	err := consumeFields("DeriveKeyPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldDeriveProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldDeriveAlg:
			s, n, err := consumeString(typ, rest)
			p.Alg = s
			return n, err
		case fieldDeriveKeyHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.KeyHandle = h
			return n, err
		case fieldDerivePublicHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.PublicHandle = h
			return n, err
		case fieldDeriveDerivedAlg:
			s, n, err := consumeString(typ, rest)
			p.DerivedAlg = s
			return n, err
		case fieldDeriveExtractable:
			v, n, err := consumeVarint(typ, rest)
			p.Extractable = v != 0
			return n, err
		case fieldDeriveUsage:
			s, n, err := consumeString(typ, rest)
			p.Usages = append(p.Usages, domaintypes.KeyUsage(s))
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

const (
	fieldWrapProviderID     protowire.Number = 1
	fieldWrapFormat         protowire.Number = 2
	fieldWrapKeyHandle      protowire.Number = 3
	fieldWrapWrappingHandle protowire.Number = 4
	fieldWrapAlg            protowire.Number = 5
)

// WrapKeyPayload is the payload for ActionWrapKey.
type WrapKeyPayload struct {
	ProviderID        string
	Format            string
	KeyHandle         domaintypes.CryptoHandle
	WrappingKeyHandle domaintypes.CryptoHandle
	WrapAlg           string
}

func (p WrapKeyPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldWrapProviderID, p.ProviderID)
	b = appendString(b, fieldWrapFormat, p.Format)
	b = appendHandle(b, fieldWrapKeyHandle, p.KeyHandle)
	b = appendHandle(b, fieldWrapWrappingHandle, p.WrappingKeyHandle)
	b = appendString(b, fieldWrapAlg, p.WrapAlg)
	return b
}

func UnmarshalWrapKeyPayload(b []byte) (WrapKeyPayload, error) {
	var p WrapKeyPayload
	err := consumeFields("WrapKeyPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldWrapProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldWrapFormat:
			s, n, err := consumeString(typ, rest)
			p.Format = s
			return n, err
		case fieldWrapKeyHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.KeyHandle = h
			return n, err
		case fieldWrapWrappingHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.WrappingKeyHandle = h
			return n, err
		case fieldWrapAlg:
			s, n, err := consumeString(typ, rest)
			p.WrapAlg = s
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

const (
	fieldUnwrapProviderID   protowire.Number = 1
	fieldUnwrapFormat       protowire.Number = 2
	fieldUnwrapData         protowire.Number = 3
	fieldUnwrapKeyHandle    protowire.Number = 4
	fieldUnwrapUnwrapAlg    protowire.Number = 5
	fieldUnwrapUnwrappedAlg protowire.Number = 6
	fieldUnwrapExtractable  protowire.Number = 7
	fieldUnwrapUsage        protowire.Number = 8
)

// UnwrapKeyPayload is the payload for ActionUnwrapKey.
type UnwrapKeyPayload struct {
	ProviderID            string
	Format                string
	WrappedData           []byte
	UnwrappingKeyHandle   domaintypes.CryptoHandle
	UnwrapAlg             string
	UnwrappedKeyAlg       string
	Extractable           bool
	Usages                []domaintypes.KeyUsage
}

func (p UnwrapKeyPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldUnwrapProviderID, p.ProviderID)
	b = appendString(b, fieldUnwrapFormat, p.Format)
	b = appendBytes(b, fieldUnwrapData, p.WrappedData)
	b = appendHandle(b, fieldUnwrapKeyHandle, p.UnwrappingKeyHandle)
	b = appendString(b, fieldUnwrapUnwrapAlg, p.UnwrapAlg)
	b = appendString(b, fieldUnwrapUnwrappedAlg, p.UnwrappedKeyAlg)
	b = appendBool(b, fieldUnwrapExtractable, p.Extractable)
	b = appendUsages(b, fieldUnwrapUsage, p.Usages)
	return b
}

func UnmarshalUnwrapKeyPayload(b []byte) (UnwrapKeyPayload, error) {
	var p UnwrapKeyPayload
	err := consumeFields("UnwrapKeyPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldUnwrapProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldUnwrapFormat:
			s, n, err := consumeString(typ, rest)
			p.Format = s
			return n, err
		case fieldUnwrapData:
			v, n, err := consumeBytes(typ, rest)
			p.WrappedData = v
			return n, err
		case fieldUnwrapKeyHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.UnwrappingKeyHandle = h
			return n, err
		case fieldUnwrapUnwrapAlg:
			s, n, err := consumeString(typ, rest)
			p.UnwrapAlg = s
			return n, err
		case fieldUnwrapUnwrappedAlg:
			s, n, err := consumeString(typ, rest)
			p.UnwrappedKeyAlg = s
			return n, err
		case fieldUnwrapExtractable:
			v, n, err := consumeVarint(typ, rest)
			p.Extractable = v != 0
			return n, err
		case fieldUnwrapUsage:
			s, n, err := consumeString(typ, rest)
			p.Usages = append(p.Usages, domaintypes.KeyUsage(s))
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

const (
	fieldImportProviderID  protowire.Number = 1
	fieldImportFormat      protowire.Number = 2
	fieldImportAlg         protowire.Number = 3
	fieldImportData        protowire.Number = 4
	fieldImportExtractable protowire.Number = 5
	fieldImportUsage       protowire.Number = 6
)

// ImportKeyPayload is the payload for ActionImportKey.
type ImportKeyPayload struct {
	ProviderID  string
	Format      string
	Alg         string
	KeyData     []byte
	Extractable bool
	Usages      []domaintypes.KeyUsage
}

func (p ImportKeyPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldImportProviderID, p.ProviderID)
	b = appendString(b, fieldImportFormat, p.Format)
	b = appendString(b, fieldImportAlg, p.Alg)
	b = appendBytes(b, fieldImportData, p.KeyData)
	b = appendBool(b, fieldImportExtractable, p.Extractable)
	b = appendUsages(b, fieldImportUsage, p.Usages)
	return b
}

func UnmarshalImportKeyPayload(b []byte) (ImportKeyPayload, error) {
	var p ImportKeyPayload
	err := consumeFields("ImportKeyPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldImportProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldImportFormat:
			s, n, err := consumeString(typ, rest)
			p.Format = s
			return n, err
		case fieldImportAlg:
			s, n, err := consumeString(typ, rest)
			p.Alg = s
			return n, err
		case fieldImportData:
			v, n, err := consumeBytes(typ, rest)
			p.KeyData = v
			return n, err
		case fieldImportExtractable:
			v, n, err := consumeVarint(typ, rest)
			p.Extractable = v != 0
			return n, err
		case fieldImportUsage:
			s, n, err := consumeString(typ, rest)
			p.Usages = append(p.Usages, domaintypes.KeyUsage(s))
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

const (
	fieldExportProviderID protowire.Number = 1
	fieldExportFormat     protowire.Number = 2
	fieldExportKeyHandle  protowire.Number = 3
)

// ExportKeyPayload is the payload for ActionExportKey.
type ExportKeyPayload struct {
	ProviderID string
	Format     string
	KeyHandle  domaintypes.CryptoHandle
}

func (p ExportKeyPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldExportProviderID, p.ProviderID)
	b = appendString(b, fieldExportFormat, p.Format)
	b = appendHandle(b, fieldExportKeyHandle, p.KeyHandle)
	return b
}

func UnmarshalExportKeyPayload(b []byte) (ExportKeyPayload, error) {
	var p ExportKeyPayload
	err := consumeFields("ExportKeyPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldExportProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldExportFormat:
			s, n, err := consumeString(typ, rest)
			p.Format = s
			return n, err
		case fieldExportKeyHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.KeyHandle = h
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

const (
	fieldStorageProviderID protowire.Number = 1
	fieldStorageIndex      protowire.Number = 2
	fieldStorageAlg        protowire.Number = 3
	fieldStorageUsage      protowire.Number = 4
	fieldStorageHandle     protowire.Number = 5
)

// StorageGetItemPayload is the shared payload for KeyStorage.GetItem and
// CertStorage.GetItem.
type StorageGetItemPayload struct {
	ProviderID string
	Index      string
	Alg        string
	Usages     []domaintypes.KeyUsage
}

func (p StorageGetItemPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldStorageProviderID, p.ProviderID)
	b = appendString(b, fieldStorageIndex, p.Index)
	b = appendString(b, fieldStorageAlg, p.Alg)
	b = appendUsages(b, fieldStorageUsage, p.Usages)
	return b
}

func UnmarshalStorageGetItemPayload(b []byte) (StorageGetItemPayload, error) {
	var p StorageGetItemPayload
	err := consumeFields("StorageGetItemPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldStorageProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldStorageIndex:
			s, n, err := consumeString(typ, rest)
			p.Index = s
			return n, err
		case fieldStorageAlg:
			s, n, err := consumeString(typ, rest)
			p.Alg = s
			return n, err
		case fieldStorageUsage:
			s, n, err := consumeString(typ, rest)
			p.Usages = append(p.Usages, domaintypes.KeyUsage(s))
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

// StorageSetItemPayload is the shared payload for KeyStorage.SetItem and
// CertStorage.SetItem.
type StorageSetItemPayload struct {
	ProviderID string
	Handle     domaintypes.CryptoHandle
}

func (p StorageSetItemPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldStorageProviderID, p.ProviderID)
	b = appendHandle(b, fieldStorageHandle, p.Handle)
	return b
}

func UnmarshalStorageSetItemPayload(b []byte) (StorageSetItemPayload, error) {
	var p StorageSetItemPayload
	err := consumeFields("StorageSetItemPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldStorageProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldStorageHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.Handle = h
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

// StorageRemoveItemPayload is the shared payload for KeyStorage.RemoveItem
// and CertStorage.RemoveItem.
type StorageRemoveItemPayload struct {
	ProviderID string
	Index      string
}

func (p StorageRemoveItemPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldStorageProviderID, p.ProviderID)
	b = appendString(b, fieldStorageIndex, p.Index)
	return b
}

func UnmarshalStorageRemoveItemPayload(b []byte) (StorageRemoveItemPayload, error) {
	var p StorageRemoveItemPayload
	err := consumeFields("StorageRemoveItemPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldStorageProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldStorageIndex:
			s, n, err := consumeString(typ, rest)
			p.Index = s
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

// ProviderScopedOnlyPayload is the shared payload for KeyStorage.Keys,
// KeyStorage.Clear, CertStorage.Keys, and CertStorage.Clear: every one of
// them only needs to know which provider to act on.
type ProviderScopedOnlyPayload struct {
	ProviderID string
}

func (p ProviderScopedOnlyPayload) Marshal() []byte {
	return appendString(nil, fieldStorageProviderID, p.ProviderID)
}

func UnmarshalProviderScopedOnlyPayload(b []byte) (ProviderScopedOnlyPayload, error) {
	var p ProviderScopedOnlyPayload
	err := consumeFields("ProviderScopedOnlyPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != fieldStorageProviderID {
			return -1, nil
		}
		s, n, err := consumeString(typ, rest)
		p.ProviderID = s
		return n, err
	})
	return p, err
}

const (
	fieldImportCertProviderID protowire.Number = 1
	fieldImportCertType       protowire.Number = 2
	fieldImportCertData       protowire.Number = 3
	fieldImportCertAlg        protowire.Number = 4
	fieldImportCertUsage      protowire.Number = 5
)

// ImportCertPayload is the payload for ActionImportCert.
type ImportCertPayload struct {
	ProviderID string
	Type       string
	Data       []byte
	Alg        string
	Usages     []domaintypes.KeyUsage
}

func (p ImportCertPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldImportCertProviderID, p.ProviderID)
	b = appendString(b, fieldImportCertType, p.Type)
	b = appendBytes(b, fieldImportCertData, p.Data)
	b = appendString(b, fieldImportCertAlg, p.Alg)
	b = appendUsages(b, fieldImportCertUsage, p.Usages)
	return b
}

func UnmarshalImportCertPayload(b []byte) (ImportCertPayload, error) {
	var p ImportCertPayload
	err := consumeFields("ImportCertPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldImportCertProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldImportCertType:
			s, n, err := consumeString(typ, rest)
			p.Type = s
			return n, err
		case fieldImportCertData:
			v, n, err := consumeBytes(typ, rest)
			p.Data = v
			return n, err
		case fieldImportCertAlg:
			s, n, err := consumeString(typ, rest)
			p.Alg = s
			return n, err
		case fieldImportCertUsage:
			s, n, err := consumeString(typ, rest)
			p.Usages = append(p.Usages, domaintypes.KeyUsage(s))
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

// ExportCertPayload is the payload for ActionExportCert.
type ExportCertPayload struct {
	ProviderID string
	Format     string
	CertHandle domaintypes.CryptoHandle
}

func (p ExportCertPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldExportProviderID, p.ProviderID)
	b = appendString(b, fieldExportFormat, p.Format)
	b = appendHandle(b, fieldExportKeyHandle, p.CertHandle)
	return b
}

func UnmarshalExportCertPayload(b []byte) (ExportCertPayload, error) {
	var p ExportCertPayload
	err := consumeFields("ExportCertPayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldExportProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldExportFormat:
			s, n, err := consumeString(typ, rest)
			p.Format = s
			return n, err
		case fieldExportKeyHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.CertHandle = h
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}

// CloseHandlePayload is the payload for ActionCloseHandle, the redesign's
// explicit handle-lifetime-release action.
type CloseHandlePayload struct {
	ProviderID string
	Handle     domaintypes.CryptoHandle
}

func (p CloseHandlePayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldStorageProviderID, p.ProviderID)
	b = appendHandle(b, fieldStorageHandle, p.Handle)
	return b
}

func UnmarshalCloseHandlePayload(b []byte) (CloseHandlePayload, error) {
	var p CloseHandlePayload
	err := consumeFields("CloseHandlePayload", b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldStorageProviderID:
			s, n, err := consumeString(typ, rest)
			p.ProviderID = s
			return n, err
		case fieldStorageHandle:
			v, n, err := consumeBytes(typ, rest)
			if err != nil {
				return 0, err
			}
			h, err := decodeHandle(v)
			p.Handle = h
			return n, err
		default:
			return -1, nil
		}
	})
	return p, err
}
