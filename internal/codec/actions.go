package codec

import domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"

// Action tags. Every dispatcher handler is registered in a
// map[domaintypes.ActionTag]Handler under exactly one of these; an
// envelope carrying any other tag is rejected with "Unknown action".
const (
	ActionProviderInfo      domaintypes.ActionTag = "ProviderInfo"
	ActionProviderGetCrypto domaintypes.ActionTag = "ProviderGetCrypto"
	ActionIsLoggedIn        domaintypes.ActionTag = "IsLoggedIn"
	ActionLogin             domaintypes.ActionTag = "Login"

	ActionDigest      domaintypes.ActionTag = "Digest"
	ActionGenerateKey domaintypes.ActionTag = "GenerateKey"
	ActionSign        domaintypes.ActionTag = "Sign"
	ActionVerify      domaintypes.ActionTag = "Verify"
	ActionEncrypt     domaintypes.ActionTag = "Encrypt"
	ActionDecrypt     domaintypes.ActionTag = "Decrypt"
	ActionDeriveBits  domaintypes.ActionTag = "DeriveBits"
	ActionDeriveKey   domaintypes.ActionTag = "DeriveKey"
	ActionWrapKey     domaintypes.ActionTag = "WrapKey"
	ActionUnwrapKey   domaintypes.ActionTag = "UnwrapKey"
	ActionImportKey   domaintypes.ActionTag = "ImportKey"
	ActionExportKey   domaintypes.ActionTag = "ExportKey"

	ActionKeyStorageGetItem    domaintypes.ActionTag = "KeyStorage.GetItem"
	ActionKeyStorageSetItem    domaintypes.ActionTag = "KeyStorage.SetItem"
	ActionKeyStorageRemoveItem domaintypes.ActionTag = "KeyStorage.RemoveItem"
	ActionKeyStorageKeys       domaintypes.ActionTag = "KeyStorage.Keys"
	ActionKeyStorageClear      domaintypes.ActionTag = "KeyStorage.Clear"

	ActionCertStorageGetItem    domaintypes.ActionTag = "CertStorage.GetItem"
	ActionCertStorageSetItem    domaintypes.ActionTag = "CertStorage.SetItem"
	ActionCertStorageRemoveItem domaintypes.ActionTag = "CertStorage.RemoveItem"
	ActionCertStorageKeys       domaintypes.ActionTag = "CertStorage.Keys"
	ActionCertStorageClear      domaintypes.ActionTag = "CertStorage.Clear"
	ActionImportCert            domaintypes.ActionTag = "ImportCert"
	ActionExportCert            domaintypes.ActionTag = "ExportCert"

	ActionCloseHandle domaintypes.ActionTag = "CloseHandle"
)

// Unsolicited event tags. These never carry a matching pending actionId;
// a client dispatches them to registered listeners instead.
const (
	EventAuthorized domaintypes.ActionTag = "authorized"
	EventToken      domaintypes.ActionTag = "token"
)

// unauthAllowed is the exhaustive set of actions a connection in
// open-unauth state may invoke.
var unauthAllowed = map[domaintypes.ActionTag]struct{}{
	ActionProviderInfo:      {},
	ActionProviderGetCrypto: {},
	ActionIsLoggedIn:        {},
	ActionLogin:             {},
}

// AllowedInUnauth reports whether tag may be dispatched on a connection
// that has not yet completed Login.
func AllowedInUnauth(tag domaintypes.ActionTag) bool {
	_, ok := unauthAllowed[tag]
	return ok
}
