package dispatcher

import (
	"context"
	"errors"
	"fmt"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/codec"
	internalcrypto "github.com/murat-sen-cloudpeer/webcrypto-local/internal/crypto"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/transport"
)

// handlerFunc is the shape every action-tag handler implements. conn is
// threaded through only so Login can push its unsolicited "authorized"
// event on the same connection that requested it.
type handlerFunc func(ctx context.Context, d *Dispatcher, sess *session, conn transport.Conn, payload []byte) ([]byte, error)

var handlerTable = map[domaintypes.ActionTag]handlerFunc{
	codec.ActionProviderInfo:      handleProviderInfo,
	codec.ActionProviderGetCrypto: handleProviderGetCrypto,
	codec.ActionIsLoggedIn:        handleIsLoggedIn,
	codec.ActionLogin:             handleLogin,

	codec.ActionDigest:      handleDigest,
	codec.ActionGenerateKey: handleGenerateKey,
	codec.ActionSign:        handleSign,
	codec.ActionVerify:      handleVerify,
	codec.ActionEncrypt:     handleEncrypt,
	codec.ActionDecrypt:     handleDecrypt,
	codec.ActionDeriveBits:  handleDeriveBits,
	codec.ActionDeriveKey:   handleDeriveKey,
	codec.ActionWrapKey:     handleWrapKey,
	codec.ActionUnwrapKey:   handleUnwrapKey,
	codec.ActionImportKey:   handleImportKey,
	codec.ActionExportKey:   handleExportKey,

	codec.ActionKeyStorageGetItem:    handleKeyStorageGetItem,
	codec.ActionKeyStorageSetItem:    handleKeyStorageSetItem,
	codec.ActionKeyStorageRemoveItem: handleKeyStorageRemoveItem,
	codec.ActionKeyStorageKeys:       handleKeyStorageKeys,
	codec.ActionKeyStorageClear:      handleKeyStorageClear,

	codec.ActionCertStorageGetItem:    handleCertStorageGetItem,
	codec.ActionCertStorageSetItem:    handleCertStorageSetItem,
	codec.ActionCertStorageRemoveItem: handleCertStorageRemoveItem,
	codec.ActionCertStorageKeys:       handleCertStorageKeys,
	codec.ActionCertStorageClear:      handleCertStorageClear,
	codec.ActionImportCert:            handleImportCert,
	codec.ActionExportCert:            handleExportCert,

	codec.ActionCloseHandle: handleCloseHandle,
}

func resolveProvider(d *Dispatcher, providerID string) (domaininterfaces.Provider, error) {
	p, ok := d.providers.Get(providerID)
	if !ok {
		return nil, fmt.Errorf("Cannot get provider by ID '%s'", providerID)
	}
	return p, nil
}

// requireHandle confirms handle was actually issued to sess's own
// connection before the dispatcher forwards it to a provider operation.
// The registry's own error text ("Cannot get CryptoItem by ID ...")
// already matches the wire contract for a handle lookup miss.
func requireHandle(sess *session, handle domaintypes.CryptoHandle) (domaintypes.CryptoHandle, error) {
	entry, err := sess.registry.Lookup(handle)
	if err != nil {
		return domaintypes.CryptoHandle{}, err
	}
	return entry.Handle, nil
}

func registerHandle(sess *session, providerID string, h domaintypes.CryptoHandle) domaintypes.CryptoHandle {
	entry := sess.registry.Insert(h, providerID, nil)
	return entry.Handle
}

func handleProviderInfo(_ context.Context, d *Dispatcher, _ *session, _ transport.Conn, _ []byte) ([]byte, error) {
	return codec.MarshalProviderInfoList(d.providers.List()), nil
}

func handleProviderGetCrypto(_ context.Context, d *Dispatcher, _ *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalProviderGetCryptoPayload(payload)
	if err != nil {
		return nil, err
	}
	if _, err := resolveProvider(d, p.ProviderID); err != nil {
		return nil, err
	}
	return nil, nil
}

func handleIsLoggedIn(_ context.Context, _ *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalLoginPayload(payload)
	if err != nil {
		return nil, err
	}
	return codec.MarshalBool(sess.isLoggedIn(p.ProviderID)), nil
}

// defaultPrompt waits out the Login timeout; the host's interactive
// prompt capability is out of scope for this gateway.
func defaultPrompt(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func handleLogin(ctx context.Context, d *Dispatcher, sess *session, conn transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalLoginPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}

	if prov.RequiresLogin() {
		loginCtx, cancel := context.WithTimeout(ctx, d.loginTimeout)
		err := prov.Login(loginCtx, defaultPrompt)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, errors.New("CryptoLogin timeout")
			}
			return nil, err
		}
	}

	sess.markAuthorized(p.ProviderID)
	d.sendUnsolicited(ctx, conn, sess, codec.EventAuthorized, nil)
	return nil, nil
}

func handleDigest(_ context.Context, d *Dispatcher, _ *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalDigestPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	return prov.Subtle().Digest(p.Alg, p.Data)
}

func handleGenerateKey(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalGenerateKeyPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	handles, err := prov.Subtle().GenerateKey(p.Alg, p.Extractable, p.Usages)
	if err != nil {
		return nil, err
	}

	var result codec.GenerateKeyResult
	switch len(handles) {
	case 1:
		h := registerHandle(sess, p.ProviderID, handles[0])
		result.Private = &h
	case 2:
		pub := registerHandle(sess, p.ProviderID, handles[0])
		priv := registerHandle(sess, p.ProviderID, handles[1])
		result.Public = &pub
		result.Private = &priv
	default:
		return nil, fmt.Errorf("software: GenerateKey(%q) returned %d handles", p.Alg, len(handles))
	}
	return result.Marshal(), nil
}

func handleSign(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalSignPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	keyHandle, err := requireHandle(sess, p.KeyHandle)
	if err != nil {
		return nil, err
	}
	return prov.Subtle().Sign(p.Alg, keyHandle, p.Data)
}

func handleVerify(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalVerifyPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	keyHandle, err := requireHandle(sess, p.KeyHandle)
	if err != nil {
		return nil, err
	}
	ok, err := prov.Subtle().Verify(p.Alg, keyHandle, p.Signature, p.Data)
	if err != nil {
		return nil, err
	}
	return codec.MarshalBool(ok), nil
}

func handleEncrypt(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalCipherPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	keyHandle, err := requireHandle(sess, p.KeyHandle)
	if err != nil {
		return nil, err
	}
	return prov.Subtle().Encrypt(p.Alg, keyHandle, p.Data)
}

func handleDecrypt(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalCipherPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	keyHandle, err := requireHandle(sess, p.KeyHandle)
	if err != nil {
		return nil, err
	}
	return prov.Subtle().Decrypt(p.Alg, keyHandle, p.Data)
}

// combinedDeriveAlgorithm resolves the peer's public handle against this
// session's registry, exports its raw bytes, and appends them to alg
// behind a '|' separator, the convention internal/provider/software's
// subtle implementation expects for DeriveBits/DeriveKey.
func combinedDeriveAlgorithm(sess *session, prov domaininterfaces.Provider, alg string, publicHandle domaintypes.CryptoHandle) (string, error) {
	resolved, err := requireHandle(sess, publicHandle)
	if err != nil {
		return "", err
	}
	raw, err := prov.Subtle().ExportKey("raw", resolved)
	if err != nil {
		return "", err
	}
	return alg + "|" + string(raw), nil
}

func handleDeriveBits(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalDeriveBitsPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	keyHandle, err := requireHandle(sess, p.KeyHandle)
	if err != nil {
		return nil, err
	}
	alg, err := combinedDeriveAlgorithm(sess, prov, p.Alg, p.PublicHandle)
	if err != nil {
		return nil, err
	}
	return prov.Subtle().DeriveBits(alg, keyHandle, int(p.Length))
}

func handleDeriveKey(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalDeriveKeyPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	keyHandle, err := requireHandle(sess, p.KeyHandle)
	if err != nil {
		return nil, err
	}
	alg, err := combinedDeriveAlgorithm(sess, prov, p.Alg, p.PublicHandle)
	if err != nil {
		return nil, err
	}
	handle, err := prov.Subtle().DeriveKey(alg, keyHandle, p.DerivedAlg, p.Extractable, p.Usages)
	if err != nil {
		return nil, err
	}
	handle = registerHandle(sess, p.ProviderID, handle)
	return codec.MarshalHandle(handle), nil
}

func handleWrapKey(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalWrapKeyPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	keyHandle, err := requireHandle(sess, p.KeyHandle)
	if err != nil {
		return nil, err
	}
	wrappingHandle, err := requireHandle(sess, p.WrappingKeyHandle)
	if err != nil {
		return nil, err
	}
	return prov.Subtle().WrapKey(p.Format, keyHandle, wrappingHandle, p.WrapAlg)
}

func handleUnwrapKey(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalUnwrapKeyPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	unwrappingHandle, err := requireHandle(sess, p.UnwrappingKeyHandle)
	if err != nil {
		return nil, err
	}
	handle, err := prov.Subtle().UnwrapKey(p.Format, p.WrappedData, unwrappingHandle, p.UnwrapAlg, p.UnwrappedKeyAlg, p.Extractable, p.Usages)
	if err != nil {
		return nil, err
	}
	handle = registerHandle(sess, p.ProviderID, handle)
	return codec.MarshalHandle(handle), nil
}

func handleImportKey(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalImportKeyPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	handle, err := prov.Subtle().ImportKey(p.Format, p.KeyData, p.Alg, p.Extractable, p.Usages)
	if err != nil {
		return nil, err
	}
	handle = registerHandle(sess, p.ProviderID, handle)
	return codec.MarshalHandle(handle), nil
}

func handleExportKey(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalExportKeyPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	keyHandle, err := requireHandle(sess, p.KeyHandle)
	if err != nil {
		return nil, err
	}
	return prov.Subtle().ExportKey(p.Format, keyHandle)
}

func handleKeyStorageGetItem(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalStorageGetItemPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	handle, ok, err := prov.KeyStorage().GetItem(p.Index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("Cannot get key by identity '%s'", p.Index)
	}
	handle = registerHandle(sess, p.ProviderID, handle)
	return codec.MarshalHandle(handle), nil
}

// handleKeyStorageSetItem assigns the new named slot a fresh random index
// rather than accepting one from the client; the index comes back as the
// action's result instead of being taken as input.
func handleKeyStorageSetItem(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalStorageSetItemPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	handle, err := requireHandle(sess, p.Handle)
	if err != nil {
		return nil, err
	}
	index, err := newStorageIndex()
	if err != nil {
		return nil, err
	}
	if err := prov.KeyStorage().SetItem(index, handle); err != nil {
		return nil, err
	}
	return []byte(index), nil
}

func handleKeyStorageRemoveItem(_ context.Context, d *Dispatcher, _ *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalStorageRemoveItemPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	return nil, prov.KeyStorage().RemoveItem(p.Index)
}

func handleKeyStorageKeys(_ context.Context, d *Dispatcher, _ *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalProviderScopedOnlyPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	keys, err := prov.KeyStorage().Keys()
	if err != nil {
		return nil, err
	}
	return codec.MarshalStringList(keys), nil
}

func handleKeyStorageClear(_ context.Context, d *Dispatcher, _ *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalProviderScopedOnlyPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	return nil, prov.KeyStorage().Clear()
}

// handleCertStorageGetItem inserts two handle-registry entries: the
// certificate handle and its embedded public key, both sharing the
// public-key thumbprint as their id.
func handleCertStorageGetItem(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalStorageGetItemPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	certHandle, ok, err := prov.CertStorage().GetItem(p.Index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("Cannot get key by identity '%s'", p.Index)
	}
	certHandle = registerHandle(sess, p.ProviderID, certHandle)
	pubHandle := domaintypes.CryptoHandle{ID: certHandle.ID, ProviderID: p.ProviderID, Kind: domaintypes.HandlePublicKey}
	registerHandle(sess, p.ProviderID, pubHandle)
	return codec.MarshalHandle(certHandle), nil
}

func handleCertStorageSetItem(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalStorageSetItemPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	handle, err := requireHandle(sess, p.Handle)
	if err != nil {
		return nil, err
	}
	index, err := newStorageIndex()
	if err != nil {
		return nil, err
	}
	if err := prov.CertStorage().SetItem(index, handle); err != nil {
		return nil, err
	}
	return []byte(index), nil
}

func handleCertStorageRemoveItem(_ context.Context, d *Dispatcher, _ *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalStorageRemoveItemPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	return nil, prov.CertStorage().RemoveItem(p.Index)
}

func handleCertStorageKeys(_ context.Context, d *Dispatcher, _ *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalProviderScopedOnlyPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	keys, err := prov.CertStorage().Keys()
	if err != nil {
		return nil, err
	}
	return codec.MarshalStringList(keys), nil
}

func handleCertStorageClear(_ context.Context, d *Dispatcher, _ *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalProviderScopedOnlyPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	return nil, prov.CertStorage().Clear()
}

func handleImportCert(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalImportCertPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	certHandle, err := prov.CertStorage().ImportCert(p.Data, domaintypes.HandleKind(p.Type))
	if err != nil {
		return nil, err
	}
	certHandle = registerHandle(sess, p.ProviderID, certHandle)
	pubHandle := domaintypes.CryptoHandle{ID: certHandle.ID, ProviderID: p.ProviderID, Kind: domaintypes.HandlePublicKey}
	registerHandle(sess, p.ProviderID, pubHandle)
	return codec.MarshalHandle(certHandle), nil
}

func handleExportCert(_ context.Context, d *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalExportCertPayload(payload)
	if err != nil {
		return nil, err
	}
	prov, err := resolveProvider(d, p.ProviderID)
	if err != nil {
		return nil, err
	}
	certHandle, err := requireHandle(sess, p.CertHandle)
	if err != nil {
		return nil, err
	}
	return prov.CertStorage().ExportCert(certHandle)
}

// handleCloseHandle removes handle's row from this connection's registry.
// A later action referencing the same handle fails exactly as it would
// for a handle that was never issued.
func handleCloseHandle(_ context.Context, _ *Dispatcher, sess *session, _ transport.Conn, payload []byte) ([]byte, error) {
	p, err := codec.UnmarshalCloseHandlePayload(payload)
	if err != nil {
		return nil, err
	}
	if err := sess.registry.Remove(p.Handle); err != nil {
		return nil, err
	}
	return nil, nil
}

func newStorageIndex() (string, error) {
	fp, err := internalcrypto.RandomFingerprint()
	if err != nil {
		return "", err
	}
	return string(fp), nil
}
