package dispatcher_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/client"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/codec"
	internalcrypto "github.com/murat-sen-cloudpeer/webcrypto-local/internal/crypto"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/dispatcher"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/provider"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/provider/software"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/ratchetproto"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/store"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/transport"
)

func testIdentity(t *testing.T) domaintypes.Identity {
	t.Helper()
	signPriv, signPub, err := internalcrypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	exPriv, exPub, err := internalcrypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	return domaintypes.Identity{
		SigningPriv:  signPriv,
		SigningPub:   signPub,
		ExchangePriv: exPriv,
		ExchangePub:  exPub,
	}
}

// harness wires a real dispatcher behind a real websocket server and
// returns a connected client against it.
type harness struct {
	client *client.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	home := t.TempDir()
	preKeys := store.NewPreKeyFileStore(home)
	remoteIdentities := store.NewRemoteIdentityFileStore(home)
	sessions := store.NewRatchetSessionFileStore(home)

	serverIdentity := testIdentity(t)
	bundle, err := ratchetproto.BuildPreKeyBundle(serverIdentity, preKeys)
	if err != nil {
		t.Fatalf("BuildPreKeyBundle: %v", err)
	}

	providers := provider.New()
	providers.Add(software.New())

	log := logrus.New()
	log.SetOutput(io.Discard)

	d := dispatcher.New(serverIdentity, preKeys, remoteIdentities, sessions, ratchetproto.NewFactory(), providers, log)

	router := mux.NewRouter()
	transport.RegisterWebSocketRoute(router, "/ws", log, func(conn transport.Conn) {
		_ = d.Serve(context.Background(), conn)
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientIdentity := testIdentity(t)
	c, err := client.Connect(ctx, url, clientIdentity, bundle, ratchetproto.NewFactory())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return &harness{client: c}
}

func callCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestHandshakeThenProviderInfo(t *testing.T) {
	h := newHarness(t)
	data, err := h.client.Call(callCtx(t), codec.ActionProviderInfo, nil)
	if err != nil {
		t.Fatalf("Call ProviderInfo: %v", err)
	}
	list, err := codec.UnmarshalProviderInfoList(data)
	if err != nil {
		t.Fatalf("UnmarshalProviderInfoList: %v", err)
	}
	if len(list) != 1 || list[0].ID != software.ProviderID {
		t.Fatalf("got %+v, want one software provider", list)
	}
}

func TestUnauthenticatedActionRejected(t *testing.T) {
	h := newHarness(t)
	payload := codec.DigestPayload{ProviderID: software.ProviderID, Alg: "SHA-256", Data: []byte("x")}.Marshal()
	_, err := h.client.Call(callCtx(t), codec.ActionDigest, payload)
	if err == nil {
		t.Fatalf("expected Digest before Login to be rejected")
	}
}

func TestLoginThenDigestAndGenerateKeyAndCloseHandle(t *testing.T) {
	h := newHarness(t)
	ctx := callCtx(t)

	if _, err := h.client.Call(ctx, codec.ActionLogin, codec.LoginPayload{ProviderID: software.ProviderID}.Marshal()); err != nil {
		t.Fatalf("Login: %v", err)
	}

	loggedIn, err := h.client.Call(ctx, codec.ActionIsLoggedIn, codec.LoginPayload{ProviderID: software.ProviderID}.Marshal())
	if err != nil {
		t.Fatalf("IsLoggedIn: %v", err)
	}
	if !codec.UnmarshalBool(loggedIn) {
		t.Fatalf("expected IsLoggedIn to report true after Login")
	}

	digest, err := h.client.Call(ctx, codec.ActionDigest, codec.DigestPayload{
		ProviderID: software.ProviderID,
		Alg:        "SHA-256",
		Data:       []byte("hello"),
	}.Marshal())
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if len(digest) != 32 {
		t.Fatalf("SHA-256 digest length = %d, want 32", len(digest))
	}

	genData, err := h.client.Call(ctx, codec.ActionGenerateKey, codec.GenerateKeyPayload{
		ProviderID:  software.ProviderID,
		Alg:         "AES-GCM",
		Extractable: true,
		Usages:      []domaintypes.KeyUsage{"encrypt", "decrypt"},
	}.Marshal())
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	result, err := codec.UnmarshalGenerateKeyResult(genData)
	if err != nil {
		t.Fatalf("UnmarshalGenerateKeyResult: %v", err)
	}
	if result.Private == nil {
		t.Fatalf("expected a symmetric key handle in Private")
	}
	handle := *result.Private

	// The handle must keep resolving until explicitly closed.
	encPayload := codec.CipherPayload{
		ProviderID: software.ProviderID,
		Alg:        "AES-GCM",
		KeyHandle:  handle,
		Data:       []byte("plaintext"),
	}.Marshal()
	if _, err := h.client.Call(ctx, codec.ActionEncrypt, encPayload); err != nil {
		t.Fatalf("Encrypt before CloseHandle: %v", err)
	}

	if _, err := h.client.Call(ctx, codec.ActionCloseHandle, codec.CloseHandlePayload{
		ProviderID: software.ProviderID,
		Handle:     handle,
	}.Marshal()); err != nil {
		t.Fatalf("CloseHandle: %v", err)
	}

	if _, err := h.client.Call(ctx, codec.ActionEncrypt, encPayload); err == nil {
		t.Fatalf("expected Encrypt with a closed handle to fail")
	}
}

func TestUnknownActionLeavesChannelOpen(t *testing.T) {
	h := newHarness(t)
	ctx := callCtx(t)

	if _, err := h.client.Call(ctx, domaintypes.ActionTag("NotARealAction"), nil); err == nil {
		t.Fatalf("expected an unknown action to error")
	}

	// The connection must still be usable afterward.
	if _, err := h.client.Call(ctx, codec.ActionProviderInfo, nil); err != nil {
		t.Fatalf("ProviderInfo after unknown action: %v", err)
	}
}

func TestConcurrentDigestCalls(t *testing.T) {
	h := newHarness(t)
	ctx := callCtx(t)

	if _, err := h.client.Call(ctx, codec.ActionLogin, codec.LoginPayload{ProviderID: software.ProviderID}.Marshal()); err != nil {
		t.Fatalf("Login: %v", err)
	}

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := h.client.Call(ctx, codec.ActionDigest, codec.DigestPayload{
				ProviderID: software.ProviderID,
				Alg:        "SHA-256",
				Data:       []byte{byte(i)},
			}.Marshal())
			errs <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent Digest: %v", err)
		}
	}
}
