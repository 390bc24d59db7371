package client_test

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

func startServer(t *testing.T) (url string, bundle domaintypes.PreKeyBundle) {
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

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws", bundle
}

func TestCallAfterCloseReturnsSocketNotOpen(t *testing.T) {
	url, bundle := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := client.Connect(ctx, url, testIdentity(t), bundle, ratchetproto.NewFactory())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, err = c.Call(ctx, codec.ActionProviderInfo, nil)
	if err == nil || err.Error() != "Socket connection is not open" {
		t.Fatalf("got %v, want exact error text \"Socket connection is not open\"", err)
	}
}

func TestEventListenerObservesAuthorizedEvent(t *testing.T) {
	url, bundle := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := client.Connect(ctx, url, testIdentity(t), bundle, ratchetproto.NewFactory())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	events := make(chan domaintypes.ActionTag, 1)
	c.AddListener(func(tag domaintypes.ActionTag, _ []byte) {
		if tag == codec.EventAuthorized {
			events <- tag
		}
	})

	if _, err := c.Call(ctx, codec.ActionLogin, codec.LoginPayload{ProviderID: software.ProviderID}.Marshal()); err != nil {
		t.Fatalf("Login: %v", err)
	}

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for an authorized event")
	}

	// Authorization should now also unlock an authenticated-only action.
	if _, err := c.Call(ctx, codec.ActionDigest, codec.DigestPayload{
		ProviderID: software.ProviderID,
		Alg:        "SHA-256",
		Data:       []byte("x"),
	}.Marshal()); err != nil {
		t.Fatalf("Digest after authorization: %v", err)
	}
}

func TestPendingCallsUnblockOnConcurrentClose(t *testing.T) {
	url, bundle := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := client.Connect(ctx, url, testIdentity(t), bundle, ratchetproto.NewFactory())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	const n = 6
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, callErr := c.Call(ctx, codec.ActionProviderInfo, nil)
			done <- callErr
		}()
	}
	go c.Close()

	// Every in-flight call must resolve one way or another rather than
	// hang forever once Close runs concurrently with it.
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out waiting for an in-flight call to resolve after Close")
		}
	}
}
