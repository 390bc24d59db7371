package discovery_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	internalcrypto "github.com/murat-sen-cloudpeer/webcrypto-local/internal/crypto"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/discovery"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/store"
)

func newTestServer(t *testing.T) *discovery.Server {
	t.Helper()
	signPriv, signPub, err := internalcrypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	exPriv, exPub, err := internalcrypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	return &discovery.Server{
		Name:    "webcryptogwd",
		Version: "test",
		Identity: domaintypes.Identity{
			SigningPriv:  signPriv,
			SigningPub:   signPub,
			ExchangePriv: exPriv,
			ExchangePub:  exPub,
		},
		PreKeys: store.NewPreKeyFileStore(t.TempDir()),
		Log:     log,
	}
}

func TestServeAndDecodeRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	router := mux.NewRouter()
	srv.Register(router)

	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + discovery.WellKnownPath)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var info domaintypes.ServerInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Name != "webcryptogwd" || info.Version != "test" {
		t.Fatalf("got %+v", info)
	}

	bundle, err := discovery.DecodeServerInfo(info)
	if err != nil {
		t.Fatalf("DecodeServerInfo: %v", err)
	}
	if bundle.SignedPreKeyID == "" {
		t.Fatalf("expected a non-empty signed pre-key id")
	}
	if len(bundle.OneTimePreKeys) == 0 {
		t.Fatalf("expected at least one one-time pre-key")
	}
}

func TestWellKnownPathConstant(t *testing.T) {
	if discovery.WellKnownPath != "/.well-known/webcrypto-local" {
		t.Fatalf("unexpected WellKnownPath: %s", discovery.WellKnownPath)
	}
}
