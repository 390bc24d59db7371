// Package discovery serves the gateway's plaintext bootstrap endpoint: a
// single GET route a client probes before ever opening a websocket, to
// learn the server's name, version, and current pre-key bundle.
package discovery

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/ratchetproto"
)

// WellKnownPath is the route a client probes to learn how to reach this
// gateway and which pre-key bundle to consume for its first handshake.
const WellKnownPath = "/.well-known/webcrypto-local"

// Server holds the identity and pre-key material needed to answer the
// well-known discovery route.
type Server struct {
	Name     string
	Version  string
	Identity domaintypes.Identity
	PreKeys  domaininterfaces.PreKeyStore
	Log      *logrus.Logger
}

// Register mounts the well-known route on router.
func (s *Server) Register(router *mux.Router) {
	router.HandleFunc(WellKnownPath, s.serve).Methods(http.MethodGet)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	bundle, err := ratchetproto.BuildPreKeyBundle(s.Identity, s.PreKeys)
	if err != nil {
		s.Log.WithError(err).Warn("discovery: building pre-key bundle")
		http.Error(w, "failed to build pre-key bundle", http.StatusInternalServerError)
		return
	}

	raw, err := json.Marshal(bundle)
	if err != nil {
		s.Log.WithError(err).Warn("discovery: encoding pre-key bundle")
		http.Error(w, "failed to encode pre-key bundle", http.StatusInternalServerError)
		return
	}

	info := domaintypes.ServerInfo{
		Name:    s.Name,
		Version: s.Version,
		PreKey:  base64.StdEncoding.EncodeToString(raw),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		s.Log.WithError(err).Warn("discovery: writing response")
	}
}

// DecodeServerInfo base64-decodes and JSON-unmarshals the PreKey field of
// info into a PreKeyBundle, the inverse of what Server.serve publishes.
// Used by the webcryptogwctl discover and providers commands when
// bootstrapping against a discovered server.
func DecodeServerInfo(info domaintypes.ServerInfo) (domaintypes.PreKeyBundle, error) {
	raw, err := base64.StdEncoding.DecodeString(info.PreKey)
	if err != nil {
		return domaintypes.PreKeyBundle{}, err
	}
	var bundle domaintypes.PreKeyBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return domaintypes.PreKeyBundle{}, err
	}
	return bundle, nil
}
