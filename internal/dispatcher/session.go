package dispatcher

import (
	"sync"
	"sync/atomic"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/registry"
)

// connState is a connection's position in the connecting -> open-unauth ->
// open-auth -> closed lifecycle.
type connState int32

const (
	stateConnecting connState = iota
	stateOpenUnauth
	stateOpenAuth
	stateClosed
)

// session is the state a Dispatcher tracks for one connection from the
// moment its handshake completes until it closes: the live ratchet, the
// handle registry scoped to this connection alone, and which providers it
// has successfully logged into.
type session struct {
	remote domaintypes.RemoteID

	ratchetMu sync.Mutex // serializes every Encrypt/Decrypt call on ratchet
	ratchet   domaininterfaces.Ratchet

	registry *registry.Registry

	state atomic.Int32

	authMu              sync.Mutex
	authorizedProviders map[string]bool
}

func newSession(remote domaintypes.RemoteID, ratchet domaininterfaces.Ratchet) *session {
	s := &session{
		remote:              remote,
		ratchet:             ratchet,
		registry:            registry.New(),
		authorizedProviders: make(map[string]bool),
	}
	s.state.Store(int32(stateOpenUnauth))
	return s
}

func (s *session) getState() connState { return connState(s.state.Load()) }

func (s *session) setState(st connState) { s.state.Store(int32(st)) }

func (s *session) isAuthorized() bool { return s.getState() == stateOpenAuth }

// markAuthorized records a successful Login against providerID and
// promotes the connection to open-auth.
func (s *session) markAuthorized(providerID string) {
	s.authMu.Lock()
	s.authorizedProviders[providerID] = true
	s.authMu.Unlock()
	s.setState(stateOpenAuth)
}

// isLoggedIn reports whether Login has previously succeeded for providerID
// on this connection.
func (s *session) isLoggedIn(providerID string) bool {
	s.authMu.Lock()
	defer s.authMu.Unlock()
	return s.authorizedProviders[providerID]
}
