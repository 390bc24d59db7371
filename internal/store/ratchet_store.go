package store

import (
	"encoding/base64"
	"path/filepath"
	"sync"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

const ratchetSessionsFilename = "ratchet_sessions.json"

// RatchetSessionFileStore persists per-peer serialized Double Ratchet
// session state to disk. The blob is opaque JSON from
// internal/ratchetproto; this store never interprets it.
type RatchetSessionFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewRatchetSessionFileStore returns a RatchetSessionFileStore rooted at dir.
func NewRatchetSessionFileStore(dir string) *RatchetSessionFileStore {
	return &RatchetSessionFileStore{dir: dir}
}

// SaveSession writes the serialized ratchet state for remote. Called
// synchronously before the reply that advanced the ratchet is sent.
func (s *RatchetSessionFileStore) SaveSession(remote domaintypes.RemoteID, serialized []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, ratchetSessionsFilename)
	m := map[domaintypes.RemoteID]string{}
	_ = readJSON(path, &m)
	m[remote] = base64.StdEncoding.EncodeToString(serialized)
	return writeJSON(path, m, 0o600)
}

// LoadSession retrieves the serialized ratchet state for remote.
func (s *RatchetSessionFileStore) LoadSession(remote domaintypes.RemoteID) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, ratchetSessionsFilename)
	m := map[domaintypes.RemoteID]string{}
	if err := readJSON(path, &m); err != nil {
		return nil, false, err
	}
	enc, ok := m[remote]
	if !ok {
		return nil, false, nil
	}
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

var _ domaininterfaces.RatchetSessionStore = (*RatchetSessionFileStore)(nil)
