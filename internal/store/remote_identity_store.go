package store

import (
	"path/filepath"
	"sync"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

const remoteIdentitiesFilename = "remote_identities.json"

// RemoteIdentityFileStore persists pinned counterparty identities to disk.
type RemoteIdentityFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewRemoteIdentityFileStore returns a RemoteIdentityFileStore rooted at dir.
func NewRemoteIdentityFileStore(dir string) *RemoteIdentityFileStore {
	return &RemoteIdentityFileStore{dir: dir}
}

// SaveRemoteIdentity pins or updates the identity recorded for remote.
func (s *RemoteIdentityFileStore) SaveRemoteIdentity(remote domaintypes.RemoteID, id domaintypes.RemoteIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, remoteIdentitiesFilename)
	m := map[domaintypes.RemoteID]domaintypes.RemoteIdentity{}
	_ = readJSON(path, &m)
	m[remote] = id
	return writeJSON(path, m, 0o600)
}

// LoadRemoteIdentity retrieves the pinned identity for remote, if any.
func (s *RemoteIdentityFileStore) LoadRemoteIdentity(remote domaintypes.RemoteID) (domaintypes.RemoteIdentity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, remoteIdentitiesFilename)
	m := map[domaintypes.RemoteID]domaintypes.RemoteIdentity{}
	if err := readJSON(path, &m); err != nil {
		return domaintypes.RemoteIdentity{}, false, err
	}
	id, ok := m[remote]
	return id, ok, nil
}

var _ domaininterfaces.RemoteIdentityStore = (*RemoteIdentityFileStore)(nil)
