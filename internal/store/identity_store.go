package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/envelope"
)

const identityFilename = "identity.json.enc"

// IdentityFileStore persists the local identity to disk, encrypted at
// rest with a passphrase supplied once at construction time (from the
// daemon's config or -passphrase flag, or from webcryptogwctl's
// --passphrase flag).
type IdentityFileStore struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir, passphrase string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir, passphrase: passphrase}
}

// SaveIdentity writes the encrypted identity to disk via a temp-file
// rename, so a crash mid-write never leaves a half-written file behind.
func (s *IdentityFileStore) SaveIdentity(id domaintypes.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	n, r, p := envelope.DefaultScryptParams()
	ct, err := envelope.Seal(s.passphrase, raw, n, r, p)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, identityFilename), ct, 0o600)
}

// LoadIdentity reads and decrypts the identity.
func (s *IdentityFileStore) LoadIdentity() (domaintypes.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, identityFilename)
	b, err := os.ReadFile(path)
	if err != nil {
		return domaintypes.Identity{}, err
	}
	pt, err := envelope.Open(s.passphrase, b)
	if err != nil {
		return domaintypes.Identity{}, err
	}
	var id domaintypes.Identity
	if err := json.Unmarshal(pt, &id); err != nil {
		return domaintypes.Identity{}, err
	}
	return id, nil
}

var _ domaininterfaces.IdentityStore = (*IdentityFileStore)(nil)
