package store

import (
	"path/filepath"
	"sync"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

const (
	signedPreKeysFilename  = "signed_prekeys.json"
	oneTimePreKeysFilename = "one_time_prekeys.json"
	prekeyMetaFilename     = "prekey_meta.json"
)

// PreKeyFileStore persists signed pre-key and one-time pre-key state to disk.
type PreKeyFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewPreKeyFileStore returns a PreKeyFileStore rooted at dir.
func NewPreKeyFileStore(dir string) *PreKeyFileStore {
	return &PreKeyFileStore{dir: dir}
}

type signedPreKeyRecord struct {
	Priv domaintypes.X25519Private `json:"priv"`
	Pub  domaintypes.X25519Public  `json:"pub"`
	Sig  []byte                    `json:"sig"`
}

type oneTimePreKeyRecord struct {
	Priv domaintypes.X25519Private `json:"priv"`
	Pub  domaintypes.X25519Public  `json:"pub"`
}

type prekeyMeta struct {
	CurrentSignedPreKeyID domaintypes.SignedPreKeyID `json:"current_signed_pre_key_id"`
}

// SaveSignedPreKey stores a signed pre-key by id.
func (s *PreKeyFileStore) SaveSignedPreKey(
	id domaintypes.SignedPreKeyID,
	priv domaintypes.X25519Private,
	pub domaintypes.X25519Public,
	sig []byte,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, signedPreKeysFilename)
	m := map[domaintypes.SignedPreKeyID]signedPreKeyRecord{}
	_ = readJSON(path, &m)
	m[id] = signedPreKeyRecord{Priv: priv, Pub: pub, Sig: sig}
	return writeJSON(path, m, 0o600)
}

// LoadSignedPreKey retrieves a signed pre-key by id.
func (s *PreKeyFileStore) LoadSignedPreKey(id domaintypes.SignedPreKeyID) (
	priv domaintypes.X25519Private,
	pub domaintypes.X25519Public,
	sig []byte,
	ok bool,
	err error,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, signedPreKeysFilename)
	m := map[domaintypes.SignedPreKeyID]signedPreKeyRecord{}
	if err = readJSON(path, &m); err != nil {
		return priv, pub, nil, false, err
	}
	rec, ok := m[id]
	if !ok {
		return priv, pub, nil, false, nil
	}
	return rec.Priv, rec.Pub, rec.Sig, true, nil
}

// SetCurrentSignedPreKeyID records which signed pre-key id is current.
func (s *PreKeyFileStore) SetCurrentSignedPreKeyID(id domaintypes.SignedPreKeyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, prekeyMetaFilename)
	return writeJSON(path, prekeyMeta{CurrentSignedPreKeyID: id}, 0o600)
}

// CurrentSignedPreKeyID returns the recorded current signed pre-key id.
func (s *PreKeyFileStore) CurrentSignedPreKeyID() (domaintypes.SignedPreKeyID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, prekeyMetaFilename)
	var meta prekeyMeta
	if err := readJSON(path, &meta); err != nil {
		return "", false, err
	}
	if meta.CurrentSignedPreKeyID == "" {
		return "", false, nil
	}
	return meta.CurrentSignedPreKeyID, true, nil
}

// SaveOneTimePreKeys merges the provided one-time pre-key pairs into the store.
func (s *PreKeyFileStore) SaveOneTimePreKeys(pairs []domaintypes.OneTimePreKeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, oneTimePreKeysFilename)
	m := map[domaintypes.OneTimePreKeyID]oneTimePreKeyRecord{}
	_ = readJSON(path, &m)
	for _, p := range pairs {
		m[p.ID] = oneTimePreKeyRecord{Priv: p.Priv, Pub: p.Pub}
	}
	return writeJSON(path, m, 0o600)
}

// ConsumeOneTimePreKey removes and returns a single one-time pre-key by
// id; a one-time pre-key is used at most once across its lifetime.
func (s *PreKeyFileStore) ConsumeOneTimePreKey(id domaintypes.OneTimePreKeyID) (
	priv domaintypes.X25519Private,
	pub domaintypes.X25519Public,
	ok bool,
	err error,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, oneTimePreKeysFilename)
	m := map[domaintypes.OneTimePreKeyID]oneTimePreKeyRecord{}
	if err = readJSON(path, &m); err != nil {
		return priv, pub, false, err
	}
	rec, ok := m[id]
	if !ok {
		return priv, pub, false, nil
	}
	delete(m, id)
	if err = writeJSON(path, m, 0o600); err != nil {
		return priv, pub, false, err
	}
	return rec.Priv, rec.Pub, true, nil
}

// ListOneTimePreKeyPublics exposes only the public halves, for bundling
// into a PreKeyBundle served at the discovery endpoint.
func (s *PreKeyFileStore) ListOneTimePreKeyPublics() ([]domaintypes.OneTimePreKeyPublic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, oneTimePreKeysFilename)
	m := map[domaintypes.OneTimePreKeyID]oneTimePreKeyRecord{}
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}

	out := make([]domaintypes.OneTimePreKeyPublic, 0, len(m))
	for id, rec := range m {
		out = append(out, domaintypes.OneTimePreKeyPublic{ID: id, Pub: rec.Pub})
	}
	return out, nil
}

var _ domaininterfaces.PreKeyStore = (*PreKeyFileStore)(nil)
