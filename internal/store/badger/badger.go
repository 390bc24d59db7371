// Package badger implements every domain store interface
// (IdentityStore, RemoteIdentityStore, RatchetSessionStore, PreKeyStore)
// on top of a single github.com/dgraph-io/badger/v4 database, wrapped
// behind a small typed API, selected as an alternative to the plain JSON
// file store.
package badger

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/envelope"
)

// key prefixes partitioning the one shared badger keyspace by store.
const (
	prefixIdentity       = "identity:"
	prefixRemoteIdentity = "remote-identity:"
	prefixSession        = "session:"
	prefixSignedPreKey   = "signed-prekey:"
	prefixOneTimePreKey  = "one-time-prekey:"
	prefixMeta           = "meta:"

	metaKeyCurrentSignedPreKeyID = prefixMeta + "current-signed-prekey-id"
	identityKey                  = prefixIdentity + "self"
)

// Store backs every domain store interface with one badger.DB. Unlike
// the file store's per-kind JSON files, keys are namespaced by prefix
// inside a single keyspace, matching how keyValStore.Write takes an
// opaque []byte key per logical record.
type Store struct {
	db         *badger.DB
	passphrase string
	mu         sync.Mutex
}

// Open opens (or creates) a badger database rooted at dir. passphrase
// protects the identity record the same way IdentityFileStore protects
// its JSON file.
func Open(dir, passphrase string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: opening %s: %w", dir, err)
	}
	return &Store{db: db, passphrase: passphrase}, nil
}

// Close releases the underlying badger database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) get(key string, dst interface{}) (bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			raw = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if dst == nil {
		return true, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (s *Store) set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
}

func (s *Store) delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// SaveIdentity implements domaininterfaces.IdentityStore.
func (s *Store) SaveIdentity(id domaintypes.Identity) error {
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
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(identityKey), ct)
	})
}

// LoadIdentity implements domaininterfaces.IdentityStore.
func (s *Store) LoadIdentity() (domaintypes.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ct []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(identityKey))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			ct = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return domaintypes.Identity{}, err
	}
	pt, err := envelope.Open(s.passphrase, ct)
	if err != nil {
		return domaintypes.Identity{}, err
	}
	var id domaintypes.Identity
	if err := json.Unmarshal(pt, &id); err != nil {
		return domaintypes.Identity{}, err
	}
	return id, nil
}

// SaveRemoteIdentity implements domaininterfaces.RemoteIdentityStore.
func (s *Store) SaveRemoteIdentity(remote domaintypes.RemoteID, id domaintypes.RemoteIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(prefixRemoteIdentity+string(remote), id)
}

// LoadRemoteIdentity implements domaininterfaces.RemoteIdentityStore.
func (s *Store) LoadRemoteIdentity(remote domaintypes.RemoteID) (domaintypes.RemoteIdentity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var id domaintypes.RemoteIdentity
	ok, err := s.get(prefixRemoteIdentity+string(remote), &id)
	return id, ok, err
}

// SaveSession implements domaininterfaces.RatchetSessionStore. The blob
// is opaque; it is stored verbatim rather than JSON-wrapped.
func (s *Store) SaveSession(remote domaintypes.RemoteID, serialized []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixSession+string(remote)), serialized)
	})
}

// LoadSession implements domaininterfaces.RatchetSessionStore.
func (s *Store) LoadSession(remote domaintypes.RemoteID) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob []byte
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixSession + string(remote)))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(v []byte) error {
			blob = append([]byte(nil), v...)
			return nil
		})
	})
	return blob, found, err
}

type signedPreKeyRecord struct {
	Priv domaintypes.X25519Private `json:"priv"`
	Pub  domaintypes.X25519Public  `json:"pub"`
	Sig  []byte                    `json:"sig"`
}

// SaveSignedPreKey implements domaininterfaces.PreKeyStore.
func (s *Store) SaveSignedPreKey(id domaintypes.SignedPreKeyID, priv domaintypes.X25519Private, pub domaintypes.X25519Public, sig []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(prefixSignedPreKey+string(id), signedPreKeyRecord{Priv: priv, Pub: pub, Sig: sig})
}

// LoadSignedPreKey implements domaininterfaces.PreKeyStore.
func (s *Store) LoadSignedPreKey(id domaintypes.SignedPreKeyID) (priv domaintypes.X25519Private, pub domaintypes.X25519Public, sig []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rec signedPreKeyRecord
	ok, err = s.get(prefixSignedPreKey+string(id), &rec)
	if err != nil || !ok {
		return priv, pub, nil, ok, err
	}
	return rec.Priv, rec.Pub, rec.Sig, true, nil
}

// SetCurrentSignedPreKeyID implements domaininterfaces.PreKeyStore.
func (s *Store) SetCurrentSignedPreKeyID(id domaintypes.SignedPreKeyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(metaKeyCurrentSignedPreKeyID, id)
}

// CurrentSignedPreKeyID implements domaininterfaces.PreKeyStore.
func (s *Store) CurrentSignedPreKeyID() (domaintypes.SignedPreKeyID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var id domaintypes.SignedPreKeyID
	ok, err := s.get(metaKeyCurrentSignedPreKeyID, &id)
	return id, ok, err
}

type oneTimePreKeyRecord struct {
	Priv domaintypes.X25519Private `json:"priv"`
	Pub  domaintypes.X25519Public  `json:"pub"`
}

// SaveOneTimePreKeys implements domaininterfaces.PreKeyStore.
func (s *Store) SaveOneTimePreKeys(pairs []domaintypes.OneTimePreKeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		for _, p := range pairs {
			raw, err := json.Marshal(oneTimePreKeyRecord{Priv: p.Priv, Pub: p.Pub})
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(prefixOneTimePreKey+string(p.ID)), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// ConsumeOneTimePreKey implements domaininterfaces.PreKeyStore.
func (s *Store) ConsumeOneTimePreKey(id domaintypes.OneTimePreKeyID) (priv domaintypes.X25519Private, pub domaintypes.X25519Public, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec oneTimePreKeyRecord
	ok, err = s.get(prefixOneTimePreKey+string(id), &rec)
	if err != nil || !ok {
		return priv, pub, ok, err
	}
	if err := s.delete(prefixOneTimePreKey + string(id)); err != nil {
		return priv, pub, false, err
	}
	return rec.Priv, rec.Pub, true, nil
}

// ListOneTimePreKeyPublics implements domaininterfaces.PreKeyStore.
func (s *Store) ListOneTimePreKeyPublics() ([]domaintypes.OneTimePreKeyPublic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domaintypes.OneTimePreKeyPublic
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(prefixOneTimePreKey)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := domaintypes.OneTimePreKeyID(item.Key()[len(prefix):])
			var rec oneTimePreKeyRecord
			if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &rec) }); err != nil {
				return err
			}
			out = append(out, domaintypes.OneTimePreKeyPublic{ID: id, Pub: rec.Pub})
		}
		return nil
	})
	return out, err
}

var (
	_ domaininterfaces.IdentityStore       = (*Store)(nil)
	_ domaininterfaces.RemoteIdentityStore = (*Store)(nil)
	_ domaininterfaces.RatchetSessionStore = (*Store)(nil)
	_ domaininterfaces.PreKeyStore         = (*Store)(nil)
)
