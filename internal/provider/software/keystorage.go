package software

import (
	"sort"
	"sync"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

// namedStorage is the provider-resident named-slot key store backing the
// KeyStorage.* action family. It lives for the process lifetime of the
// daemon; the software provider keeps no on-disk copy of it, since the
// handles it stores resolve back to key material that is itself only ever
// held in process memory.
type namedStorage struct {
	mu    sync.RWMutex
	items map[string]domaintypes.CryptoHandle
}

func newNamedStorage() *namedStorage {
	return &namedStorage{items: make(map[string]domaintypes.CryptoHandle)}
}

func (s *namedStorage) GetItem(name string) (domaintypes.CryptoHandle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.items[name]
	return h, ok, nil
}

func (s *namedStorage) SetItem(name string, key domaintypes.CryptoHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[name] = key
	return nil
}

func (s *namedStorage) RemoveItem(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, name)
	return nil
}

func (s *namedStorage) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (s *namedStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]domaintypes.CryptoHandle)
	return nil
}

var _ domaininterfaces.KeyStorage = (*namedStorage)(nil)
