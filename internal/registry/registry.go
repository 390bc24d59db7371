// Package registry implements the crypto handle registry: the
// append-only, in-memory table mapping an opaque CryptoHandle to the live
// key or certificate object it denotes on a given connection. Grounded on
// the mutex-guarded in-memory map idiom used throughout internal/store.
package registry

import (
	"fmt"
	"sync"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

// Entry pairs a handle with the live object it resolves to and the
// provider that produced it.
type Entry struct {
	Handle     domaintypes.CryptoHandle
	ProviderID string
	Object     interface{}
	removed    bool
}

// ErrNotFound is returned by Lookup when no entry matches the query triple.
type ErrNotFound struct {
	ID domaintypes.Fingerprint
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("Cannot get CryptoItem by ID '%s'", e.ID)
}

// Registry is one connection's handle table. Insertions are visible to
// Lookup immediately; Remove tombstones an entry rather than compacting
// the slice, so indices referenced by earlier first-match ties stay
// stable. This backs the explicit CloseHandle action: a handle closed by
// the client is no longer resolvable by any later action on the same
// connection.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Insert appends a new entry and returns it. Insertion order is the
// tie-break Lookup uses among duplicate (id, providerId, type) triples.
func (r *Registry) Insert(handle domaintypes.CryptoHandle, providerID string, object interface{}) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := Entry{Handle: handle, ProviderID: providerID, Object: object}
	r.entries = append(r.entries, e)
	return e
}

// Lookup returns the first-inserted, not-yet-removed entry whose handle
// equals query.
func (r *Registry) Lookup(query domaintypes.CryptoHandle) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if !e.removed && e.Handle.Equal(query) {
			return e, nil
		}
	}
	return Entry{}, &ErrNotFound{ID: query.ID}
}

// Remove tombstones the first-inserted, not-yet-removed entry matching
// handle so it is no longer resolvable by Lookup. It is the backing
// operation for the CloseHandle action.
func (r *Registry) Remove(handle domaintypes.CryptoHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if !e.removed && e.Handle.Equal(handle) {
			r.entries[i].removed = true
			return nil
		}
	}
	return &ErrNotFound{ID: handle.ID}
}
