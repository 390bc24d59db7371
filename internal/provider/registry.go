// Package provider implements the provider registry: the set of live
// WebCrypto backends the dispatcher can route Subtle/KeyStorage/
// CertStorage actions to, plus the hotplug event channel a token-backed
// provider publishes on insertion or removal.
package provider

import (
	"sync"

	domaininterfaces "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/interfaces"
	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
)

// Registry holds the providers available to a running daemon. The
// software provider is always present; token-backed providers register
// themselves as they are discovered.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]domaininterfaces.Provider
	events    chan domaintypes.ProviderTokenEvent
}

// New returns an empty Registry with a buffered event channel so
// Add/Remove never blocks on a slow or absent subscriber.
func New() *Registry {
	return &Registry{
		providers: make(map[string]domaininterfaces.Provider),
		events:    make(chan domaintypes.ProviderTokenEvent, 16),
	}
}

// Add registers p, replacing any existing provider with the same ID, and
// publishes a token "added" event.
func (r *Registry) Add(p domaininterfaces.Provider) {
	r.mu.Lock()
	r.providers[p.ID()] = p
	r.mu.Unlock()

	info := p.Info()
	r.publish(domaintypes.ProviderTokenEvent{
		Added: []domaintypes.ProviderCryptoInfo{{ID: info.ID, Name: info.Name}},
	})
}

// Remove unregisters the provider with the given id, if present, and
// publishes a token "removed" event.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	p, ok := r.providers[id]
	if ok {
		delete(r.providers, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	info := p.Info()
	r.publish(domaintypes.ProviderTokenEvent{
		Removed: []domaintypes.ProviderCryptoInfo{{ID: info.ID, Name: info.Name}},
	})
}

func (r *Registry) publish(ev domaintypes.ProviderTokenEvent) {
	select {
	case r.events <- ev:
	default:
		// A slow consumer drops the oldest pending event rather than
		// blocking hotplug detection.
		select {
		case <-r.events:
		default:
		}
		r.events <- ev
	}
}

// List returns the static info of every registered provider.
func (r *Registry) List() []domaintypes.ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domaintypes.ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p.Info())
	}
	return out
}

// Get returns the provider registered under id, if any.
func (r *Registry) Get(id string) (domaininterfaces.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// Subscribe returns the registry's token event channel.
func (r *Registry) Subscribe() <-chan domaintypes.ProviderTokenEvent {
	return r.events
}

var _ domaininterfaces.ProviderRegistry = (*Registry)(nil)
