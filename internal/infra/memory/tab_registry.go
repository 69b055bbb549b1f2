package memory

import (
	"context"
	"sync"

	"classpoll-client/internal/domain"
	"github.com/google/uuid"
)

// TabRegistry is the in-memory tab identity store: the Go stand-in for
// the browser tab retaining its tabID across reloads. Identities live
// for the process lifetime only.
type TabRegistry struct {
	mu   sync.RWMutex
	tabs map[string]string
}

func NewTabRegistry() *TabRegistry {
	return &TabRegistry{
		tabs: make(map[string]string),
	}
}

// GetOrCreate returns the stable tabID for a client profile, minting a
// fresh one on first use.
func (r *TabRegistry) GetOrCreate(_ context.Context, name string) (string, error) {
	if name == "" {
		return "", domain.ErrMissingTabID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.tabs[name]; ok {
		return id, nil
	}
	id := uuid.NewString()
	r.tabs[name] = id
	return id, nil
}

// Get returns the registered tabID without creating one.
func (r *TabRegistry) Get(_ context.Context, name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.tabs[name]; ok {
		return id, nil
	}
	return "", domain.ErrTabNotFound
}

// Forget drops the registered identity, forcing a fresh tabID next time.
func (r *TabRegistry) Forget(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tabs, name)
	return nil
}
