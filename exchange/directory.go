package exchange

import (
	"sort"
	"sync"

	apperrors "github.com/jax-labs/apexflow/errors"
)

// Directory holds the venues configured for a deployment, keyed by the
// user-facing connection id. Place-order dispatch looks connections up here,
// so an unknown or deactivated id fails the node without touching a venue.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]directoryEntry
}

type directoryEntry struct {
	client Client
	active bool
}

// NewDirectory creates an empty venue directory.
func NewDirectory() *Directory {
	return &Directory{entries: make(map[string]directoryEntry)}
}

// Register adds or replaces a venue connection under the given id.
func (d *Directory) Register(id string, client Client, active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[id] = directoryEntry{client: client, active: active}
}

// Deactivate marks a registered connection inactive without removing it.
// Deactivating an unknown id is a no-op.
func (d *Directory) Deactivate(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.entries[id]; ok {
		e.active = false
		d.entries[id] = e
	}
}

// Lookup returns the client for an active connection. Unknown ids and
// inactive connections return distinct errors naming the id.
func (d *Directory) Lookup(id string) (Client, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entries[id]
	if !ok {
		return nil, apperrors.ExchangeNotFound(id)
	}
	if !e.active {
		return nil, apperrors.ExchangeInactive(id)
	}
	return e.client, nil
}

// IDs returns the registered connection ids in sorted order.
func (d *Directory) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.entries))
	for id := range d.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
