package engine

import "sync"

// Derived-key suffixes written by node dispatch. Each node publishes its
// outputs under "<nodeID><suffix>" so that downstream nodes can reference
// them with {{...}} templates.
const (
	suffixPrice  = "_price"
	suffixData   = "_data"
	suffixResult = "_result"
	suffixOrder  = "_order"
)

// PriceKey returns the store key holding a price-check node's numeric price.
func PriceKey(nodeID string) string { return nodeID + suffixPrice }

// DataKey returns the store key holding a price-check node's full quote.
func DataKey(nodeID string) string { return nodeID + suffixData }

// ResultKey returns the store key holding a condition node's boolean result.
func ResultKey(nodeID string) string { return nodeID + suffixResult }

// OrderKey returns the store key holding a place-order node's order record.
func OrderKey(nodeID string) string { return nodeID + suffixOrder }

// Store is the flat key/value state of one execution run. Writes are
// last-write-wins; names are never checked for collisions, so a set-variable
// node can shadow a derived key and vice versa.
//
// A store belongs to exactly one run, but the run's owner may snapshot it
// from another goroutine (status endpoints), hence the lock.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewStore creates an empty store, optionally seeded with initial variables.
func NewStore(initial map[string]any) *Store {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Store{values: values}
}

// Get returns the value stored under name. Absent names return (nil, false).
func (s *Store) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Set stores value under name, overwriting any existing entry.
func (s *Store) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Snapshot returns a shallow copy of all entries.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Port is a typed handle on one store key. It gives handlers and tests
// compile-time-safe reads of derived keys without repeating the assertion.
type Port[T any] struct {
	key string
}

// PortFor creates a typed port for the given key.
func PortFor[T any](key string) Port[T] {
	return Port[T]{key: key}
}

// Key returns the store key this port reads.
func (p Port[T]) Key() string { return p.key }

// Get reads the port's key and asserts its type. The second return is false
// when the key is absent or holds a different type.
func (p Port[T]) Get(s *Store) (T, bool) {
	v, ok := s.Get(p.key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
