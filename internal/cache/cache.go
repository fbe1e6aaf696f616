// Package cache keeps short lived copies of full table reads so that list
// pages and searches do not hit the backend on every request.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Size returns the current number of items in the cache
	Size() int
}

// Manager owns the backing go-cache instance. Its janitor removes expired
// entries every cleanup interval.
type Manager struct {
	items *gocache.Cache
}

// NewManager creates a manager whose entries live for ttl.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Manager{items: gocache.New(ttl, 2*ttl)}
}

// Invalidate drops every entry whose key starts with prefix and returns how
// many were removed.
func (m *Manager) Invalidate(prefix string) int {
	removed := 0
	for key := range m.items.Items() {
		if strings.HasPrefix(key, prefix) {
			m.items.Delete(key)
			removed++
		}
	}
	return removed
}

// Flush removes everything.
func (m *Manager) Flush() {
	m.items.Flush()
}

// Size returns the number of live entries, expired ones excluded.
func (m *Manager) Size() int {
	return len(m.items.Items())
}

// Namespace is a typed view over the keys of one prefix.
type Namespace[T any] struct {
	m      *Manager
	prefix string
}

var _ Cache[int] = (*Namespace[int])(nil)

// For returns the typed namespace for prefix.
func For[T any](m *Manager, prefix string) *Namespace[T] {
	return &Namespace[T]{m: m, prefix: prefix + ":"}
}

func (n *Namespace[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := n.m.items.Get(n.prefix + key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func (n *Namespace[T]) Set(key string, data T) {
	n.m.items.SetDefault(n.prefix+key, data)
}

func (n *Namespace[T]) Delete(key string) {
	n.m.items.Delete(n.prefix + key)
}

// Clear drops every key of the namespace.
func (n *Namespace[T]) Clear() int {
	return n.m.Invalidate(n.prefix)
}

func (n *Namespace[T]) Size() int {
	count := 0
	for key := range n.m.items.Items() {
		if strings.HasPrefix(key, n.prefix) {
			count++
		}
	}
	return count
}
