package metamodel

import (
	"sort"
	"sync"
)

// ExtensionRegistry is an opaque per-entity-type key/value store. Unlike the
// rest of the Registry it may be written after publication, so it is locked.
type ExtensionRegistry struct {
	mu     sync.RWMutex
	values map[string]any
}

func newExtensionRegistry() *ExtensionRegistry {
	return &ExtensionRegistry{values: make(map[string]any)}
}

func (e *ExtensionRegistry) Get(key string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.values[key]
	return v, ok
}

func (e *ExtensionRegistry) Set(key string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values[key] = value
}

// Keys returns the stored keys, sorted
func (e *ExtensionRegistry) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
