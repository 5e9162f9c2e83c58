package livemodel

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Provider)
)

// Register adds a Provider to the global registry under name. Intended
// to be called from provider init() functions.
func Register(name string, p Provider) {
	if name == "" {
		panic("livemodel: Register called with empty name")
	}
	if p == nil {
		panic("livemodel: Register called with nil provider")
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("livemodel: provider %q already registered", name))
	}
	registry[name] = p
}

// Get looks up a registered Provider by name.
func Get(name string) (Provider, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("livemodel: unknown provider %q (registered: %v)", name, list())
	}
	return p, nil
}

// List returns the names of all registered providers, sorted alphabetically.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return list()
}

func list() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
