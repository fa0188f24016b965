package tools

import (
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

// Provider returns the tools of a functions package.
type Provider func() ([]ITool, error)

var catalog = struct {
	sync.RWMutex
	providers map[string]Provider
}{
	providers: make(map[string]Provider),
}

// Provide registers the named provider in the catalog,
// usually from `init` of a functions package.
// It panics if the name is already provided.
func Provide(name string, provider Provider) {
	catalog.Lock()
	defer catalog.Unlock()

	if _, ok := catalog.providers[name]; ok {
		panic("tools: provider already registered: " + name)
	}
	catalog.providers[name] = provider
}

// Providers returns the sorted names of the providers in the catalog.
func Providers() []string {
	catalog.RLock()
	defer catalog.RUnlock()

	names := make([]string, 0, len(catalog.providers))
	for name := range catalog.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetProvider returns the provider by name, or ErrProviderNotFound.
func GetProvider(name string) (Provider, error) {
	catalog.RLock()
	defer catalog.RUnlock()

	if p, ok := catalog.providers[name]; ok {
		return p, nil
	}
	return nil, errors.Wrapf(ErrProviderNotFound, "provider %q", name)
}

// Load registers the tools of the named providers.
func (r *Registry) Load(names ...string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, err := GetProvider(name)
		if err != nil {
			return err
		}
		list, err := p()
		if err != nil {
			return errors.Wrapf(err, "provider %q", name)
		}
		r.Register(list...)

		logger.KV(xlog.INFO,
			"provider", name,
			"status", "loaded",
			"tools", len(list),
		)
	}
	return nil
}
