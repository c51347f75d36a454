package datastore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"dscmd/logging"
)

// Registry holds the open datastores, keyed case-insensitively by name.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*DataStore
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*DataStore)}
}

// Add registers ds, replacing (and closing) any store with the same name.
func (r *Registry) Add(ds *DataStore) {
	key := strings.ToLower(ds.Name())
	r.mu.Lock()
	old := r.stores[key]
	r.stores[key] = ds
	r.mu.Unlock()
	if old != nil && old != ds {
		_ = old.Close()
	}
}

func (r *Registry) Get(name string) (*DataStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds, ok := r.stores[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return ds, nil
}

// Names returns the registered datastore names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.stores))
	for _, ds := range r.stores {
		names = append(names, ds.Name())
	}
	sort.Strings(names)
	return names
}

// Close closes every store and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for key, ds := range r.stores {
		if err := ds.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.stores, key)
	}
	return errors.Join(errs...)
}

// OpenAll opens every config. Stores that fail to open are skipped and their
// errors returned joined; the registry holds the stores that did open.
func OpenAll(ctx context.Context, cfgs []Config) (*Registry, error) {
	logger := logging.WithComponent("datastore")
	r := NewRegistry()
	var errs []error
	for _, cfg := range cfgs {
		ds, err := Open(ctx, cfg)
		if err != nil {
			logger.Warn().Err(err).Str("datastore", cfg.Name).Msg("datastore unavailable")
			errs = append(errs, err)
			continue
		}
		logger.Debug().Str("datastore", cfg.Name).Str("driver", cfg.Driver).Msg("datastore opened")
		r.Add(ds)
	}
	return r, errors.Join(errs...)
}
