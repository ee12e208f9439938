// Package registry holds the set of SDMX sources available to a query
// session. Construction failures are contained per source so one broken
// provider never takes down the rest.
package registry

import (
	"fmt"
	"sync"

	"github.com/leourb/sdmx-query-tool/internal/config"
	"github.com/leourb/sdmx-query-tool/internal/httpclient"
	"github.com/leourb/sdmx-query-tool/internal/logger"
	"github.com/leourb/sdmx-query-tool/internal/sources"
)

// Factory creates the adapter for one source.
type Factory func() (sources.Adapter, error)

// SourceUnavailableError is returned when a registered source failed to
// construct and a query names it anyway.
type SourceUnavailableError struct {
	ID  string
	Err error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s is unavailable: %v", e.ID, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

type entry struct {
	adapter sources.Adapter
	err     error
}

// Registry maps source identifiers to adapters, preserving registration
// order for listing.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Default creates a registry with every built-in source registered.
func Default(client httpclient.Client) *Registry {
	r := New()
	for _, id := range sources.BuiltinSources() {
		id := id
		r.Register(id, func() (sources.Adapter, error) {
			return sources.NewAdapter(id, client)
		})
	}
	return r
}

// Register runs the factory and records the outcome under the identifier.
// A failing or panicking factory marks the source unavailable without
// affecting other entries; registering an identifier again replaces the
// previous entry.
func (r *Registry) Register(id string, factory Factory) {
	adapter, err := runFactory(id, factory)
	if err != nil {
		logger.Warnf("source %s failed to initialize: %v", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[id]; !exists {
		r.order = append(r.order, id)
	}
	r.entries[id] = entry{adapter: adapter, err: err}
}

func runFactory(id string, factory Factory) (adapter sources.Adapter, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			adapter = nil
			err = fmt.Errorf("source %s construction panicked: %v", id, rec)
		}
	}()
	return factory()
}

// AddConfigured registers the sources defined in a configuration file.
func (r *Registry) AddConfigured(cfg *config.Config, client httpclient.Client) {
	for i := range cfg.Sources {
		src := cfg.Sources[i]
		r.Register(src.ID, func() (sources.Adapter, error) {
			return sources.NewConfigured(src, client)
		})
	}
}

// List returns the registered identifiers in registration order, including
// sources that failed to construct.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve returns the adapter for an identifier. Unknown identifiers and
// sources whose construction failed both surface as SourceUnavailableError.
func (r *Registry) Resolve(id string) (sources.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, &SourceUnavailableError{ID: id, Err: fmt.Errorf("not registered")}
	}
	if e.err != nil {
		return nil, &SourceUnavailableError{ID: id, Err: e.err}
	}
	return e.adapter, nil
}
