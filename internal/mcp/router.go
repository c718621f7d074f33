package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

type source struct {
	dbType  string
	config  ConnectionConfig
	adapter Adapter
}

// Router owns the warehouse adapters, one per named source, and reconnects
// a source whose health check fails.
type Router struct {
	factories map[string]AdapterFactory
	sources   map[string]*source
	mu        sync.Mutex
}

// NewRouter creates a new adapter router
func NewRouter() *Router {
	return &Router{
		factories: make(map[string]AdapterFactory),
		sources:   make(map[string]*source),
	}
}

// RegisterAdapter registers an adapter factory for a database type
func (r *Router) RegisterAdapter(dbType string, factory AdapterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[dbType] = factory
}

// SupportedDatabases returns the sorted list of registered database types
func (r *Router) SupportedDatabases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]string, 0, len(r.factories))
	for dbType := range r.factories {
		types = append(types, dbType)
	}
	sort.Strings(types)
	return types
}

// AddSource declares a named source. The connection is opened lazily.
func (r *Router) AddSource(name, dbType string, config ConnectionConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[dbType]; !ok {
		return fmt.Errorf("unsupported database type: %s", dbType)
	}
	if old, ok := r.sources[name]; ok && old.adapter != nil {
		old.adapter.Close()
	}
	r.sources[name] = &source{dbType: dbType, config: config}
	return nil
}

// GetAdapter returns a healthy adapter for the named source, connecting if needed.
func (r *Router) GetAdapter(ctx context.Context, name string) (Adapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown source: %s", name)
	}

	if src.adapter != nil {
		if err := src.adapter.HealthCheck(ctx); err == nil {
			return src.adapter, nil
		}
		log.Warn().Str("source", name).Msg("warehouse connection unhealthy, reconnecting")
		src.adapter.Close()
		src.adapter = nil
	}

	adapter := r.factories[src.dbType]()
	if err := adapter.Connect(ctx, src.config); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	src.adapter = adapter
	return adapter, nil
}

// CloseAll closes every open adapter. Sources stay declared.
func (r *Router) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, src := range r.sources {
		if src.adapter == nil {
			continue
		}
		if err := src.adapter.Close(); err != nil {
			log.Warn().Err(err).Str("source", name).Msg("failed to close warehouse connection")
		}
		src.adapter = nil
	}
}

// OpenCount returns the number of sources with an open connection
func (r *Router) OpenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, src := range r.sources {
		if src.adapter != nil {
			n++
		}
	}
	return n
}
