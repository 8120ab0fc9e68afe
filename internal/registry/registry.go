// Package registry holds the synchronization backends available to a
// session, keyed by the name operators use in settings ("single",
// "socketio"). Backends are registered at startup by the app; duplicate
// registration is a programmer error and panics.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vk/wallgridgo/internal/comm"
)

// Env is everything a backend factory may need to construct a runtime.
type Env struct {
	// Identity of this process.
	Identity string
	// Expected is the set of identities declared in the layout, in
	// declaration order.
	Expected []string
	// ConductorAddr is the endpoint participants dial, when configured.
	ConductorAddr string
	// ConductorListen makes this process host the conductor when set.
	ConductorListen string
	// JoinTimeout bounds the startup identity exchange.
	JoinTimeout time.Duration
}

// Factory constructs a communication runtime for one session.
type Factory func(ctx context.Context, env Env) (comm.Runtime, error)

// Registry maps backend names to factories for a single app instance.
type Registry struct {
	backends map[string]Factory
}

// New creates an empty backend registry.
func New() *Registry {
	return &Registry{backends: make(map[string]Factory)}
}

// RegisterBackend registers a factory under a name.
func (r *Registry) RegisterBackend(name string, factory Factory) {
	if _, exists := r.backends[name]; exists {
		panic(fmt.Sprintf("sync backend with name '%s' already registered", name))
	}
	slog.Debug("Registering sync backend.", "name", name)
	r.backends[name] = factory
}

// Backend looks a factory up by name.
func (r *Registry) Backend(name string) (Factory, bool) {
	f, ok := r.backends[name]
	return f, ok
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
