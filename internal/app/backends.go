package app

import (
	"context"

	"github.com/vk/wallgridgo/internal/comm"
	"github.com/vk/wallgridgo/internal/registry"
	"github.com/vk/wallgridgo/internal/socketiocomm"
)

// Backend pairs a registry name with a runtime factory.
type Backend struct {
	Name    string
	Factory registry.Factory
}

// coreBackends is the definitive list of synchronization backends compiled
// into the wallgridgo binary.
func coreBackends() []Backend {
	return []Backend{
		{
			Name: "single",
			Factory: func(ctx context.Context, env registry.Env) (comm.Runtime, error) {
				return comm.Single(env.Identity), nil
			},
		},
		{
			Name: "socketio",
			Factory: func(ctx context.Context, env registry.Env) (comm.Runtime, error) {
				return socketiocomm.Dial(ctx, socketiocomm.Options{
					Identity:    env.Identity,
					Addr:        env.ConductorAddr,
					Listen:      env.ConductorListen,
					Expected:    env.Expected,
					JoinTimeout: env.JoinTimeout,
				})
			},
		},
	}
}

// resolveBackendName applies the override chain: CLI flag, settings value,
// then auto-selection: socketio when a conductor address is configured,
// single-process otherwise.
func (a *App) resolveBackendName() string {
	name := a.settings.Backend
	if a.config.Backend != "" {
		name = a.config.Backend
	}
	if name == "auto" {
		if a.settings.ConductorAddr != "" {
			return "socketio"
		}
		return "single"
	}
	return name
}
