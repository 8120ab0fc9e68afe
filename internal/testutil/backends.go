package testutil

import (
	"context"

	"github.com/vk/wallgridgo/internal/app"
	"github.com/vk/wallgridgo/internal/comm"
	"github.com/vk/wallgridgo/internal/registry"
)

// FakeBackend returns an injectable backend that hands out the trivial
// single-process runtime under the given registry name.
func FakeBackend(name string) app.Backend {
	return app.Backend{
		Name: name,
		Factory: func(ctx context.Context, env registry.Env) (comm.Runtime, error) {
			return comm.Single(env.Identity), nil
		},
	}
}
