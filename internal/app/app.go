// Package app encapsulates the wall session's dependencies, configuration,
// and lifecycle: load the layout and settings, resolve this process's
// identity and viewport, pick a synchronization backend, and drive the
// frame loop.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vk/wallgridgo/internal/config"
	"github.com/vk/wallgridgo/internal/ctxlog"
	"github.com/vk/wallgridgo/internal/framesync"
	"github.com/vk/wallgridgo/internal/fsutil"
	"github.com/vk/wallgridgo/internal/hcl_adapter"
	"github.com/vk/wallgridgo/internal/identity"
	"github.com/vk/wallgridgo/internal/registry"
	"github.com/vk/wallgridgo/internal/session"
	"github.com/vk/wallgridgo/internal/xml_adapter"
)

// App is one wall participant: everything resolved at startup plus the
// running session state.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings *hcl_adapter.Settings
	layout   *config.Layout
	identity identity.Identity
	machine  *config.Machine
	registry *registry.Registry

	httpServer *http.Server

	mu   sync.Mutex
	sync *framesync.Synchronizer
	meta *session.Meta
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and backend
// registry. Configuration failures are fatal startup errors and panic; the
// CLI entrypoint recovers them into a clean exit.
func NewApp(outW io.Writer, cfg *Config, extra ...Backend) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	settingsPath := cfg.SettingsPath
	if settingsPath == "" {
		settingsPath = fsutil.DiscoverSettings(cfg.LayoutPath)
	}
	settings, err := hcl_adapter.NewLoader().Load(ctx, settingsPath)
	if err != nil {
		panic(fmt.Errorf("failed to load settings: %w", err))
	}
	if cfg.HealthcheckPort > 0 {
		settings.HealthcheckPort = cfg.HealthcheckPort
	}
	logger.Debug("Settings resolved.", "path", settingsPath, "backend", settings.Backend)

	loader := xml_adapter.NewLoader(config.ValidateOptions{RejectOverlap: settings.StrictOverlap})
	layout, err := loader.Load(ctx, cfg.LayoutPath)
	if err != nil {
		// A failure to load the layout is a fatal startup error.
		panic(fmt.Errorf("failed to load layout: %w", err))
	}

	id := identity.NewResolver().Resolve(cfg.Identity)
	machine := identity.FindMachine(layout, id)
	if machine == nil {
		logger.Warn("No tile assigned to this identity, joining headless.", "identity", id)
	}

	reg := registry.New()
	backends := coreBackends()
	backends = append(backends, extra...)
	for _, b := range backends {
		reg.RegisterBackend(b.Name, b.Factory)
	}
	logger.Debug("Sync backends registered.", "names", reg.Names())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		settings: settings,
		layout:   layout,
		identity: id,
		machine:  machine,
		registry: reg,
	}
}

// Registry returns the application's backend registry. This is primarily
// for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Layout returns the loaded wall layout.
func (a *App) Layout() *config.Layout {
	return a.layout
}

// SessionMeta returns a copy of the published session metadata, or nil
// before the group is established.
func (a *App) SessionMeta() *session.Meta {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.meta == nil {
		return nil
	}
	meta := *a.meta
	meta.Tiles = append([]config.Tile(nil), a.meta.Tiles...)
	return &meta
}

// State returns the synchronizer's lifecycle state.
func (a *App) State() framesync.State {
	a.mu.Lock()
	s := a.sync
	a.mu.Unlock()
	if s == nil {
		return framesync.Idle
	}
	return s.State()
}

func (a *App) setSession(s *framesync.Synchronizer, meta *session.Meta) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sync = s
	a.meta = meta
}
