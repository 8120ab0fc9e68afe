// Package hcl_adapter loads the optional session settings document
// (wallgrid.hcl). The wall layout itself is XML (see xml_adapter); the
// settings document carries operator tuning that is about this run of the
// session rather than about the physical wall: synchronization backend,
// timeouts, strictness modes, conductor endpoints.
//
// Unlike the layout, settings are not forward-open: an unknown attribute is
// rejected with a diagnostic, because a typo in a timeout name silently
// falling back to a default is exactly the kind of failure a 20-machine wall
// makes expensive to debug.
package hcl_adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/wallgridgo/internal/ctxlog"
)

// Settings is the decoded, defaulted session tuning.
type Settings struct {
	// Backend selects the synchronization backend by registry name.
	// "auto" picks socketio when a conductor address is configured and
	// falls back to single-process operation otherwise.
	Backend string
	// BarrierTimeout bounds every per-frame barrier wait.
	BarrierTimeout time.Duration
	// JoinTimeout bounds the startup identity-exchange window.
	JoinTimeout time.Duration
	// StrictMembership rejects live participants that have no layout entry.
	// When false such participants are admitted rank-only, tile-less.
	StrictMembership bool
	// StrictOverlap rejects layouts with intersecting tile rectangles.
	StrictOverlap bool
	// ShareClock broadcasts rank 0's clock after every barrier so that
	// time-dependent rendering uses one authoritative clock.
	ShareClock bool
	// ConductorAddr is the endpoint every participant dials.
	ConductorAddr string
	// ConductorListen, when non-empty, makes this process host the
	// conductor on the given address.
	ConductorListen string
	// HealthcheckPort serves the session state over HTTP. 0 is disabled.
	HealthcheckPort int
}

// Defaults returns the settings used when no document (or an attribute) is
// present. The barrier bound is deliberately generous compared to a frame
// interval: it exists to detect dead peers, not slow ones.
func Defaults() Settings {
	return Settings{
		Backend:        "auto",
		BarrierTimeout: 5 * time.Second,
		JoinTimeout:    30 * time.Second,
		ShareClock:     true,
	}
}

// fileRoot decodes the top-level structure of a settings document.
type fileRoot struct {
	Session *sessionBlock `hcl:"session,block"`
}

type sessionBlock struct {
	Backend          *string        `hcl:"backend,optional"`
	BarrierTimeout   hcl.Expression `hcl:"barrier_timeout,optional"`
	JoinTimeout      hcl.Expression `hcl:"join_timeout,optional"`
	StrictMembership *bool          `hcl:"strict_membership,optional"`
	StrictOverlap    *bool          `hcl:"strict_overlap,optional"`
	ShareClock       *bool          `hcl:"share_clock,optional"`
	HealthcheckPort  *int           `hcl:"healthcheck_port,optional"`
	Conductor        *conductorBlock `hcl:"conductor,block"`
}

type conductorBlock struct {
	Addr   string  `hcl:"addr"`
	Listen *string `hcl:"listen,optional"`
}

// Loader is the HCL-specific settings loader.
type Loader struct{}

// NewLoader creates a new HCL settings loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses a settings document and merges it over Defaults. An empty
// path returns the defaults unchanged, since settings are optional.
func (l *Loader) Load(ctx context.Context, path string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	s := Defaults()
	if path == "" {
		logger.Debug("No settings document, using defaults.")
		return &s, nil
	}
	logger.Debug("HCL settings loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}
	if root.Session == nil {
		logger.Debug("Settings document has no session block, using defaults.")
		return &s, nil
	}

	b := root.Session
	if b.Backend != nil {
		s.Backend = *b.Backend
	}
	var err error
	if s.BarrierTimeout, err = durationFromExpr(b.BarrierTimeout, "barrier_timeout", s.BarrierTimeout); err != nil {
		return nil, err
	}
	if s.JoinTimeout, err = durationFromExpr(b.JoinTimeout, "join_timeout", s.JoinTimeout); err != nil {
		return nil, err
	}
	if b.StrictMembership != nil {
		s.StrictMembership = *b.StrictMembership
	}
	if b.StrictOverlap != nil {
		s.StrictOverlap = *b.StrictOverlap
	}
	if b.ShareClock != nil {
		s.ShareClock = *b.ShareClock
	}
	if b.HealthcheckPort != nil {
		s.HealthcheckPort = *b.HealthcheckPort
	}
	if b.Conductor != nil {
		s.ConductorAddr = b.Conductor.Addr
		if b.Conductor.Listen != nil {
			s.ConductorListen = *b.Conductor.Listen
		}
	}

	logger.Debug("Settings loaded.", "backend", s.Backend,
		"barrier_timeout", s.BarrierTimeout, "join_timeout", s.JoinTimeout)
	return &s, nil
}
