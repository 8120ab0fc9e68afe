package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vk/wallgridgo/internal/ctxlog"
	"github.com/vk/wallgridgo/internal/framesync"
	"github.com/vk/wallgridgo/internal/registry"
	"github.com/vk/wallgridgo/internal/session"
)

// framePacing is the demo's stand-in for real render/present work. A real
// host engine blocks on its own swap chain instead.
const framePacing = 16 * time.Millisecond

// Run executes the session: establish the group, publish the session
// metadata, then gate frames on the collective barrier until the configured
// frame count is reached or the context ends.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	backendName := a.resolveBackendName()
	factory, ok := a.registry.Backend(backendName)
	if !ok {
		return fmt.Errorf("unknown sync backend %q (registered: %s)",
			backendName, strings.Join(a.registry.Names(), ", "))
	}

	rt, err := factory(ctx, registry.Env{
		Identity:        string(a.identity),
		Expected:        a.layout.Identities(),
		ConductorAddr:   a.settings.ConductorAddr,
		ConductorListen: a.settings.ConductorListen,
		JoinTimeout:     a.settings.JoinTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to start %s backend: %w", backendName, err)
	}

	sync := framesync.New(rt, a.layout, framesync.Options{
		Identity:       a.identity,
		BarrierTimeout: a.settings.BarrierTimeout,
		ShareClock:     a.settings.ShareClock,
		Strict:         a.settings.StrictMembership,
	})
	defer sync.Close(context.Background())

	if a.settings.HealthcheckPort > 0 {
		a.healthCheckServer(ctx, a.settings.HealthcheckPort)
		defer a.closeHealthCheckServer(ctx)
	}

	if err := sync.Join(ctx); err != nil {
		return fmt.Errorf("failed to join session group: %w", err)
	}

	membership := sync.Membership()
	meta := session.Build(a.layout.Canvas, a.identity, a.machine, a.config.Monitor,
		rt.Rank(), membership.Size(), backendName)
	a.setSession(sync, meta)
	a.logger.Info("🧱 Session established.",
		"canvas", fmt.Sprintf("%dx%d", meta.Canvas.Width, meta.Canvas.Height),
		"identity", meta.Identity, "rank", meta.Rank, "size", meta.GroupSize,
		"viewport", meta.Viewport.String(), "backend", backendName)

	if err := a.frameLoop(ctx, sync); err != nil {
		return err
	}

	a.logger.Info("🏁 Session finished.", "frames", sync.Frame())
	return nil
}

// frameLoop is the demo host: one barrier-gated "render" per frame. A real
// engine calls StartFrame before presentation and FinishFrame after it from
// its own loop.
func (a *App) frameLoop(ctx context.Context, sync *framesync.Synchronizer) error {
	for frame := 0; a.config.Frames == 0 || frame < a.config.Frames; frame++ {
		select {
		case <-ctx.Done():
			a.logger.Info("Shutdown requested, leaving frame loop.")
			return nil
		default:
		}

		clock, err := sync.StartFrame(ctx)
		if err != nil {
			// Cancellation mid-barrier is an orderly shutdown, not a failure.
			if ctx.Err() != nil {
				a.logger.Info("Shutdown requested, leaving frame loop.")
				return nil
			}
			return fmt.Errorf("frame synchronization failed: %w", err)
		}

		a.present(clock)

		if err := sync.FinishFrame(); err != nil {
			return fmt.Errorf("failed to finish frame: %w", err)
		}
	}
	return nil
}

// present stands in for the host's draw/present step.
func (a *App) present(clock framesync.Clock) {
	if clock.Frame%60 == 0 {
		a.logger.Debug("Presenting frame.", "frame", clock.Frame, "clock_us", clock.UnixMicros)
	}
	time.Sleep(framePacing)
}
