// Package session publishes the one-time result of startup resolution: who
// this process is, what it renders, and where it sits in the group. The Meta
// value is built once the group is established and treated as read-only by
// all subsequent per-frame host logic.
package session

import (
	"fmt"

	"github.com/vk/wallgridgo/internal/config"
	"github.com/vk/wallgridgo/internal/identity"
	"github.com/vk/wallgridgo/internal/viewport"
)

// Meta is the published session metadata. Fields are exported for the
// host's convenience but must not be mutated after construction;
// accessors hand out copies where aliasing would allow it.
type Meta struct {
	Canvas   config.Canvas
	Identity identity.Identity
	// Tiles are every tile assigned to this machine, empty for headless
	// participants.
	Tiles []config.Tile
	// Viewport is the render parameterization of the primary tile (the
	// one matching the selected local monitor index).
	Viewport viewport.Viewport
	Rank     int
	// GroupSize is the number of processes in the synchronization group.
	GroupSize int
	// Backend names the communication backend driving the session.
	Backend string
}

// Build resolves a machine assignment into session metadata. A nil machine
// produces a headless participant. A group of one renders the whole canvas
// alone, regardless of which tile the layout assigns: single-process
// operation is a degradation of the wall, not of the picture.
func Build(canvas config.Canvas, id identity.Identity, machine *config.Machine, monitor int, rank, size int, backend string) *Meta {
	vp := viewport.Derive(canvas, identity.TileForMonitor(machine, monitor))
	if size <= 1 {
		vp = viewport.FullCanvas(canvas)
	}
	meta := &Meta{
		Canvas:    canvas,
		Identity:  id,
		Viewport:  vp,
		Rank:      rank,
		GroupSize: size,
		Backend:   backend,
	}
	if machine != nil {
		meta.Tiles = append([]config.Tile(nil), machine.Tiles...)
	}
	return meta
}

func (m *Meta) String() string {
	return fmt.Sprintf("%s rank %d/%d on %q (%s): %s",
		m.Canvas.Name, m.Rank, m.GroupSize, m.Identity, m.Backend, m.Viewport)
}
