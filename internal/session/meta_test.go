package session

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/wallgridgo/internal/config"
)

func TestBuild_TiledParticipant(t *testing.T) {
	t.Parallel()

	canvas := config.Canvas{Name: "duo", Width: 1920, Height: 1080}
	machine := &config.Machine{Identity: "right", Tiles: []config.Tile{{
		Name:   "duo-1",
		Offset: config.Offset{X: 960},
		Size:   config.Size{W: 960, H: 1080},
	}}}

	meta := Build(canvas, "right", machine, 0, 1, 2, "socketio")

	require.Equal(t, canvas, meta.Canvas)
	require.False(t, meta.Viewport.Headless)
	require.Equal(t, 960, meta.Viewport.Pixel.X)
	require.InDelta(t, 0.5, meta.Viewport.Norm.X, 1e-9)
	require.Len(t, meta.Tiles, 1)
	require.Equal(t, 1, meta.Rank)
	require.Equal(t, 2, meta.GroupSize)

	require.Contains(t, meta.String(), `rank 1/2 on "right"`)
	require.Contains(t, meta.String(), "socketio")
}

func TestBuild_Headless(t *testing.T) {
	t.Parallel()

	meta := Build(config.Canvas{Name: "duo", Width: 1920, Height: 1080}, "stranger", nil, 0, 2, 3, "single")

	require.True(t, meta.Viewport.Headless)
	require.Empty(t, meta.Tiles)
	require.Contains(t, meta.String(), "headless")
}

// TestBuild_SoloRendersFullCanvas covers the group-of-one degradation: the
// configured tile is ignored and the lone process renders the whole canvas.
func TestBuild_SoloRendersFullCanvas(t *testing.T) {
	t.Parallel()

	canvas := config.Canvas{Name: "duo", Width: 1920, Height: 1080}
	machine := &config.Machine{Identity: "left", Tiles: []config.Tile{{
		Name: "duo-0",
		Size: config.Size{W: 960, H: 1080},
	}}}

	meta := Build(canvas, "left", machine, 0, 0, 1, "single")

	require.False(t, meta.Viewport.Headless)
	require.Equal(t, 0, meta.Viewport.Pixel.X)
	require.Equal(t, 1920, meta.Viewport.Pixel.W)
	require.Equal(t, 1080, meta.Viewport.Pixel.H)
	require.Equal(t, 1.0, meta.Viewport.Norm.W)
	require.Equal(t, 1.0, meta.Viewport.Norm.H)
	// The assigned tiles are still published for the host's benefit.
	require.Len(t, meta.Tiles, 1)
}

func TestBuild_SoloHeadlessRendersFullCanvas(t *testing.T) {
	t.Parallel()

	meta := Build(config.Canvas{Width: 800, Height: 600}, "stranger", nil, 0, 0, 1, "single")

	require.False(t, meta.Viewport.Headless)
	require.Equal(t, 800, meta.Viewport.Pixel.W)
	require.Empty(t, meta.Tiles)
}

func TestBuild_MultiTileMachinePicksMonitor(t *testing.T) {
	t.Parallel()

	canvas := config.Canvas{Width: 200, Height: 100}
	machine := &config.Machine{Identity: "dual", Tiles: []config.Tile{
		{Name: "t0", Offset: config.Offset{X: 0}, Size: config.Size{W: 100, H: 100}, Monitor: 0},
		{Name: "t1", Offset: config.Offset{X: 100}, Size: config.Size{W: 100, H: 100}, Monitor: 1},
	}}

	meta := Build(canvas, "dual", machine, 1, 0, 2, "socketio")

	// Both tiles are published, but the viewport follows the chosen monitor.
	require.Len(t, meta.Tiles, 2)
	require.Equal(t, 100, meta.Viewport.Pixel.X)
	require.Equal(t, 1, meta.Viewport.Monitor)
}

func TestBuild_CopiesTiles(t *testing.T) {
	t.Parallel()

	machine := &config.Machine{Identity: "m", Tiles: []config.Tile{{Name: "t0", Size: config.Size{W: 1, H: 1}}}}
	meta := Build(config.Canvas{Width: 1, Height: 1}, "m", machine, 0, 0, 2, "socketio")

	machine.Tiles[0].Name = "tampered"
	require.Equal(t, "t0", meta.Tiles[0].Name)
}
