package viewport

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/wallgridgo/internal/config"
)

func TestDerive_HalfCanvasSplit(t *testing.T) {
	t.Parallel()

	// Two side-by-side tiles on a 200x100 canvas: the left one maps to
	// normalized [0,0]..[0.5,1], the right one to [0.5,0]..[1,1].
	canvas := config.Canvas{Width: 200, Height: 100}
	left := &config.Tile{Name: "A", Offset: config.Offset{X: 0, Y: 0}, Size: config.Size{W: 100, H: 100}}
	right := &config.Tile{Name: "B", Offset: config.Offset{X: 100, Y: 0}, Size: config.Size{W: 100, H: 100}}

	vpA := Derive(canvas, left)
	vpB := Derive(canvas, right)

	if diff := cmp.Diff(NRect{X: 0, Y: 0, W: 0.5, H: 1}, vpA.Norm); diff != "" {
		t.Errorf("left norm rect mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(NRect{X: 0.5, Y: 0, W: 0.5, H: 1}, vpB.Norm); diff != "" {
		t.Errorf("right norm rect mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, Rect{X: 100, Y: 0, W: 100, H: 100}, vpB.Pixel)
	require.False(t, vpA.Headless)
}

func TestDerive_CarriesWindowAndMonitor(t *testing.T) {
	t.Parallel()

	canvas := config.Canvas{Width: 1920, Height: 1080}
	tile := &config.Tile{
		Name:    "t1",
		Size:    config.Size{W: 1920, H: 1080},
		Window:  config.Window{Left: 40, Top: 20},
		Monitor: 1,
	}

	vp := Derive(canvas, tile)

	require.Equal(t, config.Window{Left: 40, Top: 20}, vp.Window)
	require.Equal(t, 1, vp.Monitor)
}

func TestDerive_NilTileIsHeadless(t *testing.T) {
	t.Parallel()

	vp := Derive(config.Canvas{Width: 100, Height: 100}, nil)

	require.True(t, vp.Headless)
	require.Equal(t, "headless", vp.String())
}

func TestFullCanvas(t *testing.T) {
	t.Parallel()

	vp := FullCanvas(config.Canvas{Width: 1920, Height: 1080})

	require.Equal(t, Rect{W: 1920, H: 1080}, vp.Pixel)
	require.Equal(t, NRect{W: 1, H: 1}, vp.Norm)
	require.False(t, vp.Headless)
}
