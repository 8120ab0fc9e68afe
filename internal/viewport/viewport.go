// Package viewport converts a resolved tile assignment into the concrete
// render parameters a host engine needs: the pixel rectangle of this
// process's region and its normalized sub-rectangle of the whole canvas.
// Derivation is pure and needs neither a communication runtime nor a
// rendering engine present.
package viewport

import (
	"fmt"

	"github.com/vk/wallgridgo/internal/config"
)

// Rect is a pixel rectangle within the canvas.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// NRect is a rectangle normalized to the canvas, with every component in
// [0,1]. Suitable for configuring a camera or render-target sub-rectangle.
type NRect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Viewport is the per-process render parameterization.
type Viewport struct {
	// Headless marks a participant with no tile: it joins the frame group
	// and reads canvas metadata but renders nothing.
	Headless bool
	Pixel    Rect
	Norm     NRect
	// Window is where the output window goes on the local desktop.
	Window config.Window
	// Monitor is the local display index the tile is bound to.
	Monitor int
}

func (v Viewport) String() string {
	if v.Headless {
		return "headless"
	}
	return fmt.Sprintf("%dx%d+%d+%d (norm %.3f,%.3f %.3fx%.3f)",
		v.Pixel.W, v.Pixel.H, v.Pixel.X, v.Pixel.Y, v.Norm.X, v.Norm.Y, v.Norm.W, v.Norm.H)
}

// Derive computes the viewport for a tile within a canvas. A nil tile yields
// the headless viewport.
func Derive(canvas config.Canvas, tile *config.Tile) Viewport {
	if tile == nil {
		return Viewport{Headless: true}
	}
	w := float64(canvas.Width)
	h := float64(canvas.Height)
	return Viewport{
		Pixel: Rect{
			X: tile.Offset.X,
			Y: tile.Offset.Y,
			W: tile.Size.W,
			H: tile.Size.H,
		},
		Norm: NRect{
			X: float64(tile.Offset.X) / w,
			Y: float64(tile.Offset.Y) / h,
			W: float64(tile.Size.W) / w,
			H: float64(tile.Size.H) / h,
		},
		Window:  tile.Window,
		Monitor: tile.Monitor,
	}
}

// FullCanvas is the viewport of a process rendering the whole canvas alone,
// the single-process degradation when no communication runtime is present.
func FullCanvas(canvas config.Canvas) Viewport {
	return Viewport{
		Pixel: Rect{W: canvas.Width, H: canvas.Height},
		Norm:  NRect{W: 1, H: 1},
	}
}
