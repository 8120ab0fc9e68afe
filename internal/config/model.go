package config

import "fmt"

// Canvas is the logical whole-display surface that all tiles compose.
type Canvas struct {
	Name   string
	Width  int
	Height int
	// Bezel is an optional physical gap compensation in pixels applied
	// between adjacent tiles. Zero means no compensation.
	Bezel int
}

// Offset is a tile's position within the canvas, in pixels.
type Offset struct {
	X int
	Y int
}

// Size is a tile's dimensions, in pixels.
type Size struct {
	W int
	H int
}

// Window is the placement of the tile's output window on the machine's own
// desktop. It has no effect on canvas geometry.
type Window struct {
	Left int
	Top  int
}

// Tile is one rectangular region of the canvas rendered by one process.
type Tile struct {
	Name          string
	Offset        Offset
	Size          Size
	Window        Window
	StereoChannel string
	// Monitor is the local display index for machines driving more than
	// one output. Defaults to 0.
	Monitor int
}

// Machine binds an identity (usually a host name) to the tiles it renders.
// A machine with no tiles is a legitimate headless participant.
type Machine struct {
	Identity string
	Tiles    []Tile
}

// Layout is the complete, immutable description of a tiled wall: the canvas
// plus every participating machine in declaration order. Declaration order
// is semantically meaningful: it determines rank assignment.
type Layout struct {
	Canvas   Canvas
	Machines []Machine
}

// Identities returns every machine identity in declaration order.
func (l *Layout) Identities() []string {
	ids := make([]string, 0, len(l.Machines))
	for _, m := range l.Machines {
		ids = append(ids, m.Identity)
	}
	return ids
}

// Machine returns the machine declared for the given identity, or nil when
// the identity is not part of the layout. Absence is not an error: a process
// without a tile still participates as a headless group member.
func (l *Layout) Machine(identity string) *Machine {
	for i := range l.Machines {
		if l.Machines[i].Identity == identity {
			return &l.Machines[i]
		}
	}
	return nil
}

// ValidateOptions controls the strictness of Layout validation.
type ValidateOptions struct {
	// RejectOverlap fails validation when any two tile rectangles
	// intersect. Off by default; see the package documentation.
	RejectOverlap bool
}

// Validate checks the semantic integrity of the layout and returns a
// *ConfigError of kind KindInvalid describing the first violation found.
func (l *Layout) Validate(opts ValidateOptions) error {
	if l.Canvas.Width <= 0 || l.Canvas.Height <= 0 {
		return &ConfigError{
			Kind:   KindInvalid,
			Detail: fmt.Sprintf("canvas dimensions must be positive, got %dx%d", l.Canvas.Width, l.Canvas.Height),
		}
	}

	seen := make(map[string]bool, len(l.Machines))
	for _, m := range l.Machines {
		if m.Identity == "" {
			return &ConfigError{Kind: KindInvalid, Detail: "machine with empty identity"}
		}
		if seen[m.Identity] {
			return &ConfigError{
				Kind:     KindInvalid,
				Identity: m.Identity,
				Detail:   fmt.Sprintf("identity %q declared twice", m.Identity),
			}
		}
		seen[m.Identity] = true

		tileNames := make(map[string]bool, len(m.Tiles))
		for _, t := range m.Tiles {
			if t.Name != "" && tileNames[t.Name] {
				return &ConfigError{
					Kind:     KindInvalid,
					Identity: m.Identity,
					Detail:   fmt.Sprintf("tile %q declared twice on machine %q", t.Name, m.Identity),
				}
			}
			tileNames[t.Name] = true

			if t.Size.W <= 0 || t.Size.H <= 0 {
				return &ConfigError{
					Kind:     KindInvalid,
					Identity: m.Identity,
					Detail:   fmt.Sprintf("tile %q on machine %q has non-positive size %dx%d", t.Name, m.Identity, t.Size.W, t.Size.H),
				}
			}
			if t.Offset.X < 0 || t.Offset.Y < 0 ||
				t.Offset.X+t.Size.W > l.Canvas.Width ||
				t.Offset.Y+t.Size.H > l.Canvas.Height {
				return &ConfigError{
					Kind:     KindInvalid,
					Identity: m.Identity,
					Detail: fmt.Sprintf("tile %q on machine %q (offset %d,%d size %dx%d) exceeds canvas bounds %dx%d",
						t.Name, m.Identity, t.Offset.X, t.Offset.Y, t.Size.W, t.Size.H, l.Canvas.Width, l.Canvas.Height),
				}
			}
		}
	}

	if opts.RejectOverlap {
		if err := l.checkOverlap(); err != nil {
			return err
		}
	}
	return nil
}

// checkOverlap pairwise-compares every tile rectangle. Layouts are small,
// human-authored documents, so the quadratic scan is fine.
func (l *Layout) checkOverlap() error {
	type placed struct {
		identity string
		tile     *Tile
	}
	var all []placed
	for i := range l.Machines {
		m := &l.Machines[i]
		for j := range m.Tiles {
			all = append(all, placed{identity: m.Identity, tile: &m.Tiles[j]})
		}
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i].tile, all[j].tile
			if a.Offset.X < b.Offset.X+b.Size.W && b.Offset.X < a.Offset.X+a.Size.W &&
				a.Offset.Y < b.Offset.Y+b.Size.H && b.Offset.Y < a.Offset.Y+a.Size.H {
				return &ConfigError{
					Kind:     KindInvalid,
					Identity: all[i].identity,
					Detail: fmt.Sprintf("tile %q on machine %q overlaps tile %q on machine %q",
						a.Name, all[i].identity, b.Name, all[j].identity),
				}
			}
		}
	}
	return nil
}
