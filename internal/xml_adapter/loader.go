// Package xml_adapter is the XML-specific implementation of the
// config.Loader interface. It understands the wall description schema used
// by operator-authored documents such as configs/vvand20.xml.
//
// Unknown elements and attributes are ignored so that richer documents from
// newer tooling keep loading on older binaries.
package xml_adapter

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"github.com/vk/wallgridgo/internal/config"
	"github.com/vk/wallgridgo/internal/ctxlog"
)

// Loader is the XML-specific implementation of the config.Loader interface.
type Loader struct {
	opts config.ValidateOptions
}

// NewLoader creates a new XML layout loader. Validation strictness is fixed
// at construction because the layout is loaded exactly once.
func NewLoader(opts config.ValidateOptions) *Loader {
	return &Loader{opts: opts}
}

// xmlTiledDisplay mirrors the document structure. Field values are child
// elements, not attributes; anything the schema does not name is dropped by
// the decoder, which is exactly the forward-compatibility we want.
type xmlTiledDisplay struct {
	XMLName  xml.Name     `xml:"TiledDisplay"`
	Name     string       `xml:"Name"`
	Width    int          `xml:"Width"`
	Height   int          `xml:"Height"`
	Bezel    int          `xml:"Bezel"`
	Machines []xmlMachine `xml:"Machines>Machine"`
}

type xmlMachine struct {
	Identity string    `xml:"Identity"`
	Tiles    []xmlTile `xml:"Tiles>Tile"`
}

type xmlTile struct {
	Name          string `xml:"Name"`
	LeftOffset    int    `xml:"LeftOffset"`
	TopOffset     int    `xml:"TopOffset"`
	WindowWidth   int    `xml:"WindowWidth"`
	WindowHeight  int    `xml:"WindowHeight"`
	WindowLeft    int    `xml:"WindowLeft"`
	WindowTop     int    `xml:"WindowTop"`
	StereoChannel string `xml:"StereoChannel"`
	Monitor       int    `xml:"Monitor"`
}

// Load reads, decodes, translates, and validates a wall layout document.
func (l *Loader) Load(ctx context.Context, path string) (*config.Layout, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("XML loader started.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &config.ConfigError{Kind: config.KindNotFound, Path: path, Err: err}
		}
		return nil, &config.ConfigError{Kind: config.KindNotFound, Path: path, Detail: "unreadable", Err: err}
	}

	var doc xmlTiledDisplay
	if err := xml.Unmarshal(data, &doc); err != nil {
		ce := &config.ConfigError{Kind: config.KindMalformed, Path: path, Err: err}
		var syn *xml.SyntaxError
		if errors.As(err, &syn) {
			ce.Line = syn.Line
		}
		return nil, ce
	}

	layout := translate(&doc)
	if err := layout.Validate(l.opts); err != nil {
		var ce *config.ConfigError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}

	logger.Debug("Layout loaded and validated.",
		"name", layout.Canvas.Name,
		"canvas", fmt.Sprintf("%dx%d", layout.Canvas.Width, layout.Canvas.Height),
		"machines", len(layout.Machines))
	return layout, nil
}

// translate converts the decoded document into the format-agnostic model.
func translate(doc *xmlTiledDisplay) *config.Layout {
	layout := &config.Layout{
		Canvas: config.Canvas{
			Name:   doc.Name,
			Width:  doc.Width,
			Height: doc.Height,
			Bezel:  doc.Bezel,
		},
	}
	for _, m := range doc.Machines {
		machine := config.Machine{Identity: m.Identity}
		for _, t := range m.Tiles {
			machine.Tiles = append(machine.Tiles, config.Tile{
				Name:          t.Name,
				Offset:        config.Offset{X: t.LeftOffset, Y: t.TopOffset},
				Size:          config.Size{W: t.WindowWidth, H: t.WindowHeight},
				Window:        config.Window{Left: t.WindowLeft, Top: t.WindowTop},
				StereoChannel: t.StereoChannel,
				Monitor:       t.Monitor,
			})
		}
		layout.Machines = append(layout.Machines, machine)
	}
	return layout
}
