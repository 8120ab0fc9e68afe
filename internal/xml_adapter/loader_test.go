package xml_adapter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/wallgridgo/internal/config"
)

func writeLayout(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wall.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const duoXML = `<TiledDisplay>
  <Name>duo</Name>
  <Width>1920</Width>
  <Height>1080</Height>
  <Machines>
    <Machine>
      <Identity>left</Identity>
      <Tiles>
        <Tile>
          <Name>duo-0</Name>
          <LeftOffset>0</LeftOffset>
          <TopOffset>0</TopOffset>
          <WindowWidth>960</WindowWidth>
          <WindowHeight>1080</WindowHeight>
          <StereoChannel>Mono</StereoChannel>
        </Tile>
      </Tiles>
    </Machine>
    <Machine>
      <Identity>right</Identity>
      <Tiles>
        <Tile>
          <Name>duo-1</Name>
          <LeftOffset>960</LeftOffset>
          <TopOffset>0</TopOffset>
          <WindowWidth>960</WindowWidth>
          <WindowHeight>1080</WindowHeight>
          <WindowLeft>120</WindowLeft>
          <WindowTop>40</WindowTop>
        </Tile>
      </Tiles>
    </Machine>
  </Machines>
</TiledDisplay>`

func TestLoad_Duo(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeLayout(t, duoXML)
	loader := NewLoader(config.ValidateOptions{})

	// --- Act ---
	layout, err := loader.Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)

	expected := &config.Layout{
		Canvas: config.Canvas{Name: "duo", Width: 1920, Height: 1080},
		Machines: []config.Machine{
			{Identity: "left", Tiles: []config.Tile{{
				Name:          "duo-0",
				Size:          config.Size{W: 960, H: 1080},
				StereoChannel: "Mono",
			}}},
			{Identity: "right", Tiles: []config.Tile{{
				Name:   "duo-1",
				Offset: config.Offset{X: 960},
				Size:   config.Size{W: 960, H: 1080},
				Window: config.Window{Left: 120, Top: 40},
			}}},
		},
	}
	if diff := cmp.Diff(expected, layout); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Idempotent(t *testing.T) {
	t.Parallel()

	path := writeLayout(t, duoXML)
	loader := NewLoader(config.ValidateOptions{})

	first, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated loads differ (-first +second):\n%s", diff)
	}
}

func TestLoad_UnknownElementsIgnored(t *testing.T) {
	t.Parallel()

	// Extra elements from newer tooling must not break loading.
	xml := `<TiledDisplay>
  <Name>duo</Name>
  <Width>1920</Width>
  <Height>1080</Height>
  <Refresh>60</Refresh>
  <Machines>
    <Machine>
      <Identity>solo</Identity>
      <Gpu>fast</Gpu>
      <Tiles>
        <Tile>
          <Name>t0</Name>
          <LeftOffset>0</LeftOffset>
          <TopOffset>0</TopOffset>
          <WindowWidth>1920</WindowWidth>
          <WindowHeight>1080</WindowHeight>
          <ColorProfile>srgb</ColorProfile>
        </Tile>
      </Tiles>
    </Machine>
  </Machines>
</TiledDisplay>`
	loader := NewLoader(config.ValidateOptions{})

	layout, err := loader.Load(context.Background(), writeLayout(t, xml))
	require.NoError(t, err)
	require.Equal(t, []string{"solo"}, layout.Identities())
}

func TestLoad_NotFound(t *testing.T) {
	t.Parallel()

	loader := NewLoader(config.ValidateOptions{})

	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "nope.xml"))

	var ce *config.ConfigError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, config.KindNotFound, ce.Kind)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Malformed_ReportsLine(t *testing.T) {
	t.Parallel()

	xml := "<TiledDisplay>\n  <Name>broken</Name>\n  <Machines>\n"
	loader := NewLoader(config.ValidateOptions{})

	_, err := loader.Load(context.Background(), writeLayout(t, xml))

	var ce *config.ConfigError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, config.KindMalformed, ce.Kind)
	require.Greater(t, ce.Line, 0, "syntax errors should carry a line number")
}

func TestLoad_DuplicateIdentity(t *testing.T) {
	t.Parallel()

	xml := `<TiledDisplay>
  <Name>dup</Name>
  <Width>100</Width>
  <Height>100</Height>
  <Machines>
    <Machine><Identity>a</Identity></Machine>
    <Machine><Identity>a</Identity></Machine>
  </Machines>
</TiledDisplay>`
	path := writeLayout(t, xml)
	loader := NewLoader(config.ValidateOptions{})

	_, err := loader.Load(context.Background(), path)

	var ce *config.ConfigError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, config.KindInvalid, ce.Kind)
	require.Equal(t, "a", ce.Identity)
	require.Equal(t, path, ce.Path, "validation errors should carry the document path")
}

func TestLoad_VVand20(t *testing.T) {
	t.Parallel()

	loader := NewLoader(config.ValidateOptions{RejectOverlap: true})

	layout, err := loader.Load(context.Background(), filepath.Join("..", "..", "configs", "vvand20.xml"))
	require.NoError(t, err)

	require.Equal(t, "VVand", layout.Canvas.Name)
	require.Equal(t, 10800, layout.Canvas.Width)
	require.Equal(t, 4096, layout.Canvas.Height)

	ids := layout.Identities()
	require.Len(t, ids, 20)
	require.Equal(t, "keshiki01", ids[0])
	require.Equal(t, "keshiki20", ids[19])
}
