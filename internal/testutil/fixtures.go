package testutil

import "fmt"

// DuoLayoutXML describes a 1920x1080 canvas split into two side-by-side tiles
// driven by the machines "left" and "right". It is the smallest layout that
// still exercises multi-machine rank assignment and viewport derivation.
const DuoLayoutXML = `<TiledDisplay>
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
        </Tile>
      </Tiles>
    </Machine>
  </Machines>
</TiledDisplay>
`

// SettingsHCL renders a minimal session settings file from the given body,
// e.g. SettingsHCL(`backend = "single"`).
func SettingsHCL(body string) string {
	return fmt.Sprintf("session {\n%s\n}\n", body)
}
