// Package identity answers "who am I" for a wall participant: an explicit
// override when one was given, the local host name otherwise. The host-name
// query is the only environment dependency in the whole startup pipeline and
// it is injected here so that resolution stays testable.
package identity

import (
	"os"

	"github.com/vk/wallgridgo/internal/config"
)

// Identity is the string key a process uses to find its tile assignment.
type Identity string

// Unknown is the sentinel used when the host-name query fails. Resolution
// itself never fails the session; the subsequent tile lookup simply finds
// nothing, which is a visible, diagnosable condition.
const Unknown Identity = "unknown"

func (id Identity) String() string {
	return string(id)
}

// Resolver resolves the calling process's identity.
type Resolver struct {
	hostname func() (string, error)
}

// NewResolver creates a resolver backed by the operating system's host name.
func NewResolver() *Resolver {
	return &Resolver{hostname: os.Hostname}
}

// NewResolverWithHostname creates a resolver with an injected host-name
// query, for tests and embedders with their own notion of identity.
func NewResolverWithHostname(fn func() (string, error)) *Resolver {
	return &Resolver{hostname: fn}
}

// Resolve returns the explicit identity verbatim when one is provided, and
// the local host name otherwise. A failing host-name query yields Unknown.
func (r *Resolver) Resolve(explicit string) Identity {
	if explicit != "" {
		return Identity(explicit)
	}
	host, err := r.hostname()
	if err != nil || host == "" {
		return Unknown
	}
	return Identity(host)
}

// FindMachine looks up the machine declared for the given identity. A nil
// result means no tile is assigned: a legitimate headless participant, not
// an error.
func FindMachine(layout *config.Layout, id Identity) *config.Machine {
	return layout.Machine(string(id))
}

// TileForMonitor picks the tile bound to the given local monitor index.
// Machines driving a single output declare no index and match monitor 0.
func TileForMonitor(m *config.Machine, monitor int) *config.Tile {
	if m == nil {
		return nil
	}
	for i := range m.Tiles {
		if m.Tiles[i].Monitor == monitor {
			return &m.Tiles[i]
		}
	}
	return nil
}
