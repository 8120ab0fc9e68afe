// Package group establishes which processes participate in frame
// synchronization and in what order.
//
// # Determinism
//
// Rank assignment must be reproducible without coordination: two processes
// given the same layout and the same live-identity set compute identical
// ranks, which is what makes rank-based collective calls safe without an
// extra negotiation round. Configured members take ranks in layout
// declaration order; leniently admitted extras follow in lexicographic
// order. Nothing depends on the order the transport reported the live set.
package group

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/wallgridgo/internal/config"
	"github.com/vk/wallgridgo/internal/identity"
)

// Member is one participant of the synchronization group.
type Member struct {
	Identity identity.Identity
	Rank     int
	// Configured is false for participants admitted leniently without a
	// layout entry. They hold a rank but never a tile.
	Configured bool
}

// Membership is the immutable rank table of one session.
type Membership struct {
	members []Member
	ranks   map[identity.Identity]int
}

// Options controls membership strictness.
type Options struct {
	// Strict rejects live participants that have no layout entry. Lenient
	// mode admits them rank-only.
	Strict bool
}

// ErrorKind classifies a membership failure.
type ErrorKind int

const (
	// Incomplete means a configured identity never joined within the
	// startup window.
	Incomplete ErrorKind = iota
	// Unexpected means a live participant has no layout entry and strict
	// mode is enabled.
	Unexpected
)

func (k ErrorKind) String() string {
	switch k {
	case Incomplete:
		return "incomplete"
	case Unexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// MembershipError reports which identities broke group establishment.
type MembershipError struct {
	Kind       ErrorKind
	Identities []string
}

func (e *MembershipError) Error() string {
	return fmt.Sprintf("%s membership: %s", e.Kind, strings.Join(e.Identities, ", "))
}

// Build assigns ranks to the intersection of the layout's declared
// identities and the live set reported by the communication runtime. Every
// configured identity is required: a wall with a missing tile member has no
// correct degraded rendering, so absence is fatal, not a smaller group.
func Build(layout *config.Layout, live []identity.Identity, opts Options) (*Membership, error) {
	liveSet := make(map[identity.Identity]bool, len(live))
	for _, id := range live {
		liveSet[id] = true
	}

	var missing []string
	m := &Membership{ranks: make(map[identity.Identity]int)}
	for _, declared := range layout.Identities() {
		id := identity.Identity(declared)
		if !liveSet[id] {
			missing = append(missing, declared)
			continue
		}
		m.add(id, true)
		delete(liveSet, id)
	}
	if len(missing) > 0 {
		return nil, &MembershipError{Kind: Incomplete, Identities: missing}
	}

	if len(liveSet) > 0 {
		extras := make([]string, 0, len(liveSet))
		for id := range liveSet {
			extras = append(extras, string(id))
		}
		sort.Strings(extras)
		if opts.Strict {
			return nil, &MembershipError{Kind: Unexpected, Identities: extras}
		}
		for _, id := range extras {
			m.add(identity.Identity(id), false)
		}
	}

	return m, nil
}

// Solo is the trivial membership of a session without a communication
// runtime: one member, rank 0.
func Solo(id identity.Identity) *Membership {
	m := &Membership{ranks: make(map[identity.Identity]int, 1)}
	m.add(id, true)
	return m
}

func (m *Membership) add(id identity.Identity, configured bool) {
	rank := len(m.members)
	m.members = append(m.members, Member{Identity: id, Rank: rank, Configured: configured})
	m.ranks[id] = rank
}

// Members returns the rank table in rank order. The slice is a copy.
func (m *Membership) Members() []Member {
	out := make([]Member, len(m.members))
	copy(out, m.members)
	return out
}

// Rank returns the rank assigned to an identity.
func (m *Membership) Rank(id identity.Identity) (int, bool) {
	rank, ok := m.ranks[id]
	return rank, ok
}

// Size returns the number of participants in the group.
func (m *Membership) Size() int {
	return len(m.members)
}
