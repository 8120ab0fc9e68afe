// Package comm defines the communication runtime capability the frame
// synchronizer consumes: rank, size, barrier, broadcast. Implementations
// live in their own packages (inmemorycomm, socketiocomm); this package also
// provides the single-process runtime used when no transport exists.
//
// The runtime handle is owned by whoever created it; the synchronizer only
// borrows it and never outlives it.
package comm

import (
	"context"
	"errors"
	"fmt"
)

// Runtime is the injected collective-communication capability.
type Runtime interface {
	// Rank is this process's dense 0-based index within the group.
	Rank() int
	// Size is the number of processes in the group.
	Size() int
	// Identities is the set of identities that completed the startup
	// handshake. Order is transport-defined; treat it as a set.
	Identities() []string
	// Barrier blocks until every group member has called Barrier for the
	// same round, the context expires (ErrBarrierTimeout), or a peer is
	// lost (ErrPeerLost).
	Barrier(ctx context.Context) error
	// Broadcast distributes root's payload to every member. Every member
	// calls it once per round; non-root callers pass nil and receive the
	// root's payload.
	Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error)
	// Close tears the runtime down. Peers blocked in Barrier observe
	// ErrPeerLost.
	Close(ctx context.Context) error
}

// ErrBarrierTimeout reports a barrier not satisfied within its bound.
var ErrBarrierTimeout = errors.New("barrier timed out")

// ErrPeerLost reports a group member lost mid-session.
var ErrPeerLost = errors.New("peer lost")

// single is the degenerate runtime of a session without any transport.
type single struct {
	id string
}

// Single returns the single-process runtime: rank 0, size 1, barriers
// return immediately. This is the documented graceful degradation, not an
// error condition.
func Single(id string) Runtime {
	return &single{id: id}
}

func (s *single) Rank() int            { return 0 }
func (s *single) Size() int            { return 1 }
func (s *single) Identities() []string { return []string{s.id} }

func (s *single) Barrier(ctx context.Context) error {
	return ctx.Err()
}

func (s *single) Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error) {
	if root != 0 {
		return nil, fmt.Errorf("broadcast root %d out of range for group of 1", root)
	}
	return payload, ctx.Err()
}

func (s *single) Close(ctx context.Context) error {
	return nil
}
