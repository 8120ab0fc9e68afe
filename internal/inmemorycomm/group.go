// Package inmemorycomm provides an ephemeral, channel-backed implementation
// of the comm.Runtime interface for members living in one process.
//
// # Purpose
//
// Two consumers: tests that need a real multi-member group without sockets,
// and same-host sessions where several windows of one machine are driven by
// goroutines of a single process.
//
// # Concurrency Model
//
// All members share one hub guarded by a single mutex. Barrier rounds are
// implemented as arrival counting with a channel close as the release
// broadcast; broadcast rounds are per-round payload slots. Contention is
// one lock acquisition per member per frame, which is noise next to the
// frame interval.
package inmemorycomm

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/wallgridgo/internal/comm"
)

type bcastRound struct {
	ch      chan struct{}
	payload []byte
	done    bool
	failed  bool
	readers int
}

type hub struct {
	ids []string

	mu      sync.Mutex
	closed  bool
	arrived int
	waitCh  chan struct{}
	rounds  map[uint64]*bcastRound
}

// Runtime is one member's handle onto the shared hub.
type Runtime struct {
	hub    *hub
	rank   int
	bround uint64
}

// NewGroup creates a fully connected in-process group, one runtime per
// identity, ranked in the given order.
func NewGroup(ids []string) []*Runtime {
	h := &hub{
		ids:    append([]string(nil), ids...),
		waitCh: make(chan struct{}),
		rounds: make(map[uint64]*bcastRound),
	}
	members := make([]*Runtime, len(ids))
	for i := range ids {
		members[i] = &Runtime{hub: h, rank: i}
	}
	return members
}

func (r *Runtime) Rank() int { return r.rank }

func (r *Runtime) Size() int { return len(r.hub.ids) }

func (r *Runtime) Identities() []string {
	return append([]string(nil), r.hub.ids...)
}

// Barrier blocks until every member of the hub has arrived for this round.
// The last arriver releases everyone by closing the round channel.
func (r *Runtime) Barrier(ctx context.Context) error {
	h := r.hub

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return comm.ErrPeerLost
	}
	ch := h.waitCh
	h.arrived++
	if h.arrived == len(h.ids) {
		h.arrived = 0
		h.waitCh = make(chan struct{})
		h.mu.Unlock()
		close(ch)
		return nil
	}
	h.mu.Unlock()

	select {
	case <-ch:
		h.mu.Lock()
		// On normal completion the last arriver swapped waitCh before
		// closing; Close leaves waitCh in place. That distinguishes a
		// completed round from an aborted one.
		aborted := h.closed && h.waitCh == ch
		h.mu.Unlock()
		if aborted {
			return comm.ErrPeerLost
		}
		return nil
	case <-ctx.Done():
		h.mu.Lock()
		if h.waitCh != ch {
			// The round completed while we were timing out; honoring the
			// release keeps every member on the same round count.
			h.mu.Unlock()
			return nil
		}
		if h.closed {
			h.mu.Unlock()
			return comm.ErrPeerLost
		}
		h.arrived--
		h.mu.Unlock()
		return fmt.Errorf("%w: %v", comm.ErrBarrierTimeout, ctx.Err())
	}
}

// Broadcast distributes the root member's payload for this round to every
// member. Each member's Nth call participates in round N.
func (r *Runtime) Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error) {
	h := r.hub
	if root < 0 || root >= len(h.ids) {
		return nil, fmt.Errorf("broadcast root %d out of range for group of %d", root, len(h.ids))
	}
	r.bround++
	n := r.bround

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, comm.ErrPeerLost
	}
	br := h.rounds[n]
	if br == nil {
		br = &bcastRound{ch: make(chan struct{})}
		h.rounds[n] = br
	}
	if r.rank == root && !br.done {
		br.payload = payload
		br.done = true
		close(br.ch)
	}
	h.mu.Unlock()

	select {
	case <-br.ch:
		h.mu.Lock()
		out := br.payload
		failed := br.failed
		br.readers++
		if br.readers == len(h.ids) {
			delete(h.rounds, n)
		}
		h.mu.Unlock()
		if failed {
			return nil, comm.ErrPeerLost
		}
		return out, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("broadcast: %w", ctx.Err())
	}
}

// Close tears down the whole hub. Members blocked in Barrier or Broadcast
// observe comm.ErrPeerLost: one member going away ends the session for all.
func (r *Runtime) Close(ctx context.Context) error {
	h := r.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	close(h.waitCh)
	for _, br := range h.rounds {
		if !br.done {
			br.done = true
			br.failed = true
			close(br.ch)
		}
	}
	return nil
}
