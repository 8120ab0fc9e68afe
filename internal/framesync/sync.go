// Package framesync keeps every participating process advancing frames in
// lockstep. Before a host presents frame N it calls StartFrame, which issues
// a collective barrier across the group; no rank proceeds until every rank
// has arrived, bounding cross-machine skew to one barrier round-trip.
// Optionally rank 0 broadcasts an authoritative clock immediately after the
// barrier so time-dependent rendering on every tile is computed from one
// clock instead of drifting per-machine ones.
//
// The synchronizer runs cooperatively inside the host's per-frame update
// cycle and spawns no goroutines of its own. The barrier wait is the single
// blocking point; a configurable timeout turns a stalled peer into a fatal,
// structured failure; a frame-locked wall has no correct degraded mode.
package framesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vk/wallgridgo/internal/comm"
	"github.com/vk/wallgridgo/internal/config"
	"github.com/vk/wallgridgo/internal/ctxlog"
	"github.com/vk/wallgridgo/internal/group"
	"github.com/vk/wallgridgo/internal/identity"
)

// ErrBadState reports a lifecycle call made in the wrong state, which is a
// bug in the host's frame loop rather than a runtime condition.
var ErrBadState = errors.New("framesync: bad state")

// ErrClosed reports a lifecycle call after the session ended.
var ErrClosed = errors.New("framesync: session closed")

// ErrorKind classifies a fatal synchronization failure.
type ErrorKind int

const (
	// Timeout means the barrier was not satisfied within its bound.
	Timeout ErrorKind = iota
	// PeerLost means the runtime reported a participant failure.
	PeerLost
)

func (k ErrorKind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case PeerLost:
		return "peer_lost"
	default:
		return "unknown"
	}
}

// SyncError is a fatal mid-session synchronization failure. The
// synchronizer is Closed by the time the caller sees one; the host should
// stop rendering, report, and exit. There are no silent retries.
type SyncError struct {
	Kind  ErrorKind
	Frame uint64
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s at frame %d: %v", e.Kind, e.Frame, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Clock is the frame-authoritative timestamp shared by rank 0 after each
// barrier.
type Clock struct {
	Frame      uint64 `json:"frame"`
	UnixMicros int64  `json:"unix_micros"`
}

// Time converts the authoritative timestamp back to a time.Time.
func (c Clock) Time() time.Time {
	return time.UnixMicro(c.UnixMicros)
}

// Options tunes one synchronizer.
type Options struct {
	// Identity of this process, used for solo membership and diagnostics.
	Identity identity.Identity
	// BarrierTimeout bounds every per-frame barrier wait. Zero means no
	// bound (the caller's context still applies).
	BarrierTimeout time.Duration
	// ShareClock enables the rank-0 clock broadcast after each barrier.
	ShareClock bool
	// Strict rejects live participants absent from the layout.
	Strict bool
}

// Synchronizer drives the per-frame collective protocol. It borrows the
// communication runtime and never outlives it. All methods are called from
// the host's frame loop; State is additionally safe to read from other
// goroutines (the healthcheck endpoint does).
type Synchronizer struct {
	rt     comm.Runtime
	layout *config.Layout
	opts   Options

	mu         sync.Mutex
	state      State
	frame      uint64
	membership *group.Membership
	clock      Clock
}

// New creates a synchronizer in the Idle state.
func New(rt comm.Runtime, layout *config.Layout, opts Options) *Synchronizer {
	return &Synchronizer{rt: rt, layout: layout, opts: opts, state: Idle}
}

// State returns the current lifecycle state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Frame returns the number of completed frames.
func (s *Synchronizer) Frame() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Membership returns the rank table established by Join, or nil before it.
func (s *Synchronizer) Membership() *group.Membership {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.membership
}

// Join establishes group membership: Idle → Joining → Ready. A group of
// size 1 joins trivially as rank 0. Membership failure closes the session.
func (s *Synchronizer) Join(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	s.mu.Lock()
	if s.state != Idle {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: join in %s", ErrBadState, st)
	}
	s.state = Joining
	s.mu.Unlock()

	var m *group.Membership
	if s.rt.Size() <= 1 {
		m = group.Solo(s.opts.Identity)
	} else {
		live := make([]identity.Identity, 0, s.rt.Size())
		for _, id := range s.rt.Identities() {
			live = append(live, identity.Identity(id))
		}
		var err error
		m, err = group.Build(s.layout, live, group.Options{Strict: s.opts.Strict})
		if err != nil {
			logger.Error("Group membership build failed.", "error", err)
			s.close()
			return err
		}
	}

	s.mu.Lock()
	s.membership = m
	s.state = Ready
	s.mu.Unlock()

	logger.Info("Joined frame synchronization group.",
		"identity", s.opts.Identity, "rank", s.rt.Rank(), "size", m.Size())
	return nil
}

// StartFrame gates the next frame: Ready → FrameBarrier → Advancing. It
// blocks in the collective barrier until every rank arrives, then returns
// the frame clock (rank 0's when clock sharing is on, the local one
// otherwise). A timeout or peer loss closes the session and is returned as
// a *SyncError.
func (s *Synchronizer) StartFrame(ctx context.Context) (Clock, error) {
	s.mu.Lock()
	switch s.state {
	case Ready:
	case Closed:
		s.mu.Unlock()
		return Clock{}, ErrClosed
	default:
		st := s.state
		s.mu.Unlock()
		return Clock{}, fmt.Errorf("%w: start frame in %s", ErrBadState, st)
	}
	s.state = FrameBarrier
	frame := s.frame
	s.mu.Unlock()

	bctx := ctx
	if s.opts.BarrierTimeout > 0 {
		var cancel context.CancelFunc
		bctx, cancel = context.WithTimeout(ctx, s.opts.BarrierTimeout)
		defer cancel()
	}
	if err := s.rt.Barrier(bctx); err != nil {
		return Clock{}, s.fail(ctx, frame, err)
	}

	clock, err := s.shareClock(bctx, frame)
	if err != nil {
		return Clock{}, s.fail(ctx, frame, err)
	}

	s.mu.Lock()
	if s.state == Closed {
		// Closed out from under us while waiting; honor the shutdown.
		s.mu.Unlock()
		return Clock{}, ErrClosed
	}
	s.state = Advancing
	s.clock = clock
	s.mu.Unlock()
	return clock, nil
}

// FinishFrame marks the local frame's render work complete: Advancing →
// Ready. The next barrier is never issued before this, so barriers are
// strictly one per frame with no pipelining.
func (s *Synchronizer) FinishFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Advancing:
	case Closed:
		return ErrClosed
	default:
		return fmt.Errorf("%w: finish frame in %s", ErrBadState, s.state)
	}
	s.state = Ready
	s.frame++
	return nil
}

// Close tears the session down from any state, abandoning an in-flight
// barrier wait. Idempotent.
func (s *Synchronizer) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return nil
	}
	s.state = Closed
	s.mu.Unlock()
	return s.rt.Close(ctx)
}

// shareClock distributes rank 0's clock after a successful barrier. With
// sharing disabled or a group of one, the local clock is authoritative.
func (s *Synchronizer) shareClock(ctx context.Context, frame uint64) (Clock, error) {
	local := Clock{Frame: frame, UnixMicros: time.Now().UnixMicro()}
	if !s.opts.ShareClock || s.rt.Size() <= 1 {
		return local, nil
	}

	var payload []byte
	if s.rt.Rank() == 0 {
		var err error
		payload, err = json.Marshal(local)
		if err != nil {
			return Clock{}, err
		}
	}
	out, err := s.rt.Broadcast(ctx, 0, payload)
	if err != nil {
		return Clock{}, err
	}
	var clock Clock
	if err := json.Unmarshal(out, &clock); err != nil {
		return Clock{}, fmt.Errorf("bad clock payload: %w", err)
	}
	return clock, nil
}

// fail classifies a collective failure, closes the session, and builds the
// *SyncError surfaced to the host.
func (s *Synchronizer) fail(ctx context.Context, frame uint64, err error) error {
	logger := ctxlog.FromContext(ctx)

	kind := PeerLost
	if errors.Is(err, comm.ErrBarrierTimeout) || errors.Is(err, context.DeadlineExceeded) {
		kind = Timeout
	}
	logger.Error("Frame synchronization failed, closing session.",
		"kind", kind.String(), "frame", frame, "error", err)
	s.close()
	return &SyncError{Kind: kind, Frame: frame, Err: err}
}

func (s *Synchronizer) close() {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return
	}
	s.state = Closed
	s.mu.Unlock()
	// Best effort; the runtime owner may already have torn it down.
	_ = s.rt.Close(context.Background())
}
