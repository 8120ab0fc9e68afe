package socketiocomm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vk/wallgridgo/internal/comm"
	"github.com/vk/wallgridgo/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Options configures one participant of a socket.io group.
type Options struct {
	// Identity of this process within the layout.
	Identity string
	// Addr is the conductor endpoint every participant dials, with or
	// without an http:// scheme.
	Addr string
	// Listen, when non-empty, makes this process host the conductor on
	// the given address before dialing it like everyone else.
	Listen string
	// Expected is the set of identities declared in the layout, in
	// declaration order.
	Expected []string
	// JoinTimeout bounds the startup identity exchange.
	JoinTimeout time.Duration
}

// Runtime is the peer side: a socket.io client holding this process's view
// of the group. It implements comm.Runtime.
type Runtime struct {
	opts      Options
	manager   *socket.Manager
	client    *socket.Socket
	conductor *conductor

	mu       sync.Mutex
	roster   []string
	rank     int
	releases map[uint64]chan struct{}
	clocks   map[uint64]*clockRound

	rosterCh  chan struct{} // closed once the roster arrives
	lostCh    chan struct{} // closed once on peer loss or rejection
	lostOnce  sync.Once
	dialErrCh chan error

	barrierRound uint64
	clockCounter uint64
}

type clockRound struct {
	ch      chan struct{}
	payload []byte
}

// Dial joins (and for the conductor process, first creates) a socket.io
// group. It blocks until the roster is published or the join window
// expires.
func Dial(ctx context.Context, opts Options) (*Runtime, error) {
	logger := ctxlog.FromContext(ctx).With("identity", opts.Identity, "addr", opts.Addr)

	r := &Runtime{
		opts:      opts,
		releases:  make(map[uint64]chan struct{}),
		clocks:    make(map[uint64]*clockRound),
		rosterCh:  make(chan struct{}),
		lostCh:    make(chan struct{}),
		dialErrCh: make(chan error, 1),
	}

	if opts.Listen != "" {
		cond, err := startConductor(ctx, opts.Listen, opts.Expected, opts.JoinTimeout)
		if err != nil {
			return nil, err
		}
		r.conductor = cond
	}

	baseURL := opts.Addr
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	clientOpts := socket.DefaultOptions()
	clientOpts.SetTransports(types.NewSet(transports.WebSocket))
	r.manager = socket.NewManager(baseURL, clientOpts)
	r.client = r.manager.Socket("/", clientOpts)

	r.client.On(types.EventName("connect"), func(...any) {
		logger.Debug("Connected to conductor, sending hello.")
		r.client.Emit(evHello, opts.Identity)
	})
	r.client.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				select {
				case r.dialErrCh <- err:
				default:
				}
			}
		}
	})
	r.client.On(types.EventName(evRoster), func(args ...any) {
		roster, ok := firstStrings(args)
		if !ok {
			return
		}
		r.mu.Lock()
		if r.roster == nil {
			r.roster = roster
			r.rank = indexOf(roster, opts.Identity)
			close(r.rosterCh)
		}
		r.mu.Unlock()
	})
	r.client.On(types.EventName(evRelease), func(args ...any) {
		frame, ok := firstUint64(args)
		if !ok {
			return
		}
		r.mu.Lock()
		ch := r.releaseChanLocked(frame)
		r.mu.Unlock()
		closeOnce(ch)
	})
	r.client.On(types.EventName(evClock), func(args ...any) {
		r.onClock(args)
	})
	r.client.On(types.EventName(evLost), func(args ...any) {
		id, _ := firstString(args)
		logger.Error("Conductor reported a lost peer.", "peer", id)
		r.markLost()
	})
	r.client.On(types.EventName(evLate), func(...any) {
		logger.Error("Rejected by conductor: roster already published.")
		r.markLost()
	})

	r.client.Connect()

	select {
	case <-r.rosterCh:
	case err := <-r.dialErrCh:
		r.teardown()
		return nil, fmt.Errorf("failed to reach conductor at %s: %w", opts.Addr, err)
	case <-r.lostCh:
		r.teardown()
		return nil, fmt.Errorf("rejected by conductor at %s: session already running", opts.Addr)
	case <-ctx.Done():
		r.teardown()
		return nil, fmt.Errorf("join canceled: %w", ctx.Err())
	case <-time.After(opts.JoinTimeout + joinGrace):
		r.teardown()
		return nil, fmt.Errorf("no roster from conductor at %s within %s", opts.Addr, opts.JoinTimeout)
	}

	r.mu.Lock()
	rank, size := r.rank, len(r.roster)
	r.mu.Unlock()
	if rank < 0 {
		r.teardown()
		return nil, fmt.Errorf("identity %q missing from published roster", opts.Identity)
	}
	logger.Info("Joined socket.io group.", "rank", rank, "size", size)
	return r, nil
}

// joinGrace covers the conductor-side window firing slightly after the
// peer-side one when both were armed from the same setting.
const joinGrace = 2 * time.Second

func (r *Runtime) Rank() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rank
}

func (r *Runtime) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.roster)
}

func (r *Runtime) Identities() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.roster...)
}

// Barrier announces arrival for the next frame round and blocks until the
// conductor releases it.
func (r *Runtime) Barrier(ctx context.Context) error {
	r.mu.Lock()
	r.barrierRound++
	round := r.barrierRound
	ch := r.releaseChanLocked(round)
	r.mu.Unlock()

	r.client.Emit(evArrive, round)

	select {
	case <-ch:
		r.mu.Lock()
		delete(r.releases, round)
		r.mu.Unlock()
		return nil
	case <-r.lostCh:
		return comm.ErrPeerLost
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", comm.ErrBarrierTimeout, ctx.Err())
	}
}

// Broadcast relays the root's payload through the conductor. Every member
// calls it once per round; rounds are matched by a per-member counter, so
// it must follow the same barrier cadence on every rank.
func (r *Runtime) Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error) {
	r.mu.Lock()
	r.clockCounter++
	round := r.clockCounter
	cr := r.clockRoundLocked(round)
	isRoot := r.rank == root
	r.mu.Unlock()

	if isRoot {
		r.client.Emit(evClock, round, base64.StdEncoding.EncodeToString(payload))
	}

	select {
	case <-cr.ch:
		r.mu.Lock()
		out := cr.payload
		delete(r.clocks, round)
		r.mu.Unlock()
		return out, nil
	case <-r.lostCh:
		return nil, comm.ErrPeerLost
	case <-ctx.Done():
		return nil, fmt.Errorf("broadcast: %w", ctx.Err())
	}
}

// Close disconnects from the group and, on the conductor process, tears the
// server down with it.
func (r *Runtime) Close(ctx context.Context) error {
	r.markLost()
	r.teardown()
	return nil
}

func (r *Runtime) onClock(args []any) {
	if len(args) < 2 {
		return
	}
	round, ok := firstUint64(args[:1])
	if !ok {
		return
	}
	encoded, ok := args[1].(string)
	if !ok {
		return
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return
	}
	r.mu.Lock()
	cr := r.clockRoundLocked(round)
	cr.payload = payload
	r.mu.Unlock()
	closeOnce(cr.ch)
}

func (r *Runtime) releaseChanLocked(round uint64) chan struct{} {
	ch, ok := r.releases[round]
	if !ok {
		ch = make(chan struct{})
		r.releases[round] = ch
	}
	return ch
}

func (r *Runtime) clockRoundLocked(round uint64) *clockRound {
	cr, ok := r.clocks[round]
	if !ok {
		cr = &clockRound{ch: make(chan struct{})}
		r.clocks[round] = cr
	}
	return cr
}

func (r *Runtime) markLost() {
	r.lostOnce.Do(func() { close(r.lostCh) })
}

func (r *Runtime) teardown() {
	r.client.Disconnect()
	if r.conductor != nil {
		r.conductor.close()
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// closeOnce closes a channel, tolerating a duplicate event from the wire.
func closeOnce(ch chan struct{}) {
	defer func() { _ = recover() }()
	close(ch)
}
