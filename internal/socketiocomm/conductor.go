package socketiocomm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vk/wallgridgo/internal/ctxlog"
	"github.com/zishang520/engine.io/v2/types"
	sio "github.com/zishang520/socket.io/v2/socket"
)

const (
	evHello   = "hello"
	evRoster  = "roster"
	evLate    = "late"
	evArrive  = "arrive"
	evRelease = "release"
	evClock   = "clock"
	evLost    = "lost"
)

// conductor is the server side of the group: it collects identities during
// the startup window, publishes the roster, counts barrier arrivals, and
// relays the clock broadcast.
type conductor struct {
	logger     *slog.Logger
	expected   []string
	joinWindow time.Duration

	httpServer *types.HttpServer
	io         *sio.Server

	mu         sync.Mutex
	clients    map[string]*sio.Socket // identity → socket
	rosterSent bool
	roster     []string
	arrivals   map[uint64]int
}

// startConductor binds the socket.io server and arms the join window.
func startConductor(ctx context.Context, listen string, expected []string, joinWindow time.Duration) (*conductor, error) {
	logger := ctxlog.FromContext(ctx).With("component", "conductor", "listen", listen)

	c := &conductor{
		logger:     logger,
		expected:   append([]string(nil), expected...),
		joinWindow: joinWindow,
		clients:    make(map[string]*sio.Socket),
		arrivals:   make(map[uint64]int),
	}

	c.httpServer = types.CreateServer(nil)
	c.io = sio.NewServer(c.httpServer, nil)
	c.io.On("connection", func(clients ...any) {
		client := clients[0].(*sio.Socket)
		c.handleConnection(client)
	})
	c.httpServer.Listen(listen, nil)

	// Publish a partial roster when the window closes so that missing
	// members become a named membership failure instead of a hang.
	time.AfterFunc(joinWindow, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.rosterSent {
			c.logger.Warn("Join window expired, publishing partial roster.",
				"expected", len(c.expected), "present", len(c.clients))
			c.publishRosterLocked()
		}
	})

	logger.Info("🎼 Conductor listening.", "expected", len(expected), "join_window", joinWindow)
	return c, nil
}

// handleConnection wires the per-peer event handlers. The identity is only
// known once the peer says hello.
func (c *conductor) handleConnection(client *sio.Socket) {
	var identity string

	client.On(evHello, func(args ...any) {
		id, ok := firstString(args)
		if !ok {
			c.logger.Warn("Malformed hello, ignoring.")
			return
		}
		identity = id

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.rosterSent {
			// Membership is frozen for the session; a late joiner can
			// only be told to go away.
			c.logger.Warn("Hello after roster publication, rejecting.", "identity", id)
			client.Emit(evLate)
			return
		}
		c.clients[id] = client
		c.logger.Debug("Peer said hello.", "identity", id, "present", len(c.clients))
		if c.allExpectedPresentLocked() {
			c.publishRosterLocked()
		}
	})

	client.On(evArrive, func(args ...any) {
		frame, ok := firstUint64(args)
		if !ok {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.rosterSent {
			return
		}
		c.arrivals[frame]++
		if c.arrivals[frame] >= len(c.roster) {
			delete(c.arrivals, frame)
			c.emitAllLocked(evRelease, frame)
		}
	})

	client.On(evClock, func(args ...any) {
		// Relay the authority clock verbatim to the whole group, the
		// sender included, so every rank resolves the round identically.
		c.mu.Lock()
		defer c.mu.Unlock()
		c.emitAllLocked(evClock, args...)
	})

	client.On("disconnect", func(...any) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if identity == "" {
			return
		}
		delete(c.clients, identity)
		if c.rosterSent && contains(c.roster, identity) {
			c.logger.Error("Roster member disconnected mid-session.", "identity", identity)
			c.emitAllLocked(evLost, identity)
		}
	})
}

func (c *conductor) allExpectedPresentLocked() bool {
	for _, id := range c.expected {
		if _, ok := c.clients[id]; !ok {
			return false
		}
	}
	return true
}

// publishRosterLocked freezes membership and tells everyone who is in. The
// roster is already in canonical rank order so peers derive their rank by
// position without further coordination.
func (c *conductor) publishRosterLocked() {
	present := make([]string, 0, len(c.clients))
	for id := range c.clients {
		present = append(present, id)
	}
	c.roster = canonicalOrder(c.expected, present)
	c.rosterSent = true
	c.logger.Info("Roster published.", "size", len(c.roster))
	c.emitAllLocked(evRoster, c.roster)
}

func (c *conductor) emitAllLocked(ev string, args ...any) {
	for _, client := range c.clients {
		client.Emit(ev, args...)
	}
}

func (c *conductor) close() {
	c.io.Close(nil)
	c.httpServer.Close(nil)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
