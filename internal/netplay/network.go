package netplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-tetris/internal/metrics"
	"github.com/vovakirdan/tui-tetris/internal/room"
)

// HostPeer is the peer id a client uses for its host.
const HostPeer = "host"

const eventBuffer = 1024

// Role tells a host from a client.
type Role int

const (
	RoleHost Role = iota + 1
	RoleClient
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleClient:
		return "client"
	}
	return "unknown"
}

// Options configures a Network.
type Options struct {
	// WriteTimeout bounds every frame write; zero means no deadline.
	WriteTimeout time.Duration
	Logger       *log.Logger
	Metrics      *metrics.Metrics
}

type conn struct {
	id        string
	c         net.Conn
	closeOnce sync.Once
}

func (c *conn) close() {
	c.closeOnce.Do(func() { _ = c.c.Close() })
}

type event struct {
	conn    *conn
	payload []byte
	joined  bool
	left    bool
	err     error
}

// Network is a room.Transport over TCP. A host accepts any number of
// clients and relays every frame it receives to all other clients; a
// client talks to its host only.
//
// Reads happen on one goroutine per connection. Everything else, including
// all writes, happens on the goroutine that calls Poll, Broadcast, SendTo
// and Disconnect. Close may be called from anywhere.
type Network struct {
	role     Role
	opts     Options
	log      *log.Logger
	listener net.Listener

	events chan event
	done   chan struct{}
	group  errgroup.Group

	mu     sync.Mutex
	closed bool
	live   map[*conn]struct{}

	// Owned by the polling goroutine.
	peers map[string]*conn
	order []string
}

var _ room.Transport = (*Network)(nil)

func newNetwork(role Role, opts Options) *Network {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Network{
		role:   role,
		opts:   opts,
		log:    logger.WithPrefix("net"),
		events: make(chan event, eventBuffer),
		done:   make(chan struct{}),
		live:   make(map[*conn]struct{}),
		peers:  make(map[string]*conn),
	}
}

// Host listens on addr and accepts clients until Close.
func Host(ctx context.Context, addr string, opts Options) (*Network, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("netplay: listen %s: %w", addr, err)
	}
	n := newNetwork(RoleHost, opts)
	n.listener = ln
	n.group.Go(n.acceptLoop)
	n.log.Info("hosting", "addr", ln.Addr())
	return n, nil
}

// Join connects to a host.
func Join(ctx context.Context, addr string, opts Options) (*Network, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("netplay: dial %s: %w", addr, err)
	}
	n := newNetwork(RoleClient, opts)
	host := &conn{id: HostPeer, c: c}
	n.peers[host.id] = host
	n.order = append(n.order, host.id)
	n.opts.Metrics.PeerConnected()
	n.start(host, false)
	n.log.Info("joined", "addr", c.RemoteAddr())
	return n, nil
}

// Role reports whether n hosts or joined.
func (n *Network) Role() Role { return n.role }

// Addr is the listening address of a host, nil for a client.
func (n *Network) Addr() net.Addr {
	if n.listener == nil {
		return nil
	}
	return n.listener.Addr()
}

// Peers lists connected peers in connection order.
func (n *Network) Peers() []string { return slices.Clone(n.order) }

// Online is always true: a Network is never the offline transport.
func (n *Network) Online() bool { return true }

func (n *Network) acceptLoop() error {
	for {
		c, err := n.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("netplay: accept: %w", err)
		}
		n.start(&conn{id: uuid.NewString(), c: c}, true)
	}
}

// start tracks c and spawns its reader. announce queues a join event ahead
// of the first frame.
func (n *Network) start(c *conn, announce bool) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		c.close()
		return
	}
	n.live[c] = struct{}{}
	n.mu.Unlock()

	if announce && !n.send(event{conn: c, joined: true}) {
		c.close()
		return
	}
	n.group.Go(func() error {
		n.read(c)
		return nil
	})
}

func (n *Network) read(c *conn) {
	defer func() {
		n.mu.Lock()
		delete(n.live, c)
		n.mu.Unlock()
	}()
	for {
		payload, err := ReadFrame(c.c)
		if err != nil {
			n.send(event{conn: c, left: true, err: err})
			return
		}
		if !n.send(event{conn: c, payload: payload}) {
			return
		}
	}
}

func (n *Network) send(ev event) bool {
	select {
	case n.events <- ev:
		return true
	case <-n.done:
		return false
	}
}

// Poll returns what arrived since the last call. A host relays every valid
// frame to its other peers here, in arrival order.
func (n *Network) Poll() []room.Incoming {
	var in []room.Incoming
	for pending := len(n.events); pending > 0; pending-- {
		ev := <-n.events
		if inc, ok := n.handle(ev); ok {
			in = append(in, inc)
		}
	}
	return in
}

func (n *Network) handle(ev event) (room.Incoming, bool) {
	id := ev.conn.id
	switch {
	case ev.joined:
		n.peers[id] = ev.conn
		n.order = append(n.order, id)
		n.opts.Metrics.PeerConnected()
		n.log.Info("peer connected", "peer", id, "addr", ev.conn.c.RemoteAddr())
		return room.Incoming{From: id, Joined: true}, true

	case ev.left:
		if n.forget(id) {
			n.opts.Metrics.PeerDisconnected()
		}
		ev.conn.close()
		if errors.Is(ev.err, io.EOF) || errors.Is(ev.err, net.ErrClosed) {
			n.log.Info("peer left", "peer", id)
		} else {
			n.log.Warn("peer lost", "peer", id, "err", ev.err)
		}
		return room.Incoming{From: id, Left: true}, true
	}

	if _, ok := n.peers[id]; !ok {
		return room.Incoming{}, false
	}
	msg, err := Decode(ev.payload)
	if err != nil {
		n.Disconnect(id, err)
		return room.Incoming{}, false
	}
	if n.role == RoleHost {
		for _, other := range slices.Clone(n.order) {
			if other != id && n.write(other, ev.payload) {
				n.opts.Metrics.Relayed()
			}
		}
	}
	return room.Incoming{From: id, Msg: msg}, true
}

// Broadcast sends m to every peer.
func (n *Network) Broadcast(m room.Message) {
	payload, err := Encode(m)
	if err != nil {
		n.log.Error("encode", "err", err)
		return
	}
	for _, id := range slices.Clone(n.order) {
		n.write(id, payload)
	}
}

// SendTo sends m to one peer.
func (n *Network) SendTo(peer string, m room.Message) {
	payload, err := Encode(m)
	if err != nil {
		n.log.Error("encode", "err", err)
		return
	}
	n.write(peer, payload)
}

func (n *Network) write(id string, payload []byte) bool {
	c, ok := n.peers[id]
	if !ok {
		return false
	}
	if n.opts.WriteTimeout > 0 {
		_ = c.c.SetWriteDeadline(time.Now().Add(n.opts.WriteTimeout))
	}
	if err := WriteFrame(c.c, payload); err != nil {
		n.Disconnect(id, fmt.Errorf("write: %w", err))
		return false
	}
	return true
}

// Disconnect drops a peer. Its reader reports it as left on a later Poll.
func (n *Network) Disconnect(peer string, reason error) {
	c, ok := n.peers[peer]
	if !ok {
		return
	}
	n.forget(peer)
	n.opts.Metrics.PeerDisconnected()
	n.log.Warn("disconnecting peer", "peer", peer, "reason", reason)
	c.close()
}

func (n *Network) forget(id string) bool {
	if _, ok := n.peers[id]; !ok {
		return false
	}
	delete(n.peers, id)
	n.order = slices.DeleteFunc(n.order, func(s string) bool { return s == id })
	return true
}

// Close stops accepting, drops every connection and waits for the readers.
func (n *Network) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	close(n.done)
	conns := make([]*conn, 0, len(n.live))
	for c := range n.live {
		conns = append(conns, c)
	}
	n.mu.Unlock()

	if n.listener != nil {
		_ = n.listener.Close()
	}
	for _, c := range conns {
		c.close()
	}
	return n.group.Wait()
}
