// Package hub implements the single-writer chat actor: the hub owns the
// connection table, the user table, rate limiters and the moderation
// view, and is the sole mutator of all of it. Every state transition runs
// on the Run goroutine; everything else talks to the hub only by sending
// messages on its mailbox, following the run-loop/select shape of
// other_examples' domino14-tetrolith hub.go.
package hub

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencraftmc/chatrelay/internal/auth"
	"github.com/opencraftmc/chatrelay/internal/config"
	"github.com/opencraftmc/chatrelay/internal/model"
	"github.com/opencraftmc/chatrelay/internal/moderation"
	"github.com/opencraftmc/chatrelay/internal/packet"
	"github.com/opencraftmc/chatrelay/internal/ratelimit"
)

// InternalId is the opaque, process-unique, monotonically allocated
// handle for one live socket.
type InternalId uint64

// Sink is the outbound, one-way, non-blocking-best-effort mailbox a
// Session exposes to the hub.
type Sink interface {
	Send(p packet.ClientPacket)
}

// MojangVerifier abstracts the Mojang hasJoined check so tests can stub
// the session-server response without reaching the network. *auth.Mojang
// implements this signature.
type MojangVerifier interface {
	HasJoined(ctx context.Context, username, serverHash string) (uuid.UUID, error)
}

// connection is the hub's SessionState, keyed by InternalId.
type connection struct {
	addr        Sink
	sessionHash string
	user        *model.User
}

// userSession is keyed by user name.
type userSession struct {
	limiter     *ratelimit.Limiter
	connections map[InternalId]struct{}
}

type connectMsg struct {
	sink  Sink
	reply chan InternalId
}

type disconnectMsg struct {
	id InternalId
}

type serverPacketMsg struct {
	id InternalId
	p  packet.ServerPacket
}

type mojangResultMsg struct {
	id            InternalId
	name          string
	claimedUUID   uuid.UUID
	allowMessages bool
	result        uuid.UUID
	err           error
}

// Hub is the chat relay's core actor.
type Hub struct {
	cfg            *config.Config
	moderation     *moderation.Moderation
	tokenAuthority *auth.TokenAuthority
	mojang         MojangVerifier
	rng            *seededRand

	connect      chan connectMsg
	disconnect   chan disconnectMsg
	serverPacket chan serverPacketMsg
	mojangResult chan mojangResultMsg

	nextID InternalId

	connections map[InternalId]*connection
	users       map[string]*userSession
}

// New constructs a Hub. tokenAuthority may be nil when no [auth] section
// is configured.
func New(cfg *config.Config, mod *moderation.Moderation, tokenAuthority *auth.TokenAuthority, mojang MojangVerifier) (*Hub, error) {
	rng, err := newSeededRand()
	if err != nil {
		return nil, err
	}
	return &Hub{
		cfg:            cfg,
		moderation:     mod,
		tokenAuthority: tokenAuthority,
		mojang:         mojang,
		rng:            rng,
		connect:        make(chan connectMsg),
		disconnect:     make(chan disconnectMsg, 16),
		serverPacket:   make(chan serverPacketMsg, 256),
		mojangResult:   make(chan mojangResultMsg, 16),
		connections:    make(map[InternalId]*connection),
		users:          make(map[string]*userSession),
	}, nil
}

// Connect allocates the next InternalId and registers sink, the one
// synchronous request/response suspension point the design notes permit.
func (h *Hub) Connect(sink Sink) InternalId {
	reply := make(chan InternalId, 1)
	h.connect <- connectMsg{sink: sink, reply: reply}
	return <-reply
}

// Disconnect tells the hub a socket has closed.
func (h *Hub) Disconnect(id InternalId) {
	h.disconnect <- disconnectMsg{id: id}
}

// Dispatch forwards a decoded ServerPacket from connection id to the hub.
func (h *Hub) Dispatch(id InternalId, p packet.ServerPacket) {
	h.serverPacket <- serverPacketMsg{id: id, p: p}
}

// Run is the hub's processing loop. It blocks until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-h.connect:
			id := h.nextID
			h.nextID++
			h.connections[id] = &connection{addr: m.sink}
			m.reply <- id
		case m := <-h.disconnect:
			h.handleDisconnect(m.id)
		case m := <-h.serverPacket:
			h.handleServerPacket(ctx, m.id, m.p)
		case m := <-h.mojangResult:
			h.handleMojangResult(m)
		}
	}
}

func (h *Hub) handleServerPacket(ctx context.Context, id InternalId, p packet.ServerPacket) {
	conn, ok := h.connections[id]
	if !ok {
		return
	}

	switch pk := p.(type) {
	case packet.RequestMojangInfo:
		h.handleRequestMojangInfo(conn)
	case packet.LoginMojang:
		h.handleLoginMojang(ctx, id, conn, pk)
	case packet.RequestJWT:
		h.handleRequestJWT(conn)
	case packet.LoginJWT:
		h.handleLoginJWT(id, conn, pk)
	case packet.Message:
		h.handleMessage(conn, pk)
	case packet.PrivateMessage:
		h.handlePrivateMessage(conn, pk)
	case packet.BanUser:
		h.handleBanUser(conn, pk)
	case packet.UnbanUser:
		h.handleUnbanUser(conn, pk)
	case packet.RequestUserCount:
		h.handleRequestUserCount(conn)
	default:
		zap.S().Warnw("unhandled server packet type", "type", p)
	}
}

func (h *Hub) handleDisconnect(id InternalId) {
	conn, ok := h.connections[id]
	if !ok {
		return
	}
	delete(h.connections, id)
	if conn.user == nil {
		return
	}
	h.removeFromUser(conn.user.Name, id)
}

func (h *Hub) removeFromUser(name string, id InternalId) {
	us, ok := h.users[name]
	if !ok {
		return
	}
	delete(us.connections, id)
	if len(us.connections) == 0 {
		delete(h.users, name)
	}
}

// completeLogin is the one place a connection transitions into LoggedIn,
// per §4.1.3: set user, index into users[name] (creating the UserSession
// with a fresh RateLimiter if the name is new), clear session_hash, and
// acknowledge.
func (h *Hub) completeLogin(id InternalId, conn *connection, user model.User) {
	us, ok := h.users[user.Name]
	if !ok {
		us = &userSession{
			limiter:     ratelimit.New(h.cfg.Message.MaxMessages, durationOf(h.cfg.Message.CountDuration)),
			connections: make(map[InternalId]struct{}),
		}
		h.users[user.Name] = us
	}
	us.connections[id] = struct{}{}
	conn.user = &user
	conn.sessionHash = ""
	conn.addr.Send(packet.Success{Reason: packet.SuccessLogin})
}

func durationOf(d config.Duration) time.Duration {
	return time.Duration(d)
}
