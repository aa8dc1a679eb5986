package hub

import (
	"errors"

	"go.uber.org/zap"

	"github.com/opencraftmc/chatrelay/internal/clienterror"
	"github.com/opencraftmc/chatrelay/internal/packet"
)

// requireModerator returns nil if conn is logged in and its UUID is in
// the moderator set, else the ClientError to surface.
func (h *Hub) requireModerator(conn *connection) *clienterror.Error {
	if conn.user == nil {
		e := clienterror.New(clienterror.NotLoggedIn)
		return &e
	}
	if !h.moderation.IsModerator(conn.user.UUID) {
		e := clienterror.New(clienterror.NotPermitted)
		return &e
	}
	return nil
}

func (h *Hub) handleBanUser(conn *connection, p packet.BanUser) {
	if cerr := h.requireModerator(conn); cerr != nil {
		conn.addr.Send(packet.ErrorPacket{Message: *cerr})
		return
	}
	if err := h.moderation.Ban(p.User); err != nil {
		h.sendModerationErr(conn, err)
		return
	}
	conn.addr.Send(packet.Success{Reason: packet.SuccessBan})
}

func (h *Hub) handleUnbanUser(conn *connection, p packet.UnbanUser) {
	if cerr := h.requireModerator(conn); cerr != nil {
		conn.addr.Send(packet.ErrorPacket{Message: *cerr})
		return
	}
	if err := h.moderation.Unban(p.User); err != nil {
		h.sendModerationErr(conn, err)
		return
	}
	conn.addr.Send(packet.Success{Reason: packet.SuccessUnban})
}

func (h *Hub) handleRequestUserCount(conn *connection) {
	if cerr := h.requireModerator(conn); cerr != nil {
		conn.addr.Send(packet.ErrorPacket{Message: *cerr})
		return
	}
	loggedIn := 0
	for _, us := range h.users {
		loggedIn += len(us.connections)
	}
	conn.addr.Send(packet.UserCount{
		Connections: uint32(len(h.connections)),
		LoggedIn:    uint32(loggedIn),
	})
}

// sendModerationErr distinguishes a protocol-level ClientError (NotPermitted,
// NotBanned) from an unexpected disk failure, which becomes Internal plus a
// warning log rather than leaking the underlying I/O error to the client.
func (h *Hub) sendModerationErr(conn *connection, err error) {
	var ce clienterror.Error
	if errors.As(err, &ce) {
		conn.addr.Send(packet.ErrorPacket{Message: ce})
		return
	}
	zap.S().Warnw("moderation file I/O failure", "err", err)
	conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.Internal)})
}
