package hub

import (
	"go.uber.org/zap"

	"github.com/opencraftmc/chatrelay/internal/clienterror"
	"github.com/opencraftmc/chatrelay/internal/packet"
)

// checkCanSend runs the steps shared by Message and PrivateMessage: login,
// content validation, ban check, rate limit. It returns the sender's
// userSession on success.
func (h *Hub) checkCanSend(conn *connection, content string) (*userSession, *clienterror.Error) {
	if conn.user == nil {
		e := clienterror.New(clienterror.NotLoggedIn)
		return nil, &e
	}
	if err := validateContent(content, h.cfg.Message.MaxLength); err != nil {
		return nil, err
	}
	if h.moderation.IsBanned(conn.user.UUID) {
		e := clienterror.New(clienterror.Banned)
		return nil, &e
	}
	us := h.users[conn.user.Name]
	if !us.limiter.Allow() {
		e := clienterror.New(clienterror.RateLimited)
		return nil, &e
	}
	return us, nil
}

func (h *Hub) handleMessage(conn *connection, p packet.Message) {
	if _, cerr := h.checkCanSend(conn, p.Content); cerr != nil {
		conn.addr.Send(packet.ErrorPacket{Message: *cerr})
		return
	}

	out := packet.ChatMessage{AuthorInfo: *conn.user, Content: p.Content}
	for _, c := range h.connections {
		if c.user == nil {
			continue
		}
		c.addr.Send(out)
	}
}

func (h *Hub) handlePrivateMessage(conn *connection, p packet.PrivateMessage) {
	if _, cerr := h.checkCanSend(conn, p.Content); cerr != nil {
		conn.addr.Send(packet.ErrorPacket{Message: *cerr})
		return
	}

	receiver, ok := h.users[p.Receiver]
	if !ok {
		zap.S().Debugw("private message to unknown user dropped", "receiver", p.Receiver)
		return
	}

	out := packet.PrivateChatMessage{AuthorInfo: *conn.user, Content: p.Content}
	delivered := false
	for rid := range receiver.connections {
		rc, ok := h.connections[rid]
		if !ok || rc.user == nil || !rc.user.AllowMessages {
			continue
		}
		rc.addr.Send(out)
		delivered = true
	}
	if !delivered {
		conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.PrivateMessageNotAccepted)})
	}
}
