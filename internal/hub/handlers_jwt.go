package hub

import (
	"go.uber.org/zap"

	"github.com/opencraftmc/chatrelay/internal/clienterror"
	"github.com/opencraftmc/chatrelay/internal/packet"
)

func (h *Hub) handleRequestJWT(conn *connection) {
	if h.tokenAuthority == nil {
		conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.NotSupported)})
		return
	}
	if conn.user == nil {
		conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.NotLoggedIn)})
		return
	}
	token, err := h.tokenAuthority.Mint(*conn.user)
	if err != nil {
		zap.S().Warnw("failed to mint token", "user", conn.user.Name, "err", err)
		conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.Internal)})
		return
	}
	conn.addr.Send(packet.NewJWT{Token: token})
}

// handleLoginJWT is synchronous, unlike the Mojang path: the token is
// already a self-contained, signed claim, so there is nothing to await.
func (h *Hub) handleLoginJWT(id InternalId, conn *connection, p packet.LoginJWT) {
	if h.tokenAuthority == nil {
		conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.NotSupported)})
		return
	}
	if conn.user != nil {
		conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.AlreadyLoggedIn)})
		return
	}
	user, err := h.tokenAuthority.Validate(p.Token)
	if err != nil {
		conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.LoginFailed)})
		return
	}
	user.AllowMessages = p.AllowMessages
	h.completeLogin(id, conn, user)
}
