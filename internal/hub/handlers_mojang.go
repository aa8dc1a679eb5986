package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/opencraftmc/chatrelay/internal/clienterror"
	"github.com/opencraftmc/chatrelay/internal/model"
	"github.com/opencraftmc/chatrelay/internal/packet"
)

func (h *Hub) handleRequestMojangInfo(conn *connection) {
	nonce := h.rng.sessionNonce()
	hash := encodeSessionHash(nonce[:])
	conn.sessionHash = hash
	conn.addr.Send(packet.MojangInfo{SessionHash: hash})
}

// handleLoginMojang starts the async hasJoined verification: the first
// half fires the HTTPS call on a worker goroutine and returns immediately,
// per design note (a). The second half runs as handleMojangResult, once
// the hub re-acquires exclusive access to its state.
func (h *Hub) handleLoginMojang(ctx context.Context, id InternalId, conn *connection, p packet.LoginMojang) {
	if conn.user != nil {
		conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.AlreadyLoggedIn)})
		return
	}
	if conn.sessionHash == "" {
		conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.MojangRequestMissing)})
		return
	}

	hash := conn.sessionHash
	name := p.Name
	claimed := p.UUID
	allowMessages := p.AllowMessages

	go func() {
		result, err := h.mojang.HasJoined(ctx, name, hash)
		h.mojangResult <- mojangResultMsg{
			id:            id,
			name:          name,
			claimedUUID:   claimed,
			allowMessages: allowMessages,
			result:        result,
			err:           err,
		}
	}()
}

// handleMojangResult is the continuation of handleLoginMojang. It must
// re-resolve the connection (it may have disappeared) and re-check login
// state (the client may have logged in via LoginJWT meanwhile).
func (h *Hub) handleMojangResult(m mojangResultMsg) {
	conn, ok := h.connections[m.id]
	if !ok {
		return
	}
	if conn.user != nil {
		return
	}

	if m.err != nil {
		zap.S().Warnw("mojang hasJoined failed", "conn", m.id, "user", m.name, "err", m.err)
		conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.LoginFailed)})
		return
	}
	if m.result != m.claimedUUID {
		conn.addr.Send(packet.ErrorPacket{Message: clienterror.New(clienterror.InvalidId)})
		return
	}

	zap.S().Infow("mojang login verified", "conn", m.id, "user", m.name, "uuid", m.claimedUUID)
	user := model.User{Name: m.name, UUID: m.claimedUUID, AllowMessages: m.allowMessages}
	h.completeLogin(m.id, conn, user)
}
