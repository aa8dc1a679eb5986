// Package packet implements the tagged-union JSON wire codec: every frame
// is an envelope {"m": <tag>, "c": <content>}, decoded in two passes since
// the content shape depends on the tag.
package packet

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/opencraftmc/chatrelay/internal/clienterror"
	"github.com/opencraftmc/chatrelay/internal/model"
)

type envelope struct {
	M string          `json:"m"`
	C json.RawMessage `json:"c,omitempty"`
}

// ServerPacket is the sum type of packets a client sends to the hub.
type ServerPacket interface{ isServerPacket() }

type RequestMojangInfo struct{}

type LoginMojang struct {
	Name          string    `json:"name"`
	UUID          uuid.UUID `json:"uuid"`
	AllowMessages bool      `json:"allow_messages"`
}

type RequestJWT struct{}

type LoginJWT struct {
	Token         string `json:"token"`
	AllowMessages bool   `json:"allow_messages"`
}

type Message struct {
	Content string `json:"content"`
}

type PrivateMessage struct {
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

type BanUser struct {
	User uuid.UUID `json:"user"`
}

type UnbanUser struct {
	User uuid.UUID `json:"user"`
}

type RequestUserCount struct{}

func (RequestMojangInfo) isServerPacket() {}
func (LoginMojang) isServerPacket()       {}
func (RequestJWT) isServerPacket()        {}
func (LoginJWT) isServerPacket()          {}
func (Message) isServerPacket()           {}
func (PrivateMessage) isServerPacket()    {}
func (BanUser) isServerPacket()           {}
func (UnbanUser) isServerPacket()         {}
func (RequestUserCount) isServerPacket()  {}

// DecodeServerPacket decodes one text frame into a ServerPacket. Unknown
// tags are a decode error, per the codec's closed-tag-set contract.
func DecodeServerPacket(data []byte) (ServerPacket, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	decodeContent := func(v any) error {
		if len(env.C) == 0 {
			return nil
		}
		return json.Unmarshal(env.C, v)
	}

	switch env.M {
	case "RequestMojangInfo":
		return RequestMojangInfo{}, nil
	case "LoginMojang":
		var p LoginMojang
		if err := decodeContent(&p); err != nil {
			return nil, fmt.Errorf("decode LoginMojang: %w", err)
		}
		return p, nil
	case "RequestJWT":
		return RequestJWT{}, nil
	case "LoginJWT":
		var p LoginJWT
		if err := decodeContent(&p); err != nil {
			return nil, fmt.Errorf("decode LoginJWT: %w", err)
		}
		return p, nil
	case "Message":
		var p Message
		if err := decodeContent(&p); err != nil {
			return nil, fmt.Errorf("decode Message: %w", err)
		}
		return p, nil
	case "PrivateMessage":
		var p PrivateMessage
		if err := decodeContent(&p); err != nil {
			return nil, fmt.Errorf("decode PrivateMessage: %w", err)
		}
		return p, nil
	case "BanUser":
		var p BanUser
		if err := decodeContent(&p); err != nil {
			return nil, fmt.Errorf("decode BanUser: %w", err)
		}
		return p, nil
	case "UnbanUser":
		var p UnbanUser
		if err := decodeContent(&p); err != nil {
			return nil, fmt.Errorf("decode UnbanUser: %w", err)
		}
		return p, nil
	case "RequestUserCount":
		return RequestUserCount{}, nil
	default:
		return nil, fmt.Errorf("unknown packet tag %q", env.M)
	}
}

// ClientPacket is the sum type of packets the hub sends to a client.
type ClientPacket interface{ isClientPacket() }

type MojangInfo struct {
	SessionHash string `json:"session_hash"`
}

type NewJWT struct {
	Token string `json:"token"`
}

type ChatMessage struct {
	AuthorInfo model.User `json:"author_info"`
	Content    string     `json:"content"`
}

type PrivateChatMessage struct {
	AuthorInfo model.User `json:"author_info"`
	Content    string     `json:"content"`
}

type UserCount struct {
	Connections uint32 `json:"connections"`
	LoggedIn    uint32 `json:"logged_in"`
}

type SuccessReason string

const (
	SuccessLogin SuccessReason = "Login"
	SuccessBan   SuccessReason = "Ban"
	SuccessUnban SuccessReason = "Unban"
)

type Success struct {
	Reason SuccessReason `json:"reason"`
}

type ErrorPacket struct {
	Message clienterror.Error `json:"message"`
}

func (MojangInfo) isClientPacket()         {}
func (NewJWT) isClientPacket()             {}
func (ChatMessage) isClientPacket()        {}
func (PrivateChatMessage) isClientPacket() {}
func (UserCount) isClientPacket()          {}
func (Success) isClientPacket()            {}
func (ErrorPacket) isClientPacket()        {}

func tagOf(p ClientPacket) string {
	switch p.(type) {
	case MojangInfo:
		return "MojangInfo"
	case NewJWT:
		return "NewJWT"
	case ChatMessage:
		return "Message"
	case PrivateChatMessage:
		return "PrivateMessage"
	case UserCount:
		return "UserCount"
	case Success:
		return "Success"
	case ErrorPacket:
		return "Error"
	default:
		return ""
	}
}

// EncodeClientPacket renders a ClientPacket as its wire-envelope bytes.
func EncodeClientPacket(p ClientPacket) ([]byte, error) {
	tag := tagOf(p)
	if tag == "" {
		return nil, fmt.Errorf("encode: unknown client packet type %T", p)
	}
	content, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s content: %w", tag, err)
	}
	return json.Marshal(envelope{M: tag, C: content})
}
