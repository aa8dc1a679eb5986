// Package model holds the identity type shared across the chat relay:
// the packet codec, the hub, the authenticator and the moderation store
// all exchange model.User rather than duplicating its shape.
package model

import "github.com/google/uuid"

// User is an authenticated identity. UUID is the durable key used by
// moderation; Name is the display/addressing key used by other clients.
type User struct {
	Name          string    `json:"name"`
	UUID          uuid.UUID `json:"uuid"`
	AllowMessages bool      `json:"allow_messages"`
}
