// Package auth implements the two authentication paths the hub drives:
// Mojang session-server verification and bearer-token mint/validate.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// Mojang wraps the Mojang session-server hasJoined check behind a
// timeout-bounded call, following the request-with-timeout shape
// SKevo18-mc-dual-proxy's multiauth.go uses for session-server lookups.
// Canceling the context without a deadline does not interrupt a request
// in flight.
type Mojang struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewMojang builds a client with the given per-request timeout ceiling.
func NewMojang(timeout time.Duration) *Mojang {
	return &Mojang{
		client: &fasthttp.Client{
			Name: "chatrelay",
		},
		timeout: timeout,
	}
}

// HasJoined performs the hasJoined GET for username/serverHash and returns
// the UUID Mojang reports, or an error on network failure, non-200 status,
// or an undecodable body. It never blocks past ctx's deadline or the
// client's configured timeout, whichever is sooner.
func (m *Mojang) HasJoined(ctx context.Context, username, serverHash string) (uuid.UUID, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	q := url.Values{}
	q.Set("username", username)
	q.Set("serverId", serverHash)
	req.SetRequestURI("https://sessionserver.mojang.com/session/minecraft/hasJoined?" + q.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)

	timeout := m.timeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining < timeout {
			timeout = remaining
		}
	}

	if err := m.client.DoTimeout(req, resp, timeout); err != nil {
		return uuid.Nil, fmt.Errorf("hasJoined request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return uuid.Nil, fmt.Errorf("hasJoined returned status %d", resp.StatusCode())
	}

	var body struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return uuid.Nil, fmt.Errorf("decode hasJoined body: %w", err)
	}
	id, err := uuid.Parse(body.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse mojang uuid %q: %w", body.ID, err)
	}
	return id, nil
}
