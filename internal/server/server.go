// Package server owns the HTTP(S) listener: WebSocket upgrades on /ws,
// a read-only /healthz, TLS termination when configured, and a
// per-remote-address connect throttle ahead of the upgrade (ambient
// resiliency, not part of the wire protocol).
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/opencraftmc/chatrelay/internal/config"
	"github.com/opencraftmc/chatrelay/internal/hub"
	"github.com/opencraftmc/chatrelay/internal/session"
)

// Server wraps the HTTP listener and the connect throttle.
type Server struct {
	cfg        *config.Config
	hub        *hub.Hub
	httpServer *http.Server
	limiters   sync.Map // remote IP -> *rate.Limiter
}

// New builds a Server; call Run to start listening.
func New(cfg *config.Config, h *hub.Hub) *Server {
	s := &Server{cfg: cfg, hub: h}

	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWS)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:              cfg.Net.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ip := remoteIP(r)
	if !s.allowConnect(ip) {
		http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
		return
	}
	session.Serve(s.hub, w, r)
}

// allowConnect is governed by its own config knob
// (net.max_connects_per_min), entirely separate from the per-user message
// RateLimiter; a violation here returns HTTP 429 before the upgrade, never
// a ClientError.
func (s *Server) allowConnect(ip string) bool {
	if s.cfg.Net.MaxConnectsPerMinute <= 0 {
		return true
	}
	limAny, _ := s.limiters.LoadOrStore(ip, rate.NewLimiter(
		rate.Every(time.Minute/time.Duration(s.cfg.Net.MaxConnectsPerMinute)),
		s.cfg.Net.MaxConnectsPerMinute,
	))
	return limAny.(*rate.Limiter).Allow()
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Run starts the listener and blocks until ctx is canceled or the server
// fails to start, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.Net.CertFile != "" {
			err = s.httpServer.ListenAndServeTLS(s.cfg.Net.CertFile, s.cfg.Net.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		zap.S().Info("shutting down listener")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
