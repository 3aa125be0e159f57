// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package httpapi exposes the Parley HTTP API: authentication, servers,
// invites, membership, and messages under /v1. It owns request decoding,
// error-to-status mapping, bearer authentication middleware, CORS, and
// per-route metrics; all domain decisions live in the auth and chat services.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/cors"
	"github.com/samber/oops"

	"github.com/parleychat/parley/internal/access"
	"github.com/parleychat/parley/internal/auth"
	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/observability"
)

// Options configures the API server.
type Options struct {
	// Addr is the listen address, "host:port".
	Addr string

	// CORSOrigins lists allowed origins; empty means same-origin only.
	CORSOrigins []string

	// Metrics, when non-nil, receives per-route request counts and latency.
	Metrics *observability.Metrics
}

// Deps are the services the handlers delegate to. All fields are required.
type Deps struct {
	Auth     *auth.Service
	Gate     *access.Gate
	Servers  *chat.ServerService
	Invites  *chat.InviteService
	Members  *chat.MemberService
	Messages *chat.MessageService
}

// Server is the Parley HTTP API server.
type Server struct {
	addr        string
	corsOrigins []string
	metrics     *observability.Metrics

	auth     *auth.Service
	gate     *access.Gate
	servers  *chat.ServerService
	invites  *chat.InviteService
	members  *chat.MemberService
	messages *chat.MessageService

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates the API server. It does not start listening.
func NewServer(opts Options, deps Deps) (*Server, error) {
	if opts.Addr == "" {
		return nil, oops.Code("HTTPAPI_MISSING_ADDR").Errorf("listen address is required")
	}
	if deps.Auth == nil || deps.Gate == nil || deps.Servers == nil ||
		deps.Invites == nil || deps.Members == nil || deps.Messages == nil {
		return nil, oops.Code("HTTPAPI_NIL_DEPENDENCY").Errorf("all services are required")
	}

	return &Server{
		addr:        opts.Addr,
		corsOrigins: opts.CORSOrigins,
		metrics:     opts.Metrics,
		auth:        deps.Auth,
		gate:        deps.Gate,
		servers:     deps.Servers,
		invites:     deps.Invites,
		members:     deps.Members,
		messages:    deps.Messages,
	}, nil
}

// Handler builds the full route table. Exposed for httptest-based tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	public := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.instrument(pattern, h))
	}
	authed := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.instrument(pattern, withAuth(s.gate, h)))
	}

	public("POST /v1/auth/register", s.handleRegister)
	public("POST /v1/auth/login", s.handleLogin)
	// Logout is idempotent and skips the gate so revoked tokens still 204.
	public("POST /v1/auth/logout", s.handleLogout)

	authed("POST /v1/server", s.handleCreateServer)
	authed("GET /v1/server", s.handleListServers)
	authed("PATCH /v1/server", s.handleUpdateServer)
	authed("DELETE /v1/server", s.handleDeleteServer)

	authed("POST /v1/invite", s.handleCreateInvite)

	authed("POST /v1/member", s.handleJoin)
	authed("DELETE /v1/member", s.handleLeave)

	authed("POST /v1/message", s.handlePostMessage)
	authed("PATCH /v1/message", s.handleEditMessage)
	authed("DELETE /v1/message", s.handleDeleteMessage)
	authed("GET /v1/message", s.handleListMessages)

	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(mux)
}

// instrument wraps a route with the metrics middleware. The registered
// pattern, not the raw URL, labels the metric to keep cardinality bounded.
func (s *Server) instrument(pattern string, next http.Handler) http.Handler {
	return withMetrics(s.metrics, pattern, next)
}

// Start begins serving the API. It returns an error channel that receives
// any serve failure after startup; the channel closes on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server, waiting for in-flight requests
// up to the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	slog.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
