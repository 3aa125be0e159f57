// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package httpapi

import (
	"net"
	"net/http"
	"strings"
	"time"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := requireField("username", req.Username); err != nil {
		writeError(w, r, err)
		return
	}
	if err := requireField("password", req.Password); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, accountResponse{
		ID:        account.ID.String(),
		Username:  account.Username,
		CreatedAt: account.CreatedAt,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := requireField("username", req.Username); err != nil {
		writeError(w, r, err)
		return
	}
	if err := requireField("password", req.Password); err != nil {
		writeError(w, r, err)
		return
	}

	_, token, err := s.auth.Login(r.Context(), req.Username, req.Password, r.UserAgent(), clientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if s.metrics != nil {
		s.metrics.SessionsIssuedTotal.Inc()
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Username: req.Username})
}

// handleLogout revokes the presented token. Revocation is idempotent, so an
// unknown or missing token still yields 204 and leaks nothing about token
// validity. The bearer gate is deliberately not applied here.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, found := strings.CutPrefix(token, "Bearer "); found {
		token = strings.TrimSpace(after)
	}

	if err := s.auth.Logout(r.Context(), token); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// clientIP extracts the remote IP without the port. Session bookkeeping only;
// never used for authorization.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
