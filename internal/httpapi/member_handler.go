// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package httpapi

import (
	"net/http"

	"github.com/parleychat/parley/internal/access"
)

type joinRequest struct {
	Code string `json:"code"`
}

type leaveRequest struct {
	Server string `json:"server"`
}

// handleJoin redeems an invite code. Redeeming a code for a server the
// caller already belongs to is a successful no-op, so retried requests are
// safe.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	p, _ := access.PrincipalFromContext(r.Context())

	var req joinRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := requireField("code", req.Code); err != nil {
		writeError(w, r, err)
		return
	}

	server, err := s.invites.Redeem(r.Context(), p, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serverJSON(server))
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	p, _ := access.PrincipalFromContext(r.Context())

	var req leaveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	serverID, err := parseID("server", req.Server)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.members.Leave(r.Context(), p, serverID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
