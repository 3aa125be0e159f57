// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/parleychat/parley/internal/access"
)

type createInviteRequest struct {
	Server string `json:"server"`
}

type inviteResponse struct {
	Code      string    `json:"code"`
	ServerID  string    `json:"server_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	p, _ := access.PrincipalFromContext(r.Context())

	var req createInviteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	serverID, err := parseID("server", req.Server)
	if err != nil {
		writeError(w, r, err)
		return
	}

	invite, err := s.invites.Create(r.Context(), p, serverID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, inviteResponse{
		Code:      invite.Code,
		ServerID:  invite.ServerID.String(),
		CreatedAt: invite.CreatedAt,
	})
}
