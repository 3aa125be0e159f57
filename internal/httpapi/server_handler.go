// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/parleychat/parley/internal/access"
	"github.com/parleychat/parley/internal/chat"
)

type createServerRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateServerRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type deleteServerRequest struct {
	ID string `json:"id"`
}

type serverResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func serverJSON(s *chat.Server) serverResponse {
	return serverResponse{
		ID:          s.ID.String(),
		Name:        s.Name,
		Description: s.Description,
		OwnerID:     s.OwnerID.String(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type serverListResponse struct {
	Servers []serverResponse `json:"servers"`
}

func (s *Server) handleCreateServer(w http.ResponseWriter, r *http.Request) {
	p, _ := access.PrincipalFromContext(r.Context())

	var req createServerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	server, err := s.servers.Create(r.Context(), p, req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, serverJSON(server))
}

func (s *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	p, _ := access.PrincipalFromContext(r.Context())

	servers, err := s.servers.List(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := serverListResponse{Servers: make([]serverResponse, 0, len(servers))}
	for _, server := range servers {
		out.Servers = append(out.Servers, serverJSON(server))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateServer(w http.ResponseWriter, r *http.Request) {
	p, _ := access.PrincipalFromContext(r.Context())

	var req updateServerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseID("id", req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	server, err := s.servers.Update(r.Context(), p, id, req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serverJSON(server))
}

func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	p, _ := access.PrincipalFromContext(r.Context())

	var req deleteServerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseID("id", req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.servers.Delete(r.Context(), p, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
