// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/parleychat/parley/internal/access"
	"github.com/parleychat/parley/internal/chat"
)

type postMessageRequest struct {
	Server  string `json:"server"`
	Content string `json:"content"`
}

type editMessageRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type deleteMessageRequest struct {
	ID string `json:"id"`
}

type messageResponse struct {
	ID             string    `json:"id"`
	ServerID       string    `json:"server_id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func messageJSON(m *chat.Message) messageResponse {
	return messageResponse{
		ID:        m.ID.String(),
		ServerID:  m.ServerID.String(),
		AuthorID:  m.AuthorID.String(),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type messageListResponse struct {
	Messages []messageResponse `json:"messages"`
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	p, _ := access.PrincipalFromContext(r.Context())

	var req postMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	serverID, err := parseID("server", req.Server)
	if err != nil {
		writeError(w, r, err)
		return
	}

	message, err := s.messages.Post(r.Context(), p, serverID, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if s.metrics != nil {
		s.metrics.MessagesPostedTotal.Inc()
	}
	writeJSON(w, http.StatusCreated, messageJSON(message))
}

func (s *Server) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	p, _ := access.PrincipalFromContext(r.Context())

	var req editMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseID("id", req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	message, err := s.messages.Edit(r.Context(), p, id, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageJSON(message))
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	p, _ := access.PrincipalFromContext(r.Context())

	var req deleteMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseID("id", req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.messages.Delete(r.Context(), p, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleListMessages returns a page of a server's messages, newest first.
// limit defaults to 50 and is capped at 100; offset defaults to 0.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	p, _ := access.PrincipalFromContext(r.Context())

	serverID, err := parseID("server", r.URL.Query().Get("server"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := parseIntQuery(r, "offset", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	messages, err := s.messages.List(r.Context(), p, serverID, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := messageListResponse{Messages: make([]messageResponse, 0, len(messages))}
	for _, m := range messages {
		resp := messageJSON(&m.Message)
		resp.AuthorUsername = m.AuthorUsername
		out.Messages = append(out.Messages, resp)
	}
	writeJSON(w, http.StatusOK, out)
}
