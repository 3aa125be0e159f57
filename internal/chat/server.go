// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package chat

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Server name constraints.
const (
	MinServerNameLength = 1
	MaxServerNameLength = 100
)

// MaxDescriptionLength bounds server descriptions.
const MaxDescriptionLength = 1000

// Server represents a community that members exchange messages in.
type Server struct {
	ID          ulid.ULID
	Name        string
	Description string
	OwnerID     ulid.ULID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewServer creates a validated Server owned by the given account.
func NewServer(name, description string, ownerID ulid.ULID) (*Server, error) {
	if err := ValidateServerName(name); err != nil {
		return nil, err
	}
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}
	if ownerID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("CHAT_INVALID_OWNER").Errorf("owner ID cannot be zero")
	}

	now := time.Now()
	return &Server{
		ID:          ulid.Make(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateServerName validates a server name.
func ValidateServerName(name string) error {
	if len(name) < MinServerNameLength {
		return oops.Code("CHAT_INVALID_NAME").Errorf("server name cannot be empty")
	}
	if len(name) > MaxServerNameLength {
		return oops.Code("CHAT_INVALID_NAME").
			With("max", MaxServerNameLength).
			Errorf("server name must be at most %d characters", MaxServerNameLength)
	}
	return nil
}

// ValidateDescription validates a server description.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return oops.Code("CHAT_INVALID_DESCRIPTION").
			With("max", MaxDescriptionLength).
			Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

// ServerRepository manages server persistence.
type ServerRepository interface {
	// CreateWithOwner stores a new server and the owner's membership row in
	// one transaction, so a server never exists without at least one member.
	CreateWithOwner(ctx context.Context, server *Server) error

	// GetByID retrieves a server by ID. Returns ErrNotFound (wrapped) when
	// no server matches.
	GetByID(ctx context.Context, id ulid.ULID) (*Server, error)

	// ListForAccount retrieves the servers an account owns or is a member
	// of, newest first.
	ListForAccount(ctx context.Context, accountID ulid.ULID) ([]*Server, error)

	// Update persists name and description changes.
	Update(ctx context.Context, server *Server) error

	// Delete removes a server. Dependent members, messages, and invites are
	// removed by the store's cascade rules.
	Delete(ctx context.Context, id ulid.ULID) error
}
