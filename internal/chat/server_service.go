// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package chat

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/parleychat/parley/internal/access"
)

// ServerService provides server lifecycle operations.
type ServerService struct {
	servers ServerRepository
	gate    *access.Gate
}

// NewServerService creates a new ServerService.
func NewServerService(servers ServerRepository, gate *access.Gate) (*ServerService, error) {
	if servers == nil {
		return nil, oops.Code("CHAT_NIL_DEPENDENCY").Errorf("server repository is required")
	}
	if gate == nil {
		return nil, oops.Code("CHAT_NIL_DEPENDENCY").Errorf("access gate is required")
	}
	return &ServerService{servers: servers, gate: gate}, nil
}

// Create creates a server owned by the principal, along with the owner's
// membership row in the same transaction.
func (s *ServerService) Create(ctx context.Context, p access.Principal, name, description string) (*Server, error) {
	server, err := NewServer(name, description, p.AccountID)
	if err != nil {
		return nil, err
	}

	if err := s.servers.CreateWithOwner(ctx, server); err != nil {
		return nil, oops.Code("CHAT_SERVER_CREATE_FAILED").
			With("name", name).
			Wrap(err)
	}
	return server, nil
}

// List returns the servers the principal owns or is a member of.
func (s *ServerService) List(ctx context.Context, p access.Principal) ([]*Server, error) {
	servers, err := s.servers.ListForAccount(ctx, p.AccountID)
	if err != nil {
		return nil, oops.Code("CHAT_SERVER_LIST_FAILED").Wrap(err)
	}
	return servers, nil
}

// Update renames a server or changes its description. Owner only; nil fields
// are left unchanged.
func (s *ServerService) Update(ctx context.Context, p access.Principal, id ulid.ULID, name, description *string) (*Server, error) {
	server, err := s.getServer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireOwner(p, server.OwnerID); err != nil {
		return nil, err
	}

	if name != nil {
		if err := ValidateServerName(*name); err != nil {
			return nil, err
		}
		server.Name = *name
	}
	if description != nil {
		if err := ValidateDescription(*description); err != nil {
			return nil, err
		}
		server.Description = *description
	}
	server.UpdatedAt = time.Now()

	if err := s.servers.Update(ctx, server); err != nil {
		return nil, oops.Code("CHAT_SERVER_UPDATE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return server, nil
}

// Delete removes a server. Owner only; members, messages, and invites go
// with it.
func (s *ServerService) Delete(ctx context.Context, p access.Principal, id ulid.ULID) error {
	server, err := s.getServer(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.RequireOwner(p, server.OwnerID); err != nil {
		return err
	}

	if err := s.servers.Delete(ctx, id); err != nil {
		return oops.Code("CHAT_SERVER_DELETE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return nil
}

func (s *ServerService) getServer(ctx context.Context, id ulid.ULID) (*Server, error) {
	server, err := s.servers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("CHAT_SERVER_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("CHAT_SERVER_GET_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return server, nil
}
