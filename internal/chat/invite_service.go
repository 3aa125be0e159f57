// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package chat

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/parleychat/parley/internal/access"
)

// InviteService provides invite creation and redemption.
type InviteService struct {
	invites InviteRepository
	servers ServerRepository
	gate    *access.Gate
}

// NewInviteService creates a new InviteService.
func NewInviteService(invites InviteRepository, servers ServerRepository, gate *access.Gate) (*InviteService, error) {
	if invites == nil {
		return nil, oops.Code("CHAT_NIL_DEPENDENCY").Errorf("invite repository is required")
	}
	if servers == nil {
		return nil, oops.Code("CHAT_NIL_DEPENDENCY").Errorf("server repository is required")
	}
	if gate == nil {
		return nil, oops.Code("CHAT_NIL_DEPENDENCY").Errorf("access gate is required")
	}
	return &InviteService{invites: invites, servers: servers, gate: gate}, nil
}

// Create mints a new invite code for a server. Owner only.
// A code colliding with an existing invite is regenerated, at most
// MaxCodeAttempts times, before the operation fails.
func (s *InviteService) Create(ctx context.Context, p access.Principal, serverID ulid.ULID) (*Invite, error) {
	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("CHAT_SERVER_NOT_FOUND").
				With("id", serverID.String()).
				Wrap(err)
		}
		return nil, oops.Code("CHAT_SERVER_GET_FAILED").
			With("id", serverID.String()).
			Wrap(err)
	}
	if err := s.gate.RequireOwner(p, server.OwnerID); err != nil {
		return nil, err
	}

	var invite *Invite
	backoff := retry.WithMaxRetries(MaxCodeAttempts-1, retry.NewConstant(time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		inv, genErr := NewInvite(serverID)
		if genErr != nil {
			return genErr
		}
		if createErr := s.invites.Create(ctx, inv); createErr != nil {
			if errors.Is(createErr, ErrDuplicateCode) {
				return retry.RetryableError(createErr)
			}
			return createErr
		}
		invite = inv
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			return nil, oops.Code("CHAT_CODE_SPACE_EXHAUSTED").
				With("attempts", MaxCodeAttempts).
				Errorf("could not generate a unique invite code")
		}
		return nil, oops.Code("CHAT_INVITE_CREATE_FAILED").
			With("server_id", serverID.String()).
			Wrap(err)
	}

	return invite, nil
}

// Redeem joins the principal to the server behind the invite code.
// Redeeming a code for a server the principal already belongs to is a
// successful no-op.
func (s *InviteService) Redeem(ctx context.Context, p access.Principal, code string) (*Server, error) {
	if code == "" {
		return nil, oops.Code("CHAT_INVALID_CODE").Errorf("invite code cannot be empty")
	}

	server, err := s.invites.Redeem(ctx, code, p.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("CHAT_INVITE_NOT_FOUND").Wrap(err)
		}
		return nil, oops.Code("CHAT_INVITE_REDEEM_FAILED").Wrap(err)
	}
	return server, nil
}
