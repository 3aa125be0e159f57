// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package chat

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/parleychat/parley/internal/access"
)

// MemberService provides membership operations.
type MemberService struct {
	members MemberRepository
	gate    *access.Gate
}

// NewMemberService creates a new MemberService.
func NewMemberService(members MemberRepository, gate *access.Gate) (*MemberService, error) {
	if members == nil {
		return nil, oops.Code("CHAT_NIL_DEPENDENCY").Errorf("member repository is required")
	}
	if gate == nil {
		return nil, oops.Code("CHAT_NIL_DEPENDENCY").Errorf("access gate is required")
	}
	return &MemberService{members: members, gate: gate}, nil
}

// Leave removes the principal's membership in a server. Member only.
func (s *MemberService) Leave(ctx context.Context, p access.Principal, serverID ulid.ULID) error {
	if err := s.gate.RequireMember(ctx, p, serverID); err != nil {
		return err
	}

	if err := s.members.Leave(ctx, p.AccountID, serverID); err != nil {
		return oops.Code("CHAT_LEAVE_FAILED").
			With("server_id", serverID.String()).
			Wrap(err)
	}
	return nil
}
