// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package postgres

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/parleychat/parley/internal/chat"
)

// MemberRepository implements chat.MemberRepository using PostgreSQL.
type MemberRepository struct {
	pool poolIface
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(pool poolIface) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// Join creates a membership row. The (account_id, server_id) pair is the
// primary key; joining twice is a no-op rather than a constraint violation.
func (r *MemberRepository) Join(ctx context.Context, accountID, serverID ulid.ULID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO members (account_id, server_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (account_id, server_id) DO NOTHING
	`, accountID.String(), serverID.String())
	if err != nil {
		return oops.Code("MEMBER_JOIN_FAILED").
			With("account_id", accountID.String()).
			With("server_id", serverID.String()).
			Wrap(err)
	}
	return nil
}

// Exists reports whether the account holds membership in the server.
func (r *MemberRepository) Exists(ctx context.Context, accountID, serverID ulid.ULID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM members WHERE account_id = $1 AND server_id = $2
		)
	`, accountID.String(), serverID.String()).Scan(&exists)
	if err != nil {
		return false, oops.Code("MEMBER_EXISTS_FAILED").
			With("account_id", accountID.String()).
			With("server_id", serverID.String()).
			Wrap(err)
	}
	return exists, nil
}

// Leave removes a membership row.
func (r *MemberRepository) Leave(ctx context.Context, accountID, serverID ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM members WHERE account_id = $1 AND server_id = $2
	`, accountID.String(), serverID.String())
	if err != nil {
		return oops.Code("MEMBER_LEAVE_FAILED").
			With("account_id", accountID.String()).
			With("server_id", serverID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("MEMBER_NOT_FOUND").
			With("account_id", accountID.String()).
			With("server_id", serverID.String()).
			Wrap(chat.ErrNotFound)
	}
	return nil
}
