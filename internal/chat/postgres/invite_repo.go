// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/parleychat/parley/internal/chat"
)

// InviteRepository implements chat.InviteRepository using PostgreSQL.
type InviteRepository struct {
	pool poolIface
}

// NewInviteRepository creates a new InviteRepository.
func NewInviteRepository(pool poolIface) *InviteRepository {
	return &InviteRepository{pool: pool}
}

// Create stores a new invite.
// A unique violation on the code index surfaces as chat.ErrDuplicateCode so
// the caller can regenerate.
func (r *InviteRepository) Create(ctx context.Context, invite *chat.Invite) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO invites (id, server_id, code, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		invite.ID.String(),
		invite.ServerID.String(),
		invite.Code,
		invite.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("INVITE_DUPLICATE_CODE").
				With("server_id", invite.ServerID.String()).
				Wrap(chat.ErrDuplicateCode)
		}
		return oops.Code("INVITE_CREATE_FAILED").
			With("server_id", invite.ServerID.String()).
			Wrap(err)
	}
	return nil
}

// Redeem looks up an invite by code and joins the account to its server in
// one transaction. The membership insert is a conflict-tolerant no-op, so
// redeeming while already a member neither errors nor duplicates the row.
func (r *InviteRepository) Redeem(ctx context.Context, code string, accountID ulid.ULID) (*chat.Server, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, oops.Code("INVITE_TX_BEGIN_FAILED").Wrap(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		SELECT s.id, s.name, s.description, s.owner_id, s.created_at, s.updated_at
		FROM invites i
		JOIN servers s ON s.id = i.server_id
		WHERE i.code = $1
	`, code)

	server, err := scanServer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("INVITE_NOT_FOUND").Wrap(chat.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("INVITE_LOOKUP_FAILED").Wrap(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO members (account_id, server_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (account_id, server_id) DO NOTHING
	`, accountID.String(), server.ID.String())
	if err != nil {
		return nil, oops.Code("INVITE_JOIN_FAILED").
			With("server_id", server.ID.String()).
			Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.Code("INVITE_TX_COMMIT_FAILED").Wrap(err)
	}
	return server, nil
}
