// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/parleychat/parley/internal/chat"
)

// ServerRepository implements chat.ServerRepository using PostgreSQL.
type ServerRepository struct {
	pool poolIface
}

// NewServerRepository creates a new ServerRepository.
func NewServerRepository(pool poolIface) *ServerRepository {
	return &ServerRepository{pool: pool}
}

// CreateWithOwner stores a new server and the owner's membership row in one
// transaction. A crash between the two statements must not leave a server
// with no members.
func (r *ServerRepository) CreateWithOwner(ctx context.Context, server *chat.Server) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("SERVER_TX_BEGIN_FAILED").Wrap(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO servers (id, name, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		server.ID.String(),
		server.Name,
		server.Description,
		server.OwnerID.String(),
		server.CreatedAt,
		server.UpdatedAt,
	)
	if err != nil {
		return oops.Code("SERVER_CREATE_FAILED").
			With("operation", "insert server").
			With("name", server.Name).
			Wrap(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO members (account_id, server_id, joined_at)
		VALUES ($1, $2, $3)
	`,
		server.OwnerID.String(),
		server.ID.String(),
		server.CreatedAt,
	)
	if err != nil {
		return oops.Code("SERVER_CREATE_FAILED").
			With("operation", "insert owner membership").
			With("server_id", server.ID.String()).
			Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("SERVER_TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// GetByID retrieves a server by ID.
func (r *ServerRepository) GetByID(ctx context.Context, id ulid.ULID) (*chat.Server, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM servers
		WHERE id = $1
	`, id.String())

	server, err := scanServer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SERVER_NOT_FOUND").
			With("id", id.String()).
			Wrap(chat.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SERVER_GET_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return server, nil
}

// ListForAccount retrieves the servers an account owns or is a member of,
// newest first.
func (r *ServerRepository) ListForAccount(ctx context.Context, accountID ulid.ULID) ([]*chat.Server, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.description, s.owner_id, s.created_at, s.updated_at
		FROM servers s
		LEFT JOIN members m ON m.server_id = s.id AND m.account_id = $1
		WHERE s.owner_id = $1 OR m.account_id IS NOT NULL
		ORDER BY s.id DESC
	`, accountID.String())
	if err != nil {
		return nil, oops.Code("SERVER_LIST_FAILED").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var servers []*chat.Server
	for rows.Next() {
		server, err := scanServer(rows)
		if err != nil {
			return nil, oops.Code("SERVER_SCAN_FAILED").Wrap(err)
		}
		servers = append(servers, server)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SERVER_ROWS_ERROR").Wrap(err)
	}
	return servers, nil
}

// Update persists name and description changes.
func (r *ServerRepository) Update(ctx context.Context, server *chat.Server) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE servers SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`,
		server.ID.String(),
		server.Name,
		server.Description,
		server.UpdatedAt,
	)
	if err != nil {
		return oops.Code("SERVER_UPDATE_FAILED").
			With("id", server.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SERVER_NOT_FOUND").
			With("id", server.ID.String()).
			Wrap(chat.ErrNotFound)
	}
	return nil
}

// Delete removes a server. Members, messages, and invites cascade.
func (r *ServerRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM servers WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("SERVER_DELETE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SERVER_NOT_FOUND").
			With("id", id.String()).
			Wrap(chat.ErrNotFound)
	}
	return nil
}

// scanServer scans a single server row.
func scanServer(row pgx.Row) (*chat.Server, error) {
	var s chat.Server
	var idStr, ownerIDStr string

	if err := row.Scan(&idStr, &s.Name, &s.Description, &ownerIDStr, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SERVER_CORRUPT_ID").With("id", idStr).Wrap(err)
	}
	ownerID, err := ulid.Parse(ownerIDStr)
	if err != nil {
		return nil, oops.Code("SERVER_CORRUPT_OWNER_ID").With("owner_id", ownerIDStr).Wrap(err)
	}
	s.ID = id
	s.OwnerID = ownerID
	return &s, nil
}
