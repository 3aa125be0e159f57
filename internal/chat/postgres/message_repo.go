// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/parleychat/parley/internal/chat"
)

// MessageRepository implements chat.MessageRepository using PostgreSQL.
type MessageRepository struct {
	pool poolIface
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool poolIface) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create stores a new message.
func (r *MessageRepository) Create(ctx context.Context, message *chat.Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, server_id, author_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		message.ID.String(),
		message.ServerID.String(),
		message.AuthorID.String(),
		message.Content,
		message.CreatedAt,
		message.UpdatedAt,
	)
	if err != nil {
		return oops.Code("MESSAGE_CREATE_FAILED").
			With("server_id", message.ServerID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a message by ID.
func (r *MessageRepository) GetByID(ctx context.Context, id ulid.ULID) (*chat.Message, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, server_id, author_id, content, created_at, updated_at
		FROM messages
		WHERE id = $1
	`, id.String())

	message, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MESSAGE_NOT_FOUND").
			With("id", id.String()).
			Wrap(chat.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("MESSAGE_GET_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return message, nil
}

// UpdateContent replaces a message's content.
func (r *MessageRepository) UpdateContent(ctx context.Context, id ulid.ULID, content string, updatedAt time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE messages SET content = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), content, updatedAt)
	if err != nil {
		return oops.Code("MESSAGE_UPDATE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("MESSAGE_NOT_FOUND").
			With("id", id.String()).
			Wrap(chat.ErrNotFound)
	}
	return nil
}

// Delete removes a message.
func (r *MessageRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM messages WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("MESSAGE_DELETE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("MESSAGE_NOT_FOUND").
			With("id", id.String()).
			Wrap(chat.ErrNotFound)
	}
	return nil
}

// ListByServer retrieves messages for a server, newest first, with the
// author's username attached. ULIDs sort lexicographically by creation time,
// so ordering by id descending yields newest first.
func (r *MessageRepository) ListByServer(ctx context.Context, serverID ulid.ULID, limit, offset int) ([]*chat.MessageWithAuthor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.server_id, m.author_id, m.content, m.created_at, m.updated_at, a.username
		FROM messages m
		JOIN accounts a ON a.id = m.author_id
		WHERE m.server_id = $1
		ORDER BY m.id DESC
		LIMIT $2 OFFSET $3
	`, serverID.String(), limit, offset)
	if err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").
			With("server_id", serverID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var messages []*chat.MessageWithAuthor
	for rows.Next() {
		var m chat.MessageWithAuthor
		var idStr, serverIDStr, authorIDStr string
		if err := rows.Scan(&idStr, &serverIDStr, &authorIDStr, &m.Content, &m.CreatedAt, &m.UpdatedAt, &m.AuthorUsername); err != nil {
			return nil, oops.Code("MESSAGE_SCAN_FAILED").Wrap(err)
		}
		if m.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.Code("MESSAGE_CORRUPT_ID").With("id", idStr).Wrap(err)
		}
		if m.ServerID, err = ulid.Parse(serverIDStr); err != nil {
			return nil, oops.Code("MESSAGE_CORRUPT_SERVER_ID").With("server_id", serverIDStr).Wrap(err)
		}
		if m.AuthorID, err = ulid.Parse(authorIDStr); err != nil {
			return nil, oops.Code("MESSAGE_CORRUPT_AUTHOR_ID").With("author_id", authorIDStr).Wrap(err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MESSAGE_ROWS_ERROR").Wrap(err)
	}
	return messages, nil
}

// scanMessage scans a single message row.
func scanMessage(row pgx.Row) (*chat.Message, error) {
	var m chat.Message
	var idStr, serverIDStr, authorIDStr string

	if err := row.Scan(&idStr, &serverIDStr, &authorIDStr, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("MESSAGE_CORRUPT_ID").With("id", idStr).Wrap(err)
	}
	serverID, err := ulid.Parse(serverIDStr)
	if err != nil {
		return nil, oops.Code("MESSAGE_CORRUPT_SERVER_ID").With("server_id", serverIDStr).Wrap(err)
	}
	authorID, err := ulid.Parse(authorIDStr)
	if err != nil {
		return nil, oops.Code("MESSAGE_CORRUPT_AUTHOR_ID").With("author_id", authorIDStr).Wrap(err)
	}
	m.ID = id
	m.ServerID = serverID
	m.AuthorID = authorID
	return &m, nil
}
