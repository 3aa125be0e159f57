// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package chat

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxMessageLength bounds message content.
const MaxMessageLength = 4000

// Message pagination bounds.
const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 100
)

// Message represents a message posted to a server.
type Message struct {
	ID        ulid.ULID
	ServerID  ulid.ULID
	AuthorID  ulid.ULID
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MessageWithAuthor is a message joined with its author's username, as
// returned by listings.
type MessageWithAuthor struct {
	Message
	AuthorUsername string
}

// NewMessage creates a validated Message.
func NewMessage(serverID, authorID ulid.ULID, content string) (*Message, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Message{
		ID:        ulid.Make(),
		ServerID:  serverID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateContent validates message content.
func ValidateContent(content string) error {
	if content == "" {
		return oops.Code("CHAT_INVALID_CONTENT").Errorf("message content cannot be empty")
	}
	if len(content) > MaxMessageLength {
		return oops.Code("CHAT_INVALID_CONTENT").
			With("max", MaxMessageLength).
			Errorf("message content must be at most %d characters", MaxMessageLength)
	}
	return nil
}

// ClampLimit normalizes a requested page size into the allowed range.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		return MaxMessageLimit
	}
	return limit
}

// MessageRepository manages message persistence.
type MessageRepository interface {
	// Create stores a new message.
	Create(ctx context.Context, message *Message) error

	// GetByID retrieves a message by ID. Returns ErrNotFound (wrapped) when
	// no message matches.
	GetByID(ctx context.Context, id ulid.ULID) (*Message, error)

	// UpdateContent replaces a message's content.
	UpdateContent(ctx context.Context, id ulid.ULID, content string, updatedAt time.Time) error

	// Delete removes a message.
	Delete(ctx context.Context, id ulid.ULID) error

	// ListByServer retrieves messages for a server, newest first, with the
	// author's username attached.
	ListByServer(ctx context.Context, serverID ulid.ULID, limit, offset int) ([]*MessageWithAuthor, error)
}
