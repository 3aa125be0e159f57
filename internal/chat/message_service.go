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

// MessageService provides message operations.
type MessageService struct {
	messages MessageRepository
	gate     *access.Gate
}

// NewMessageService creates a new MessageService.
func NewMessageService(messages MessageRepository, gate *access.Gate) (*MessageService, error) {
	if messages == nil {
		return nil, oops.Code("CHAT_NIL_DEPENDENCY").Errorf("message repository is required")
	}
	if gate == nil {
		return nil, oops.Code("CHAT_NIL_DEPENDENCY").Errorf("access gate is required")
	}
	return &MessageService{messages: messages, gate: gate}, nil
}

// Post creates a message in a server. Member only.
func (s *MessageService) Post(ctx context.Context, p access.Principal, serverID ulid.ULID, content string) (*Message, error) {
	if err := s.gate.RequireMember(ctx, p, serverID); err != nil {
		return nil, err
	}

	message, err := NewMessage(serverID, p.AccountID, content)
	if err != nil {
		return nil, err
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, oops.Code("CHAT_MESSAGE_CREATE_FAILED").
			With("server_id", serverID.String()).
			Wrap(err)
	}
	return message, nil
}

// Edit replaces a message's content. Author only: the calling principal is
// compared against the message row's stored author ID.
func (s *MessageService) Edit(ctx context.Context, p access.Principal, id ulid.ULID, content string) (*Message, error) {
	message, err := s.getMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireAuthor(p, message.AuthorID); err != nil {
		return nil, err
	}
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.messages.UpdateContent(ctx, id, content, now); err != nil {
		return nil, oops.Code("CHAT_MESSAGE_UPDATE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}

	message.Content = content
	message.UpdatedAt = now
	return message, nil
}

// Delete removes a message. Author only.
func (s *MessageService) Delete(ctx context.Context, p access.Principal, id ulid.ULID) error {
	message, err := s.getMessage(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.RequireAuthor(p, message.AuthorID); err != nil {
		return err
	}

	if err := s.messages.Delete(ctx, id); err != nil {
		return oops.Code("CHAT_MESSAGE_DELETE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return nil
}

// List returns a server's messages, newest first, with author usernames
// attached. Member only.
func (s *MessageService) List(ctx context.Context, p access.Principal, serverID ulid.ULID, limit, offset int) ([]*MessageWithAuthor, error) {
	if err := s.gate.RequireMember(ctx, p, serverID); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.messages.ListByServer(ctx, serverID, ClampLimit(limit), offset)
	if err != nil {
		return nil, oops.Code("CHAT_MESSAGE_LIST_FAILED").
			With("server_id", serverID.String()).
			Wrap(err)
	}
	return messages, nil
}

func (s *MessageService) getMessage(ctx context.Context, id ulid.ULID) (*Message, error) {
	message, err := s.messages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("CHAT_MESSAGE_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("CHAT_MESSAGE_GET_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return message, nil
}
