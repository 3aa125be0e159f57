// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/parleychat/parley/internal/chat"
)

// MockInviteRepository is a mock implementation of chat.InviteRepository.
type MockInviteRepository struct {
	mock.Mock
}

// NewMockInviteRepository creates a new mock with cleanup and expectation
// assertion registered on the test.
func NewMockInviteRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockInviteRepository {
	m := &MockInviteRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockInviteRepository) Create(ctx context.Context, invite *chat.Invite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *MockInviteRepository) Redeem(ctx context.Context, code string, accountID ulid.ULID) (*chat.Server, error) {
	args := m.Called(ctx, code, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.Server), args.Error(1)
}
