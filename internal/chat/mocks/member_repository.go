// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"
)

// MockMemberRepository is a mock implementation of chat.MemberRepository.
type MockMemberRepository struct {
	mock.Mock
}

// NewMockMemberRepository creates a new mock with cleanup and expectation
// assertion registered on the test.
func NewMockMemberRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMemberRepository {
	m := &MockMemberRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockMemberRepository) Join(ctx context.Context, accountID, serverID ulid.ULID) error {
	args := m.Called(ctx, accountID, serverID)
	return args.Error(0)
}

func (m *MockMemberRepository) Exists(ctx context.Context, accountID, serverID ulid.ULID) (bool, error) {
	args := m.Called(ctx, accountID, serverID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepository) Leave(ctx context.Context, accountID, serverID ulid.ULID) error {
	args := m.Called(ctx, accountID, serverID)
	return args.Error(0)
}
