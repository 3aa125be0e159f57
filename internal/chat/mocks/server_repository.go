// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package mocks provides testify mock implementations of the chat interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/parleychat/parley/internal/chat"
)

// MockServerRepository is a mock implementation of chat.ServerRepository.
type MockServerRepository struct {
	mock.Mock
}

// NewMockServerRepository creates a new mock with cleanup and expectation
// assertion registered on the test.
func NewMockServerRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockServerRepository {
	m := &MockServerRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockServerRepository) CreateWithOwner(ctx context.Context, server *chat.Server) error {
	args := m.Called(ctx, server)
	return args.Error(0)
}

func (m *MockServerRepository) GetByID(ctx context.Context, id ulid.ULID) (*chat.Server, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.Server), args.Error(1)
}

func (m *MockServerRepository) ListForAccount(ctx context.Context, accountID ulid.ULID) ([]*chat.Server, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chat.Server), args.Error(1)
}

func (m *MockServerRepository) Update(ctx context.Context, server *chat.Server) error {
	args := m.Called(ctx, server)
	return args.Error(0)
}

func (m *MockServerRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
