// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package postgres

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/chat"
)

func TestMemberRepository_Join(t *testing.T) {
	t.Run("inserts a membership row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		accountID, serverID := ulid.Make(), ulid.Make()
		mock.ExpectExec(`INSERT INTO members`).
			WithArgs(accountID.String(), serverID.String()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewMemberRepository(mock)
		require.NoError(t, repo.Join(context.Background(), accountID, serverID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("joining twice is a no-op", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		accountID, serverID := ulid.Make(), ulid.Make()
		mock.ExpectExec(`INSERT INTO members`).
			WithArgs(accountID.String(), serverID.String()).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		repo := NewMemberRepository(mock)
		require.NoError(t, repo.Join(context.Background(), accountID, serverID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemberRepository_Exists(t *testing.T) {
	tests := []struct {
		name   string
		exists bool
	}{
		{name: "member", exists: true},
		{name: "not a member", exists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			accountID, serverID := ulid.Make(), ulid.Make()
			rows := pgxmock.NewRows([]string{"exists"}).AddRow(tt.exists)
			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs(accountID.String(), serverID.String()).
				WillReturnRows(rows)

			repo := NewMemberRepository(mock)
			got, err := repo.Exists(context.Background(), accountID, serverID)
			require.NoError(t, err)
			assert.Equal(t, tt.exists, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMemberRepository_Leave(t *testing.T) {
	t.Run("removes the membership row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		accountID, serverID := ulid.Make(), ulid.Make()
		mock.ExpectExec(`DELETE FROM members`).
			WithArgs(accountID.String(), serverID.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewMemberRepository(mock)
		require.NoError(t, repo.Leave(context.Background(), accountID, serverID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent membership maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		accountID, serverID := ulid.Make(), ulid.Make()
		mock.ExpectExec(`DELETE FROM members`).
			WithArgs(accountID.String(), serverID.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewMemberRepository(mock)
		err = repo.Leave(context.Background(), accountID, serverID)
		assert.ErrorIs(t, err, chat.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
