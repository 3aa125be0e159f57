// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/chat"
)

func testInvite() *chat.Invite {
	return &chat.Invite{
		ID:        ulid.Make(),
		ServerID:  ulid.Make(),
		Code:      "AB12CD",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestInviteRepository_Create(t *testing.T) {
	t.Run("successful insert", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		invite := testInvite()
		mock.ExpectExec(`INSERT INTO invites`).
			WithArgs(invite.ID.String(), invite.ServerID.String(), invite.Code, invite.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewInviteRepository(mock)
		require.NoError(t, repo.Create(context.Background(), invite))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("code collision maps to ErrDuplicateCode", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		invite := testInvite()
		mock.ExpectExec(`INSERT INTO invites`).
			WithArgs(invite.ID.String(), invite.ServerID.String(), invite.Code, invite.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		repo := NewInviteRepository(mock)
		err = repo.Create(context.Background(), invite)
		assert.ErrorIs(t, err, chat.ErrDuplicateCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInviteRepository_Redeem(t *testing.T) {
	t.Run("joins and returns the server", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		server := testChatServer()
		accountID := ulid.Make()

		mock.ExpectBegin()
		rows := pgxmock.NewRows(serverColumns).
			AddRow(server.ID.String(), server.Name, server.Description,
				server.OwnerID.String(), server.CreatedAt, server.UpdatedAt)
		mock.ExpectQuery(`SELECT s.id, s.name, s.description`).
			WithArgs("AB12CD").
			WillReturnRows(rows)
		mock.ExpectExec(`INSERT INTO members`).
			WithArgs(accountID.String(), server.ID.String()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectRollback()

		repo := NewInviteRepository(mock)
		got, err := repo.Redeem(context.Background(), "AB12CD", accountID)
		require.NoError(t, err)
		assert.Equal(t, server.ID, got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redeeming while already a member is a no-op", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		server := testChatServer()
		accountID := ulid.Make()

		mock.ExpectBegin()
		rows := pgxmock.NewRows(serverColumns).
			AddRow(server.ID.String(), server.Name, server.Description,
				server.OwnerID.String(), server.CreatedAt, server.UpdatedAt)
		mock.ExpectQuery(`SELECT s.id, s.name, s.description`).
			WithArgs("AB12CD").
			WillReturnRows(rows)
		// ON CONFLICT DO NOTHING: zero rows inserted, no error.
		mock.ExpectExec(`INSERT INTO members`).
			WithArgs(accountID.String(), server.ID.String()).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectCommit()
		mock.ExpectRollback()

		repo := NewInviteRepository(mock)
		got, err := repo.Redeem(context.Background(), "AB12CD", accountID)
		require.NoError(t, err)
		assert.Equal(t, server.ID, got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown code maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT s.id, s.name, s.description`).
			WithArgs("ZZZZZZ").
			WillReturnRows(pgxmock.NewRows(serverColumns))
		mock.ExpectRollback()

		repo := NewInviteRepository(mock)
		_, err = repo.Redeem(context.Background(), "ZZZZZZ", ulid.Make())
		assert.ErrorIs(t, err, chat.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
