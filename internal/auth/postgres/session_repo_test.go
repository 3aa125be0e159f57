// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/auth"
)

func testSession() *auth.Session {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &auth.Session{
		ID:         ulid.Make(),
		AccountID:  ulid.Make(),
		TokenHash:  "a3f1c2d4e5f60718293a4b5c6d7e8f90a3f1c2d4e5f60718293a4b5c6d7e8f90",
		UserAgent:  "test-agent",
		IPAddress:  "127.0.0.1",
		ExpiresAt:  now.Add(time.Hour),
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

func TestSessionRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	session := testSession()
	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(session.ID.String(), session.AccountID.String(), session.TokenHash,
			session.UserAgent, session.IPAddress, session.ExpiresAt, session.CreatedAt, session.LastSeenAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewSessionRepository(mock)
	require.NoError(t, repo.Create(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetByTokenHash(t *testing.T) {
	columns := []string{"id", "account_id", "token_hash", "user_agent", "ip_address", "expires_at", "created_at", "last_seen_at"}

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		session := testSession()
		rows := pgxmock.NewRows(columns).
			AddRow(session.ID.String(), session.AccountID.String(), session.TokenHash,
				session.UserAgent, session.IPAddress, session.ExpiresAt, session.CreatedAt, session.LastSeenAt)
		mock.ExpectQuery(`SELECT id, account_id, token_hash`).
			WithArgs(session.TokenHash).
			WillReturnRows(rows)

		repo := NewSessionRepository(mock)
		got, err := repo.GetByTokenHash(context.Background(), session.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
		assert.Equal(t, session.AccountID, got.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, account_id, token_hash`).
			WithArgs("unknown").
			WillReturnRows(pgxmock.NewRows(columns))

		repo := NewSessionRepository(mock)
		_, err = repo.GetByTokenHash(context.Background(), "unknown")
		assert.ErrorIs(t, err, auth.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionRepository_TouchLastSeen(t *testing.T) {
	t.Run("updates the timestamp", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		now := time.Now()
		mock.ExpectExec(`UPDATE sessions SET last_seen_at`).
			WithArgs(id.String(), now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewSessionRepository(mock)
		require.NoError(t, repo.TouchLastSeen(context.Background(), id, now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent session maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		now := time.Now()
		mock.ExpectExec(`UPDATE sessions SET last_seen_at`).
			WithArgs(id.String(), now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewSessionRepository(mock)
		err = repo.TouchLastSeen(context.Background(), id, now)
		assert.ErrorIs(t, err, auth.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionRepository_DeleteByTokenHash(t *testing.T) {
	// Deleting an absent session reports success so revocation stays
	// idempotent and cannot be used to probe token validity.
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM sessions WHERE token_hash`).
		WithArgs("never-issued").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewSessionRepository(mock)
	require.NoError(t, repo.DeleteByTokenHash(context.Background(), "never-issued"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at`).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	repo := NewSessionRepository(mock)
	n, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
