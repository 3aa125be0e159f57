// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package chat

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Member records that an account belongs to a server. The (account, server)
// pair is unique; membership rows are the sole authority for "is this user
// part of this server" — ownership never implies membership implicitly.
type Member struct {
	AccountID ulid.ULID
	ServerID  ulid.ULID
	JoinedAt  time.Time
}

// MemberRepository manages membership persistence.
//
// The lifecycle per (account, server) pair is absent → joined (owner
// creation or invite redemption) → absent (leave). There are no other states.
type MemberRepository interface {
	// Join creates a membership row. Joining a server the account already
	// belongs to is a no-op, preserving pair uniqueness.
	Join(ctx context.Context, accountID, serverID ulid.ULID) error

	// Exists reports whether the account holds membership in the server.
	Exists(ctx context.Context, accountID, serverID ulid.ULID) (bool, error)

	// Leave removes a membership row. Returns ErrNotFound (wrapped) when the
	// account is not a member.
	Leave(ctx context.Context, accountID, serverID ulid.ULID) error
}
