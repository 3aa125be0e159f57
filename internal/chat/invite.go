// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package chat

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Invite code configuration. Six symbols from a 36-character alphabet give a
// ~31-bit code space; collisions are rare but handled by regeneration rather
// than trusting probability alone.
const (
	InviteCodeLength   = 6
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// MaxCodeAttempts bounds regeneration on code collision before the
	// operation fails outright.
	MaxCodeAttempts = 5
)

// Invite grants membership in a server when redeemed. Codes stay redeemable
// until the issuing server is deleted.
type Invite struct {
	ID        ulid.ULID
	ServerID  ulid.ULID
	Code      string
	CreatedAt time.Time
}

// NewInvite creates an Invite with a freshly generated code.
func NewInvite(serverID ulid.ULID) (*Invite, error) {
	code, err := GenerateInviteCode()
	if err != nil {
		return nil, err
	}
	return &Invite{
		ID:        ulid.Make(),
		ServerID:  serverID,
		Code:      code,
		CreatedAt: time.Now(),
	}, nil
}

// GenerateInviteCode produces an unguessable 6-character code, each symbol
// drawn independently from a cryptographically secure source.
func GenerateInviteCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(inviteCodeAlphabet)))
	buf := make([]byte, InviteCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", oops.Code("CHAT_CODE_GENERATE_FAILED").Wrap(err)
		}
		buf[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// InviteRepository manages invite persistence.
type InviteRepository interface {
	// Create stores a new invite. Returns ErrDuplicateCode (wrapped) when
	// the code collides with an existing invite.
	Create(ctx context.Context, invite *Invite) error

	// Redeem looks up an invite by code and joins the account to its server
	// in one transaction. Redeeming while already a member is a no-op.
	// Returns the invite's server, or ErrNotFound (wrapped) for unknown
	// codes.
	Redeem(ctx context.Context, code string, accountID ulid.ULID) (*Server, error)
}
