// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package access provides request authorization for Parley.
//
// Every resource operation passes through here before mutating data: the
// bearer token resolves to a Principal, and per-resource rules (ownership,
// membership, authorship) are enforced against it. Membership rows are the
// sole basis for membership checks; owning a server grants nothing here
// unless a membership row exists.
package access

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/parleychat/parley/internal/auth"
)

// Principal is the authenticated identity attached to a request after
// successful token resolution.
type Principal struct {
	AccountID ulid.ULID
	SessionID ulid.ULID
}

// TokenResolver resolves a bearer token to its session.
// Implemented by auth.Service.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*auth.Session, error)
}

// MembershipChecker reports whether an account belongs to a server.
// Implemented by the chat member repository.
type MembershipChecker interface {
	Exists(ctx context.Context, accountID, serverID ulid.ULID) (bool, error)
}

// Gate authenticates bearer tokens and enforces per-resource rules.
type Gate struct {
	resolver TokenResolver
	members  MembershipChecker
}

// NewGate creates a new Gate.
func NewGate(resolver TokenResolver, members MembershipChecker) (*Gate, error) {
	if resolver == nil {
		return nil, oops.Code("ACCESS_NIL_DEPENDENCY").Errorf("token resolver is required")
	}
	if members == nil {
		return nil, oops.Code("ACCESS_NIL_DEPENDENCY").Errorf("membership checker is required")
	}
	return &Gate{resolver: resolver, members: members}, nil
}

// genericAuthMessage is returned for both missing and invalid tokens so the
// response does not reveal whether a presented token exists.
const genericAuthMessage = "invalid or missing token"

// Authenticate resolves the Authorization header value to a Principal.
// The baseline client sends the raw opaque token; an RFC 6750 "Bearer "
// prefix is accepted and stripped. A missing header and an unresolvable
// token are distinct failure codes surfaced with the same generic message.
func (g *Gate) Authenticate(ctx context.Context, header string) (Principal, error) {
	token := strings.TrimSpace(header)
	if after, found := strings.CutPrefix(token, "Bearer "); found {
		token = strings.TrimSpace(after)
	}
	if token == "" {
		return Principal{}, oops.Code("ACCESS_MISSING_TOKEN").Errorf("%s", genericAuthMessage)
	}

	session, err := g.resolver.ResolveToken(ctx, token)
	if err != nil {
		return Principal{}, oops.Code("ACCESS_INVALID_TOKEN").Wrap(err)
	}

	return Principal{AccountID: session.AccountID, SessionID: session.ID}, nil
}

// RequireOwner checks that the principal owns the resource. Exact equality;
// used for server rename/delete and invite creation.
func (g *Gate) RequireOwner(p Principal, ownerID ulid.ULID) error {
	if p.AccountID.Compare(ownerID) != 0 {
		return oops.Code("ACCESS_NOT_OWNER").Errorf("not the server owner")
	}
	return nil
}

// RequireMember checks that a membership row exists for the principal in the
// server. Used for message create/list and leave.
func (g *Gate) RequireMember(ctx context.Context, p Principal, serverID ulid.ULID) error {
	ok, err := g.members.Exists(ctx, p.AccountID, serverID)
	if err != nil {
		return oops.Code("ACCESS_MEMBER_CHECK_FAILED").
			With("server_id", serverID.String()).
			Wrap(err)
	}
	if !ok {
		return oops.Code("ACCESS_NOT_MEMBER").Errorf("not a member of this server")
	}
	return nil
}

// RequireAuthor checks that the principal authored the resource, comparing
// against the message row's stored author ID. Used for message edit/delete.
func (g *Gate) RequireAuthor(p Principal, authorID ulid.ULID) error {
	if p.AccountID.Compare(authorID) != 0 {
		return oops.Code("ACCESS_NOT_AUTHOR").Errorf("not the message author")
	}
	return nil
}
