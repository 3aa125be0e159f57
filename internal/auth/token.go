// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/samber/oops"
)

// TokenBytes is the entropy of a session token: 32 bytes = 256 bits,
// hex-encoded to 64 characters. Collisions are treated as negligible; there
// is no uniqueness retry loop.
const TokenBytes = 32

// GenerateToken creates a secure random session token and its hash.
// The plaintext token is sent to the client; only the hash is persisted.
func GenerateToken() (token, hash string, err error) {
	buf := make([]byte, TokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", oops.Code("AUTH_TOKEN_GENERATE_FAILED").
			With("requested_bytes", TokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(buf)
	return token, HashToken(token), nil
}

// HashToken computes the SHA-256 digest of a session token, hex-encoded.
// Sessions are looked up by this digest so a database leak does not expose
// usable bearer tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
