// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package auth implements credential storage and verification, account
// lifecycle, and opaque bearer-token sessions for Parley.
//
// Passwords are hashed with argon2id and stored in PHC string format so the
// parameters travel with the hash. Session tokens are 32 bytes of
// cryptographically secure randomness, hex-encoded for the client and stored
// server-side only as a SHA-256 digest.
package auth
