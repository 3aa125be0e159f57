// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package chat

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateCode is returned when an invite code collides with an existing
// one. Callers regenerate and retry.
var ErrDuplicateCode = errors.New("duplicate invite code")
