// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package chat implements Parley's community domain: servers, memberships,
// messages, and invite codes. Services here are thin: they run the relevant
// authorization check and then issue a single store operation, wrapping
// multi-statement sequences in a transaction at the repository layer.
package chat
