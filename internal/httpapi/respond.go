// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/parleychat/parley/pkg/errutil"
)

// errorBody is the uniform error response shape.
type errorBody struct {
	Error string `json:"error"`
}

// statusByCode maps internal error codes to HTTP statuses. Codes not listed
// here fall through to connectivity detection and then 500.
var statusByCode = map[string]int{
	// Validation
	"AUTH_INVALID_USERNAME":    http.StatusBadRequest,
	"AUTH_INVALID_PASSWORD":    http.StatusBadRequest,
	"AUTH_EMPTY_PASSWORD":      http.StatusBadRequest,
	"CHAT_INVALID_NAME":        http.StatusBadRequest,
	"CHAT_INVALID_DESCRIPTION": http.StatusBadRequest,
	"CHAT_INVALID_CONTENT":     http.StatusBadRequest,
	"CHAT_INVALID_CODE":        http.StatusBadRequest,
	"HTTP_INVALID_BODY":        http.StatusBadRequest,
	"HTTP_MISSING_FIELD":       http.StatusBadRequest,
	"HTTP_INVALID_ID":          http.StatusBadRequest,
	"HTTP_INVALID_QUERY":       http.StatusBadRequest,

	// Authentication
	"ACCESS_MISSING_TOKEN":     http.StatusUnauthorized,
	"ACCESS_INVALID_TOKEN":     http.StatusUnauthorized,
	"AUTH_INVALID_CREDENTIALS": http.StatusUnauthorized,
	"AUTH_SESSION_INVALID":     http.StatusUnauthorized,
	"AUTH_SESSION_EXPIRED":     http.StatusUnauthorized,

	// Authorization
	"ACCESS_NOT_OWNER":    http.StatusForbidden,
	"ACCESS_NOT_MEMBER":   http.StatusForbidden,
	"ACCESS_NOT_AUTHOR":   http.StatusForbidden,
	"AUTH_ACCOUNT_LOCKED": http.StatusForbidden,

	// Not found
	"CHAT_SERVER_NOT_FOUND":  http.StatusNotFound,
	"CHAT_MESSAGE_NOT_FOUND": http.StatusNotFound,
	"CHAT_INVITE_NOT_FOUND":  http.StatusNotFound,
	"MEMBER_NOT_FOUND":       http.StatusNotFound,

	// Conflict
	"AUTH_USERNAME_TAKEN": http.StatusConflict,

	// Unavailable
	"CHAT_CODE_SPACE_EXHAUSTED": http.StatusServiceUnavailable,
	"STORE_UNAVAILABLE":         http.StatusServiceUnavailable,
}

// statusForError resolves an error to an HTTP status. The outermost oops
// code wins; store connectivity failures anywhere in the chain become 503.
func statusForError(err error) int {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, isString := oopsErr.Code().(string); isString {
			if status, found := statusByCode[code]; found {
				return status
			}
		}
	}
	if isConnectivityError(err) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// isConnectivityError reports whether err stems from the store being
// unreachable rather than from a query against a healthy store.
func isConnectivityError(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response body", "error", err)
	}
}

// writeError maps err to a status and writes the uniform error body.
// Internal detail is logged, not leaked: 5xx responses carry a generic
// message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		errutil.LogError(slog.Default().With("method", r.Method, "path", r.URL.Path), "request failed", err)
		msg = "internal error"
		if status == http.StatusServiceUnavailable {
			msg = "service unavailable"
		}
	}

	writeJSON(w, status, errorBody{Error: msg})
}
