// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// maxBodyBytes bounds request bodies well above the largest legal payload
// (4000-char message content) while rejecting abuse.
const maxBodyBytes = 64 * 1024

// decodeBody decodes a JSON request body into dst, rejecting unknown fields
// and trailing garbage.
func decodeBody(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return oops.Code("HTTP_INVALID_BODY").Errorf("invalid request body")
	}
	if dec.More() {
		return oops.Code("HTTP_INVALID_BODY").Errorf("invalid request body")
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

// parseID parses a request-supplied ULID, naming the field in the error.
func parseID(field, value string) (ulid.ULID, error) {
	if value == "" {
		return ulid.ULID{}, oops.Code("HTTP_MISSING_FIELD").
			With("field", field).
			Errorf("%s is required", field)
	}
	id, err := ulid.Parse(value)
	if err != nil {
		return ulid.ULID{}, oops.Code("HTTP_INVALID_ID").
			With("field", field).
			Errorf("%s is not a valid id", field)
	}
	return id, nil
}

// requireField reports a missing required string field.
func requireField(field, value string) error {
	if value == "" {
		return oops.Code("HTTP_MISSING_FIELD").
			With("field", field).
			Errorf("%s is required", field)
	}
	return nil
}

// parseIntQuery parses an optional integer query parameter, returning def
// when absent.
func parseIntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, oops.Code("HTTP_INVALID_QUERY").
			With("param", name).
			Errorf("%s must be an integer", name)
	}
	return n, nil
}
