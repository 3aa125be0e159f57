// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package main

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe a running Parley instance",
		Long:  `Probe the observability server's readiness endpoint and report the result.`,
		RunE:  runStatus,
	}

	cmd.Flags().String("addr", "127.0.0.1:9100", "observability server address")
	cmd.Flags().Duration("timeout", 5*time.Second, "probe timeout")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return oops.Wrap(err)
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return oops.Wrap(err)
	}

	url := addr
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	url += "/healthz/readiness"

	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return oops.Code("STATUS_REQUEST_FAILED").With("url", url).Wrap(err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return oops.Code("STATUS_UNREACHABLE").With("url", url).Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return oops.Code("STATUS_READ_FAILED").Wrap(err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		cmd.Println("ready")
		return nil
	case http.StatusServiceUnavailable:
		cmd.Println("not ready:", strings.TrimSpace(string(body)))
		return oops.Code("STATUS_NOT_READY").Errorf("instance reports not ready")
	default:
		return oops.Code("STATUS_UNEXPECTED").
			With("status", resp.StatusCode).
			Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
