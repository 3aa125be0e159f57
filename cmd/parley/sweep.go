// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/auth"
	authpg "github.com/parleychat/parley/internal/auth/postgres"
	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/store"
)

// NewSweepCmd creates the sweep subcommand.
func NewSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired sessions",
		Long:  `Remove sessions past their expiry. Safe to run from cron; live sessions are untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return err
			}

			pool, err := store.NewPool(cmd.Context(), cfg.Database.URL, cfg.Database.MaxConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc, err := auth.NewService(
				authpg.NewAccountRepository(pool),
				authpg.NewSessionRepository(pool),
				auth.NewArgon2idHasher(),
			)
			if err != nil {
				return err
			}

			n, err := svc.DeleteExpiredSessions(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Deleted %d expired session(s)\n", n)
			return nil
		},
	}
}
