// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/access"
	"github.com/parleychat/parley/internal/auth"
	authpg "github.com/parleychat/parley/internal/auth/postgres"
	"github.com/parleychat/parley/internal/chat"
	chatpg "github.com/parleychat/parley/internal/chat/postgres"
	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/httpapi"
	"github.com/parleychat/parley/internal/logging"
	"github.com/parleychat/parley/internal/observability"
	"github.com/parleychat/parley/internal/store"
	"github.com/parleychat/parley/pkg/errutil"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Parley API server",
		Long: `Run the HTTP API on the configured listen address alongside the
observability server (metrics and health probes) on its own listener.`,
		RunE: runServe,
	}

	cmd.Flags().String("listen", ":8080", "API listen address")
	cmd.Flags().String("metrics", ":9100", "observability listen address")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().String("log-format", "json", "log format: json or text")
	cmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("parley", version, cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	accounts := authpg.NewAccountRepository(pool)
	sessions := authpg.NewSessionRepository(pool)
	servers := chatpg.NewServerRepository(pool)
	members := chatpg.NewMemberRepository(pool)
	messages := chatpg.NewMessageRepository(pool)
	invites := chatpg.NewInviteRepository(pool)

	authSvc, err := auth.NewService(accounts, sessions, auth.NewArgon2idHasher(),
		auth.WithSessionTTL(cfg.Auth.SessionTTL))
	if err != nil {
		return err
	}

	gate, err := access.NewGate(authSvc, members)
	if err != nil {
		return err
	}

	serverSvc, err := chat.NewServerService(servers, gate)
	if err != nil {
		return err
	}
	inviteSvc, err := chat.NewInviteService(invites, servers, gate)
	if err != nil {
		return err
	}
	memberSvc, err := chat.NewMemberService(members, gate)
	if err != nil {
		return err
	}
	messageSvc, err := chat.NewMessageService(messages, gate)
	if err != nil {
		return err
	}

	obs := observability.NewServer(cfg.Server.MetricsAddr, func() bool {
		return pool.Ping(ctx) == nil
	})
	obsErrCh, err := obs.Start()
	if err != nil {
		return err
	}

	api, err := httpapi.NewServer(httpapi.Options{
		Addr:        cfg.Server.ListenAddr,
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     obs.Metrics(),
	}, httpapi.Deps{
		Auth:     authSvc,
		Gate:     gate,
		Servers:  serverSvc,
		Invites:  inviteSvc,
		Members:  memberSvc,
		Messages: messageSvc,
	})
	if err != nil {
		return err
	}

	apiErrCh, err := api.Start()
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = obs.Stop(shutdownCtx)
		return err
	}

	slog.Info("parley is ready", "api", api.Addr(), "metrics", obs.Addr())

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr = <-apiErrCh:
		if serveErr != nil {
			errutil.LogError(slog.Default(), "api server failed", serveErr)
		}
	case serveErr = <-obsErrCh:
		if serveErr != nil {
			errutil.LogError(slog.Default(), "observability server failed", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := api.Stop(shutdownCtx); err != nil {
		errutil.LogError(slog.Default(), "api server shutdown failed", err)
	}
	if err := obs.Stop(shutdownCtx); err != nil {
		errutil.LogError(slog.Default(), "observability server shutdown failed", err)
	}

	if serveErr != nil {
		return oops.Code("SERVE_FAILED").Wrap(serveErr)
	}
	return nil
}
