// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/hearth/internal/core/group"
	"github.com/taibuivan/hearth/internal/notify"
	"github.com/taibuivan/hearth/internal/platform/config"
	"github.com/taibuivan/hearth/internal/platform/migration"
	pgstore "github.com/taibuivan/hearth/internal/platform/postgres"
	redisstore "github.com/taibuivan/hearth/internal/platform/redis"
)

// # Backends

// migrator is the part of [migration.Runner] the migrate commands drive.
type migrator interface {
	Up() error
	Down(steps int) error
	Version() (migration.Status, error)
	Close()
}

// session holds the membership services for one command invocation.
type session struct {
	roles     *group.RoleChangeService
	removal   *group.MemberRemovalService
	departure *group.DepartureService
	close     func()
}

// backend opens the resources commands run against. Tests replace both openers.
type backend struct {
	logger       *slog.Logger
	openSession  func(ctx context.Context, logger *slog.Logger) (*session, error)
	openMigrator func(logger *slog.Logger) (migrator, error)
}

// newSession wires the services over a repository and notifier.
func newSession(repo group.Repository, notifier notify.Notifier, options group.Options, logger *slog.Logger, close func()) *session {
	return &session{
		roles:     group.NewRoleChangeService(repo, options, logger),
		removal:   group.NewMemberRemovalService(repo, options, logger),
		departure: group.NewDepartureService(repo, notifier, options, logger),
		close:     close,
	}
}

// defaultBackend connects to the services named by the environment.
func defaultBackend() *backend {
	return &backend{
		logger:       slog.Default(),
		openSession:  openPostgresSession,
		openMigrator: openMigrationRunner,
	}
}

func openPostgresSession(ctx context.Context, logger *slog.Logger) (*session, error) {
	cfg, err := config.LoadTool()
	if err != nil {
		return nil, err
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, pgstore.Limits{MaxConns: cfg.DBMaxConns}, logger)
	if err != nil {
		return nil, err
	}
	closers := []func(){pool.Close}

	transport := notify.Transport{
		Stream: cfg.Notifier.Stream,
		MaxLen: cfg.Notifier.MaxLen,
		Topic:  cfg.Notifier.Topic,
	}
	if cfg.Notifier.Driver == config.NotifierRedis {
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		transport.Redis = client
		closers = append(closers, func() { _ = client.Close() })
	}

	notifier, err := notify.ForDriver(cfg.Notifier.Driver, transport, logger)
	if err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("hearthctl: %w", err)
	}

	options := group.Options{PageSize: cfg.Membership.PageSize}
	return newSession(group.NewPostgresRepository(pool), notifier, options, logger, func() { closeAll(closers) }), nil
}

func openMigrationRunner(logger *slog.Logger) (migrator, error) {
	cfg, err := config.LoadTool()
	if err != nil {
		return nil, err
	}
	return migration.NewRunner(cfg.DatabaseURL, cfg.MigrationPath, logger)
}

// closeAll releases resources in reverse order of acquisition.
func closeAll(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
