package main

import (
	"context"
	"fmt"

	"github.com/Rrens/estate-chat/internal/config"
	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/Rrens/estate-chat/internal/repository/postgres"
	"github.com/Rrens/estate-chat/internal/repository/sqlite"
	"github.com/rs/zerolog/log"
)

// store bundles the conversation repositories of the configured driver.
type store struct {
	sessions domain.SessionRepository
	messages domain.MessageRepository
	users    domain.UserRepository
	ping     func(ctx context.Context) error
	close    func() error
}

func (s *store) Ping(ctx context.Context) error { return s.ping(ctx) }
func (s *store) Close() error                   { return s.close() }

func openStore(ctx context.Context, cfg config.DatabaseConfig) (*store, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		log.Info().Str("path", cfg.Path).Msg("using sqlite conversation store")
		return &store{
			sessions: sqlite.NewSessionRepository(db),
			messages: sqlite.NewMessageRepository(db),
			users:    sqlite.NewUserRepository(db),
			ping:     db.Ping,
			close:    db.Close,
		}, nil

	default:
		if err := postgres.RunMigrations(cfg.DSN(), cfg.MigrationsPath); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		db, err := postgres.NewDB(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("using postgres conversation store")
		return &store{
			sessions: postgres.NewSessionRepository(db.Pool),
			messages: postgres.NewMessageRepository(db.Pool),
			users:    postgres.NewUserRepository(db.Pool),
			ping:     db.Ping,
			close:    db.Close,
		}, nil
	}
}
