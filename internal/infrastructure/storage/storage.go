// Package storage selects and opens the backends named by the configuration:
// the repository driver (postgres or mongo) and the session store (memory or
// redis). Entry points call Open once and Close on shutdown.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/arielspace/listing-board/internal/core/ports"
	"github.com/arielspace/listing-board/internal/core/session"
	"github.com/arielspace/listing-board/internal/infrastructure/config"
	"github.com/arielspace/listing-board/internal/infrastructure/db/mongo"
	"github.com/arielspace/listing-board/internal/infrastructure/db/postgres"
	"github.com/arielspace/listing-board/internal/infrastructure/db/redis"
)

// sessionStoreGrace keeps redis records slightly past the idle timeout so the
// service, not the key expiry, decides when a session is over.
const sessionStoreGrace = time.Minute

// Storage holds the opened repositories and how to check and release them.
type Storage struct {
	Users    ports.UserRepository
	Listings ports.ListingRepository
	// Pings maps a dependency name to its connectivity check.
	Pings map[string]func(ctx context.Context) error

	closers []func(ctx context.Context) error
}

// Open connects the repository driver selected by STORAGE_DRIVER. With
// migrate set, the postgres schema is brought up to date first.
func Open(ctx context.Context, cfg *config.Config, migrate bool, log zerolog.Logger) (*Storage, error) {
	s := &Storage{Pings: map[string]func(ctx context.Context) error{}}

	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:             cfg.Postgres.DSN(),
			MaxConns:        cfg.Postgres.MaxConns,
			MaxConnIdleTime: cfg.Postgres.IdleTimeout,
			ConnectTimeout:  cfg.Postgres.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error {
			pool.Close()
			return nil
		})

		if migrate {
			if err := postgres.Migrate(ctx, pool, log); err != nil {
				pool.Close()
				return nil, err
			}
		}

		s.Users = postgres.NewUserRepository(pool)
		s.Listings = postgres.NewListingRepository(pool)
		s.Pings["postgres"] = pool.Ping
		log.Info().Int32("max_conns", cfg.Postgres.MaxConns).Msg("postgres pool ready")

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: uint64(cfg.Postgres.MaxConns),
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Disconnect)

		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}

		s.Users = mongo.NewUserRepository(db)
		s.Listings = mongo.NewListingRepository(db)
		s.Pings["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb ready")

	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.StorageDriver)
	}

	return s, nil
}

// OpenSessionStore returns the server-side session store selected by
// SESSION_STORE. Redis connections are registered on s for ping and close.
func (s *Storage) OpenSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (session.Store, error) {
	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		log.Warn().Msg("sessions are kept in memory and are lost on restart")
		return session.NewMemoryStore(), nil

	case config.SessionStoreRedis:
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
		s.Pings["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis session store ready")
		return redis.NewSessionStore(client, cfg.Session.Timeout+sessionStoreGrace), nil

	default:
		return nil, fmt.Errorf("storage: unknown session store %q", cfg.Session.Store)
	}
}

// Close releases every backend in reverse order of opening.
func (s *Storage) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
