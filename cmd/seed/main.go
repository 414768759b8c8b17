// Command seed applies the schema and loads the admin account and default
// listings. Safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/arielspace/listing-board/internal/infrastructure/config"
	"github.com/arielspace/listing-board/internal/infrastructure/seed"
	"github.com/arielspace/listing-board/internal/infrastructure/storage"
	"github.com/arielspace/listing-board/pkg/logger"
)

func main() {
	skipAdmin := flag.Bool("skip-admin", false, "do not create the admin account")
	skipListings := flag.Bool("skip-listings", false, "do not insert the default listings")
	flag.Parse()

	if err := run(*skipAdmin, *skipListings); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func run(skipAdmin, skipListings bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := config.LoadDotEnv(); err != nil {
		logger.Init(logger.Options{Service: "listing-seed"})
		return err
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "listing-seed"})
		return err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Service: "listing-seed",
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := storage.Open(ctx, cfg, true, log)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	s := seed.New(store.Users, store.Listings, log)

	if !skipAdmin {
		if _, err := s.Admin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			if !errors.Is(err, seed.ErrNoAdminCredentials) {
				return err
			}
			log.Warn().Msg("ADMIN_EMAIL/ADMIN_PASSWORD not set, admin account skipped")
		}
	}

	if !skipListings {
		if _, err := s.Listings(ctx, seed.DefaultListings()); err != nil {
			return err
		}
	}

	log.Info().Msg("seed complete")
	return nil
}
