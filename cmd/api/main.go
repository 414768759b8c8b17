// @title                       Listing Board API
// @version                     1.0
// @description                 Internship and project listings with accounts and idle-timeout sessions.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arielspace/listing-board/internal/api"
	"github.com/arielspace/listing-board/internal/api/handler"
	"github.com/arielspace/listing-board/internal/core/service"
	"github.com/arielspace/listing-board/internal/infrastructure/config"
	"github.com/arielspace/listing-board/internal/infrastructure/storage"
	"github.com/arielspace/listing-board/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loaded, err := config.LoadDotEnv()
	if err != nil {
		logger.Init(logger.Options{Service: "listing-api"})
		return err
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "listing-api"})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "listing-api",
	})
	if len(loaded) > 0 {
		log.Info().Strs("files", loaded).Msg("loaded env files")
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	store, err := storage.Open(ctx, cfg, cfg.Postgres.AutoMigrate, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("close storage")
		}
	}()

	sessionStore, err := store.OpenSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	sessions := service.NewSessionService(sessionStore, cfg.Session.Policy(), log.With().Str("component", "sessions").Logger())
	authService := service.NewAuthService(store.Users, sessions, service.AuthConfig{
		JWTSecret:        cfg.JWTSecret,
		TokenTTL:         cfg.TokenTTL,
		Admins:           cfg.Admin.AllowList(),
		OverrideEmail:    cfg.Admin.Email,
		OverridePassword: cfg.Admin.Password,
	}, log.With().Str("component", "auth").Logger())
	listingService := service.NewListingService(store.Listings, cfg.ListingCapacity, log.With().Str("component", "listings").Logger())

	readiness := make(map[string]handler.PingFunc, len(store.Pings))
	for name, ping := range store.Pings {
		readiness[name] = ping
	}

	e := api.NewRouter(api.Deps{
		Logger:         log,
		DevMode:        cfg.IsDevelopment(),
		JWTSecret:      cfg.JWTSecret,
		AuthService:    authService,
		ListingService: listingService,
		Sessions:       sessions,
		SessionPolicy:  sessions.Policy(),
		Readiness:      readiness,
		LoginRateLimit: cfg.LoginRateLimit,
		LoginRateBurst: cfg.LoginRateBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logStartup(log, cfg)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func logStartup(log zerolog.Logger, cfg *config.Config) {
	log.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Env).
		Str("storage", cfg.StorageDriver).
		Str("session_store", cfg.Session.Store).
		Dur("session_timeout", cfg.Session.Timeout).
		Dur("session_warning", cfg.Session.Warning).
		Int("listing_capacity", cfg.ListingCapacity).
		Bool("admin_override", cfg.Admin.Email != "" && cfg.Admin.Password != "").
		Msg("listing api listening")
}
