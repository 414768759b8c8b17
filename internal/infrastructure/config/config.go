package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/session"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	StorageDriver string `env:"STORAGE_DRIVER, default=postgres"`

	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Session  SessionConfig
	Admin    AdminConfig

	// ListingCapacity caps the number of listings; zero disables the cap.
	ListingCapacity int     `env:"LISTING_CAPACITY, default=0"`
	LoginRateLimit  float64 `env:"LOGIN_RATE_LIMIT, default=1"`
	LoginRateBurst  int     `env:"LOGIN_RATE_BURST, default=5"`
}

type PostgresConfig struct {
	URL            string        `env:"DATABASE_URL"`
	FallbackURL    string        `env:"NETLIFY_DATABASE_URL"`
	MaxConns       int32         `env:"DB_MAX_CONNS,       default=10"`
	IdleTimeout    time.Duration `env:"DB_IDLE_TIMEOUT,    default=30s"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT, default=10s"`
	AutoMigrate    bool          `env:"DB_AUTO_MIGRATE,    default=true"`
}

// DSN prefers DATABASE_URL and falls back to NETLIFY_DATABASE_URL.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return p.FallbackURL
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=listing_board"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type SessionConfig struct {
	Store   string        `env:"SESSION_STORE,   default=memory"`
	Timeout time.Duration `env:"SESSION_TIMEOUT, default=5m"`
	Warning time.Duration `env:"SESSION_WARNING, default=1m"`
}

// Policy returns the idle policy described by the session settings.
func (s SessionConfig) Policy() session.Policy {
	return session.Policy{Timeout: s.Timeout, WarningWindow: s.Warning}
}

type AdminConfig struct {
	Emails   []string `env:"ADMIN_EMAILS, default=admin@arielspace.com,admin@example.com"`
	Email    string   `env:"ADMIN_EMAIL"`
	Password string   `env:"ADMIN_PASSWORD"`
}

// AllowList is ADMIN_EMAILS plus the override address when one is set.
func (a AdminConfig) AllowList() domain.AdminList {
	list := make(domain.AdminList, 0, len(a.Emails)+1)
	for _, e := range a.Emails {
		if e = strings.TrimSpace(e); e != "" {
			list = append(list, e)
		}
	}
	if a.Email != "" && !list.Contains(a.Email) {
		list = append(list, a.Email)
	}
	return list
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate checks settings shared by every entry point.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case DriverPostgres:
		if c.Postgres.DSN() == "" {
			errs = append(errs, errors.New("DATABASE_URL or NETLIFY_DATABASE_URL is required for the postgres driver"))
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMongo, c.StorageDriver))
	}

	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.Session.Store))
	}
	if err := c.Session.Policy().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.ListingCapacity < 0 {
		errs = append(errs, errors.New("LISTING_CAPACITY must not be negative"))
	}

	return errors.Join(errs...)
}

// ValidateServer adds the checks only the API server needs.
func (c *Config) ValidateServer() error {
	var errs []error
	if err := c.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.LoginRateLimit <= 0 || c.LoginRateBurst <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads the given files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) ([]string, error) {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}

	var loaded []string
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("config: load %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}
	return loaded, nil
}
