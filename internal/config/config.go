// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds all runtime configuration values.  It is loaded once at
// startup and passed by value afterwards.
type Config struct {
	Env         string // application environment (dev, test, prod)
	Port        string // HTTP port to listen on
	StoreDriver string // mongo or memory
	MongoURI    string
	MongoDB     string

	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int

	EventsAPIURL     string
	EventsAPIToken   string
	EventsAPITimeout time.Duration

	SeedOnStart bool
	AMQPURL     string // empty disables activity publishing

	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// Load reads the environment.  JWT_SECRET is required; every other value
// has a default.  Malformed numbers are reported instead of silently
// replaced.
func Load() (Config, error) {
	var errs []string
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			errs = append(errs, "missing required env var: "+key)
		}
		return v
	}
	intOr := func(key string, def int) int {
		s := os.Getenv(key)
		if s == "" {
			return def
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid int for %s: %q", key, s))
			return def
		}
		return n
	}

	cfg := Config{
		Env:              envStr("APP_ENV", "dev"),
		Port:             envStr("APP_PORT", envStr("PORT", "3000")),
		StoreDriver:      strings.ToLower(envStr("STORE_DRIVER", StoreMongo)),
		MongoURI:         envStr("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:          envStr("MONGODB_DB", "fyd"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     intOr("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays:   intOr("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:       intOr("BCRYPT_COST", 12),
		EventsAPIURL:     envStr("EVENTS_API_URL", "https://api.example.com/events"),
		EventsAPIToken:   os.Getenv("EVENTS_API_TOKEN"),
		EventsAPITimeout: envDur("EVENTS_API_TIMEOUT", 15*time.Second),
		SeedOnStart:      envBool("SEED_ON_START", false),
		AMQPURL:          amqpURL(),
		Cache:            LoadCacheConfig(),
		RateLimit:        LoadRateLimitConfig(),
	}

	switch cfg.StoreDriver {
	case StoreMongo, StoreMemory:
	default:
		errs = append(errs, fmt.Sprintf("invalid STORE_DRIVER %q (want mongo or memory)", cfg.StoreDriver))
	}
	if cfg.AccessTTLMin <= 0 {
		errs = append(errs, "ACCESS_TOKEN_TTL_MIN must be positive")
	}
	if cfg.RefreshTTLDays <= 0 {
		errs = append(errs, "REFRESH_TOKEN_TTL_DAYS must be positive")
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// AccessTTL is the lifetime of access tokens.
func (c Config) AccessTTL() time.Duration { return time.Duration(c.AccessTTLMin) * time.Minute }

// RefreshTTL is the lifetime of refresh tokens.
func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLDays) * 24 * time.Hour
}

// IsDev reports whether the server runs in development mode.
func (c Config) IsDev() bool { return c.Env == "dev" || c.Env == "development" }
