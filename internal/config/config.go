// Package config loads the adapter-layer settings the pure core never
// needs: where the event store lives, which Auth0 tenant issues bearer
// tokens for internal/identity, where internal/archive stores its
// artifacts, and where internal/notify listens. Grounded on the
// teacher's internal/config/config.go getEnv/validate shape.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds every adapter's environment-sourced settings. The pure
// core (internal/fact, internal/derive, internal/waterfall, and friends)
// takes no configuration at all — everything here belongs to an adapter.
type Config struct {
	// DatabaseURL points internal/store/postgres at the event-store
	// database.
	DatabaseURL string

	// Auth0Domain/Auth0Audience configure internal/identity's bearer
	// token validator. Both empty means no identity adapter is wired;
	// callers then supply tx/author directly.
	Auth0Domain   string
	Auth0Audience string

	// Archive configures internal/archive's S3-compatible object store.
	Archive ArchiveConfig

	// NotifyAddr is the listen address for internal/notify's WebSocket
	// upgrade endpoint.
	NotifyAddr string

	Env string
}

// ArchiveConfig names the bucket archived document-snapshot mirrors and
// signature scans live in (spec.md §4.9).
type ArchiveConfig struct {
	Bucket          string
	Region          string
	Endpoint        string // optional; set for MinIO/LocalStack
	AccessKeyID     string
	SecretAccessKey string
}

// Load reads configuration from the environment, loading a .env file
// first if one is present (its absence is not an error, same as the
// teacher).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),
		Archive: ArchiveConfig{
			Bucket:          getEnv("ARCHIVE_BUCKET", "murabaha-archive"),
			Region:          getEnv("ARCHIVE_REGION", "us-east-1"),
			Endpoint:        getEnv("ARCHIVE_ENDPOINT", ""),
			AccessKeyID:     getEnv("ARCHIVE_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("ARCHIVE_SECRET_KEY", ""),
		},
		NotifyAddr: getEnv("NOTIFY_ADDR", ":8090"),
		Env:        getEnv("ENV", "development"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if (c.Auth0Domain == "") != (c.Auth0Audience == "") {
		return fmt.Errorf("AUTH0_DOMAIN and AUTH0_AUDIENCE must be set together")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
