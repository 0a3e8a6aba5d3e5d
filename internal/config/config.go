package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // NOIRD_DATABASE_URL (required unless running in-memory)
	HTTPAddr    string // NOIRD_HTTP_ADDR (default ":8080")
	NATSURL     string // NOIRD_NATS_URL (optional, empty = no events)
	AuthToken   string // NOIRD_AUTH_TOKEN (optional, empty = auth disabled)

	// Sync settings
	SyncInterval   time.Duration // NOIRD_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // NOIRD_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // NOIRD_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // NOIRD_SYNC_S3_REGION (default "us-east-1")
	SyncS3Prefix   string        // NOIRD_SYNC_S3_PREFIX (default "noird"; snapshots land under it)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("NOIRD_DATABASE_URL"),
		HTTPAddr:       envOrDefault("NOIRD_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("NOIRD_NATS_URL"),
		AuthToken:      os.Getenv("NOIRD_AUTH_TOKEN"),
		SyncS3Bucket:   os.Getenv("NOIRD_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("NOIRD_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("NOIRD_SYNC_S3_REGION", "us-east-1"),
		SyncS3Prefix:   envOrDefault("NOIRD_SYNC_S3_PREFIX", "noird"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("NOIRD_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("NOIRD_SYNC_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("NOIRD_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

// LoadMemory loads configuration for an in-memory run: the same env knobs
// minus the database requirement. Sync stays disabled since there is nothing
// durable to back up.
func LoadMemory() *Config {
	return &Config{
		HTTPAddr:  envOrDefault("NOIRD_HTTP_ADDR", ":8080"),
		NATSURL:   os.Getenv("NOIRD_NATS_URL"),
		AuthToken: os.Getenv("NOIRD_AUTH_TOKEN"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
