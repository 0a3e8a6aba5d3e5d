package config

import (
	"testing"
	"time"
)

// allEnvVars lists every env var Load reads, cleared between tests.
var allEnvVars = []string{
	"NOIRD_DATABASE_URL", "NOIRD_HTTP_ADDR", "NOIRD_NATS_URL", "NOIRD_AUTH_TOKEN",
	"NOIRD_SYNC_INTERVAL", "NOIRD_SYNC_S3_BUCKET", "NOIRD_SYNC_S3_ENDPOINT",
	"NOIRD_SYNC_S3_REGION", "NOIRD_SYNC_S3_PREFIX",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name         string
		env          map[string]string
		wantErr      bool
		wantHTTPAddr string
		wantNATSURL  string
	}{
		{
			name:    "MissingDatabaseURL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:         "Defaults",
			env:          map[string]string{"NOIRD_DATABASE_URL": "postgres://localhost/noird"},
			wantHTTPAddr: ":8080",
		},
		{
			name: "Custom",
			env: map[string]string{
				"NOIRD_DATABASE_URL": "postgres://db:5432/noird",
				"NOIRD_HTTP_ADDR":    ":3000",
				"NOIRD_NATS_URL":     "nats://localhost:4222",
			},
			wantHTTPAddr: ":3000",
			wantNATSURL:  "nats://localhost:4222",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tc.env["NOIRD_DATABASE_URL"] {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.env["NOIRD_DATABASE_URL"])
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
		})
	}
}

func TestLoadSyncDefaults(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("NOIRD_DATABASE_URL", "postgres://localhost/noird")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 3*time.Minute {
		t.Errorf("SyncInterval = %v, want 3m", cfg.SyncInterval)
	}
	if cfg.SyncS3Region != "us-east-1" {
		t.Errorf("SyncS3Region = %q, want %q", cfg.SyncS3Region, "us-east-1")
	}
	if cfg.SyncS3Prefix != "noird" {
		t.Errorf("SyncS3Prefix = %q, want %q", cfg.SyncS3Prefix, "noird")
	}
}

func TestLoadSyncCustom(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("NOIRD_DATABASE_URL", "postgres://localhost/noird")
	t.Setenv("NOIRD_SYNC_INTERVAL", "10m")
	t.Setenv("NOIRD_SYNC_S3_BUCKET", "my-bucket")
	t.Setenv("NOIRD_SYNC_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("NOIRD_SYNC_S3_REGION", "eu-west-1")
	t.Setenv("NOIRD_SYNC_S3_PREFIX", "backups/club")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 10*time.Minute {
		t.Errorf("SyncInterval = %v, want 10m", cfg.SyncInterval)
	}
	if cfg.SyncS3Bucket != "my-bucket" {
		t.Errorf("SyncS3Bucket = %q", cfg.SyncS3Bucket)
	}
	if cfg.SyncS3Endpoint != "http://minio:9000" {
		t.Errorf("SyncS3Endpoint = %q", cfg.SyncS3Endpoint)
	}
	if cfg.SyncS3Region != "eu-west-1" {
		t.Errorf("SyncS3Region = %q", cfg.SyncS3Region)
	}
	if cfg.SyncS3Prefix != "backups/club" {
		t.Errorf("SyncS3Prefix = %q", cfg.SyncS3Prefix)
	}
}

func TestLoadBadSyncInterval(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("NOIRD_DATABASE_URL", "postgres://localhost/noird")
	t.Setenv("NOIRD_SYNC_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad sync interval")
	}
}
