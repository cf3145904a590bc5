package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	// defaults
	for _, k := range []string{"TODOAPI_HTTP_ADDR", "TODOAPI_DB_DSN", "TODOAPI_JWT_SECRET", "TODOAPI_ACCESS_TTL", "TODOAPI_REFRESH_TTL", "TODOAPI_CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.HTTPAddr == "" || cfg.DatabaseDSN == "" || cfg.JWTSecret == "" {
		t.Fatalf("empty config fields")
	}
	if cfg.AccessTTL != 15*time.Minute || cfg.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("default ttls: %v %v", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("default cors: %v", cfg.CORSOrigins)
	}

	// env override
	t.Setenv("TODOAPI_HTTP_ADDR", ":9999")
	t.Setenv("TODOAPI_DB_DSN", "memory")
	t.Setenv("TODOAPI_JWT_SECRET", "secret")
	t.Setenv("TODOAPI_ACCESS_TTL", "5m")
	t.Setenv("TODOAPI_REFRESH_TTL", "not-a-duration")
	t.Setenv("TODOAPI_CORS_ORIGINS", "http://a.test, http://b.test,")
	cfg = Load()
	if cfg.HTTPAddr != ":9999" || cfg.DatabaseDSN != "memory" || cfg.JWTSecret != "secret" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.AccessTTL != 5*time.Minute || cfg.RefreshTTL != DefaultRefreshTTL {
		t.Fatalf("ttl parsing: %v %v", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("cors list: %v", cfg.CORSOrigins)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TODOAPI_HTTP_ADDR=:7070\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Setenv("TODOAPI_HTTP_ADDR", "")
	os.Unsetenv("TODOAPI_HTTP_ADDR")
	if cfg := Load(); cfg.HTTPAddr != ":7070" {
		t.Fatalf(".env not loaded: %q", cfg.HTTPAddr)
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{JWTSecret: "x"}.WithDefaults()
	if cfg.AccessTTL != DefaultAccessTTL || cfg.RefreshTTL != DefaultRefreshTTL || cfg.MaxRequestBytes != DefaultMaxRequestBytes || cfg.HashConcurrency != DefaultHashConcurrency {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	cfg = Config{AccessTTL: time.Second}.WithDefaults()
	if cfg.AccessTTL != time.Second {
		t.Fatalf("explicit value overwritten")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
