package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSecret = "dev-secret-change"

// Defaults applied when a value is not configured.
const (
	DefaultAccessTTL       = 15 * time.Minute
	DefaultRefreshTTL      = 7 * 24 * time.Hour
	DefaultMaxRequestBytes = 1 << 20
	DefaultHashConcurrency = 4
)

type Config struct {
	HTTPAddr          string
	DatabaseDSN       string
	JWTSecret         string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	MaxRequestBytes   int64
	CORSOrigins       []string
	PasswordAlgorithm string
	HashConcurrency   int64
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		HTTPAddr:          getEnv("TODOAPI_HTTP_ADDR", ":8080"),
		DatabaseDSN:       getEnv("TODOAPI_DB_DSN", "file:todoapi.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"),
		JWTSecret:         getEnv("TODOAPI_JWT_SECRET", devSecret),
		AccessTTL:         getDuration("TODOAPI_ACCESS_TTL", DefaultAccessTTL),
		RefreshTTL:        getDuration("TODOAPI_REFRESH_TTL", DefaultRefreshTTL),
		MaxRequestBytes:   getInt("TODOAPI_MAX_REQUEST_BYTES", DefaultMaxRequestBytes),
		CORSOrigins:       splitList(getEnv("TODOAPI_CORS_ORIGINS", "*")),
		PasswordAlgorithm: getEnv("TODOAPI_PASSWORD_ALGORITHM", "argon2id"),
		HashConcurrency:   getInt("TODOAPI_HASH_CONCURRENCY", DefaultHashConcurrency),
	}
	if cfg.JWTSecret == devSecret {
		log.Println("WARNING: using development JWT secret; set TODOAPI_JWT_SECRET")
	}
	return cfg
}

// WithDefaults fills zero-valued durations and limits.
func (c Config) WithDefaults() Config {
	if c.AccessTTL <= 0 {
		c.AccessTTL = DefaultAccessTTL
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = DefaultRefreshTTL
	}
	if c.MaxRequestBytes <= 0 {
		c.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if c.HashConcurrency <= 0 {
		c.HashConcurrency = DefaultHashConcurrency
	}
	return c
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("WARNING: invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func getInt(key string, def int64) int64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("WARNING: invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
