package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures server-level configuration.
type Config struct {
	Addr           string
	RedisURL       string
	SessionTTL     time.Duration
	MaxUploadBytes int64
	MaxBulkSaves   int
}

// FromEnv builds the configuration from environment variables so main stays
// lean. Development defaults apply when a variable is unset.
func FromEnv() Config {
	cfg := Config{
		Addr:           ":8080",
		SessionTTL:     30 * time.Minute,
		MaxUploadBytes: 16 << 20,
		MaxBulkSaves:   20,
	}

	if addr := os.Getenv("SAVEEDIT_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	// Empty URL means the in-memory session store is used.
	cfg.RedisURL = os.Getenv("SAVEEDIT_REDIS_URL")

	if ttl := os.Getenv("SAVEEDIT_SESSION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}
	if raw := os.Getenv("SAVEEDIT_MAX_UPLOAD_BYTES"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n
		}
	}
	if raw := os.Getenv("SAVEEDIT_MAX_BULK_SAVES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.MaxBulkSaves = n
		}
	}
	return cfg
}
