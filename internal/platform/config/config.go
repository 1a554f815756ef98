package config

import (
	"os"
	"strconv"
)

// Config captures process-level configuration. Persistence and the token
// index are optional: an empty DATABASE_URL selects the in-memory stores and
// an empty REDIS_URL disables the self-checkout token index.
type Config struct {
	Addr string

	// DatabaseURL is a lib/pq connection string. Empty means in-memory mode.
	DatabaseURL string

	// RedisURL configures the optional self-checkout token index.
	RedisURL string

	// RecordIDPrefix is the leading token of generated visitor record ids.
	RecordIDPrefix string

	// Bootstrap admin credentials, seeded when no admin account exists.
	BootstrapAdminUser       string
	BootstrapAdminCredential string

	// SMTP settings for the daily email report.
	SMTPHost string
	SMTPPort int
	SMTPFrom string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:                     getenv("GATEHOUSE_ADDR", ":8080"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		RecordIDPrefix:           getenv("RECORD_ID_PREFIX", "VIS"),
		BootstrapAdminUser:       getenv("BOOTSTRAP_ADMIN_USER", "admin"),
		BootstrapAdminCredential: getenv("BOOTSTRAP_ADMIN_CREDENTIAL", "admin123"),
		SMTPHost:                 getenv("SMTP_HOST", "localhost"),
		SMTPPort:                 getenvInt("SMTP_PORT", 25),
		SMTPFrom:                 getenv("SMTP_FROM", "gatehouse@localhost"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
