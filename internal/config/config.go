// Package config centralises environment configuration for the server and the CLI.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures runtime configuration for cmd/api.
type Server struct {
	HTTPAddress   string
	PostgresURL   string // empty selects the in-memory repository
	JWTSecret     string
	JWTIssuer     string
	TokenTTL      time.Duration
	AdminKey      string // empty disables the admin endpoints
	RedisAddr     string // empty disables the read cache
	CacheTTL      time.Duration
	KafkaBrokers  []string // empty disables data-saved events
	EventsTopic   string
	EventsBatch   int
	EventsFlush   time.Duration
	CORSOrigins   []string
	LogMode       string
	ShutdownGrace time.Duration
}

// Client captures configuration for cmd/lifectl.
type Client struct {
	APIURL       string
	DataDir      string
	SyncDebounce time.Duration
	HTTPTimeout  time.Duration
	LogMode      string
}

// LoadDotEnv loads files into the environment without overriding variables already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// LoadServer reads environment variables into Server, applying defaults for local dev.
func LoadServer() Server {
	return Server{
		HTTPAddress:   getEnv("HTTP_ADDRESS", ":3001"),
		PostgresURL:   getEnv("POSTGRES_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:     getEnv("JWT_ISSUER", "lifetrack"),
		TokenTTL:      getDurationEnv("TOKEN_TTL", 7*24*time.Hour),
		AdminKey:      getEnv("ADMIN_KEY", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		CacheTTL:      getDurationEnv("CACHE_TTL", 10*time.Minute),
		KafkaBrokers:  splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		EventsTopic:   getEnv("EVENTS_TOPIC", "lifetrack.user_data.saved"),
		EventsBatch:   getIntEnv("EVENTS_BATCH_SIZE", 25),
		EventsFlush:   getDurationEnv("EVENTS_FLUSH_INTERVAL", time.Second),
		CORSOrigins:   splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		LogMode:       getEnv("LOG_MODE", "dev"),
		ShutdownGrace: getDurationEnv("SHUTDOWN_GRACE", 15*time.Second),
	}
}

// LoadClient reads environment variables into Client.
func LoadClient() Client {
	return Client{
		APIURL:       getEnv("LIFETRACK_API_URL", "http://localhost:3001/api"),
		DataDir:      getEnv("LIFETRACK_DATA_DIR", defaultDataDir()),
		SyncDebounce: getDurationEnv("LIFETRACK_SYNC_DEBOUNCE", time.Second),
		HTTPTimeout:  getDurationEnv("LIFETRACK_HTTP_TIMEOUT", 10*time.Second),
		LogMode:      getEnv("LIFETRACK_LOG_MODE", "dev"),
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "lifetrack")
	}
	return ".lifetrack"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
