// Package config provides environment configuration for the FinSight client.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreNATS   = "nats"
	StoreMemory = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	// Backend service
	APIURL      string
	HTTPTimeout time.Duration

	// Persistence
	StoreBackend string
	DataDir      string
	SettingsFile string
	ExportDir    string

	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	// NATS settings
	NATSURL       string
	NATSCAFile    string
	NATSCertFile  string
	NATSKeyFile   string
	NATSToken     string
	NATSBucket    string
	EventsEnabled bool

	// Interactive client
	IngestCloseDelay time.Duration
	DefaultDepth     int

	// Local API server
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	CORSOrigins        []string

	// Logging
	LogLevel string
	LogFile  string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from a .env file, if present, and environment variables.
func Load() *Config {
	// A missing .env is normal; the process environment still applies.
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", defaultDataDir())

	return &Config{
		// Backend
		APIURL:      getEnv("FINSIGHT_API_URL", "http://127.0.0.1:8000"),
		HTTPTimeout: getDurationEnv("HTTP_TIMEOUT", 2*time.Minute),

		// Persistence
		StoreBackend: getEnv("STORE_BACKEND", StoreFile),
		DataDir:      dataDir,
		SettingsFile: getEnv("SETTINGS_FILE", filepath.Join(dataDir, "settings.yaml")),
		ExportDir:    getEnv("EXPORT_DIR", "."),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		RedisKey:      getEnv("REDIS_KEY", "finsight:sessions"),

		// NATS
		NATSURL:       getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:    getEnv("NATS_CA_FILE", ""),
		NATSCertFile:  getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:   getEnv("NATS_KEY_FILE", ""),
		NATSToken:     getEnv("NATS_TOKEN", ""),
		NATSBucket:    getEnv("NATS_BUCKET", "FINSIGHT"),
		EventsEnabled: getBoolEnv("EVENTS_ENABLED", false),

		// Interactive client
		IngestCloseDelay: getDurationEnv("INGEST_CLOSE_DELAY", 2*time.Second),
		DefaultDepth:     getIntEnv("INGEST_DEFAULT_DEPTH", 1),

		// Server
		ServerPort:         getEnv("PORT", "8090"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Minute),
		RateLimitRequests:  getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:    getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		CORSOrigins:        getListEnv("CORS_ORIGINS"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", filepath.Join(dataDir, "finsight.log")),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".finsight"
	}
	return filepath.Join(home, ".finsight")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated variable, dropping empty entries.
func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
