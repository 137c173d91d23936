package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/readlog/internal/logger"
)

// Store backends.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per request deadline

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store       string // "redis" | "postgres" | "memory"
	DatabaseURL string // postgres DSN, required when Store == "postgres"
	SeedFile    string // optional YAML library loaded into an empty store

	// Import
	MaxUploadBytes     int64 // upload cap for CSV files
	ImportBurst        int   // token bucket size per client IP
	ImportRefillPerMin int   // tokens added per minute

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int           // connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, doubled each time
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict /settings to these networks
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// Load reads a .env file when present, then the process environment.
// Variables already set in the environment win over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] .env ignored: %v\n", err)
	}

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("READLOG_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("READLOG_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("READLOG_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("READLOG_LOG_LEVEL", "info"),
		PrettyLog: mustBool("READLOG_PRETTY_LOG", true),

		// Storage
		Store:       strings.ToLower(getenv("READLOG_STORE", StoreRedis)),
		DatabaseURL: getenv("READLOG_DATABASE_URL", ""),
		SeedFile:    getenv("READLOG_SEED_FILE", ""),

		// Import
		MaxUploadBytes:     getenvInt64("READLOG_MAX_UPLOAD_BYTES", 5<<20),
		ImportBurst:        getenvInt("READLOG_IMPORT_BURST", 10),
		ImportRefillPerMin: getenvInt("READLOG_IMPORT_REFILL_PER_MIN", 30),

		// Redis settings
		RedisAddr:           getenv("READLOG_REDIS_ADDR", "localhost:6379"),
		RedisUser:           getenv("READLOG_REDIS_USERNAME", ""),
		RedisPassword:       getenv("READLOG_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("READLOG_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("READLOG_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("READLOG_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("READLOG_TRUST_PROXY", false),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.DatabaseURL != "" {
			cfgCopy.DatabaseURL = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// MustLoad is Load followed by Validate. It panics on an invalid configuration.
func MustLoad() *Config {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: invalid configuration: %v", err))
	}
	return cfg
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("READLOG_REDIS_ADDR is required for the redis store"))
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("READLOG_DATABASE_URL is required for the postgres store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("READLOG_STORE: unknown backend %q", c.Store))
	}

	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("READLOG_LOG_LEVEL: unknown level %q", c.LogLevel))
	}

	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("READLOG_MAX_UPLOAD_BYTES must be > 0"))
	}
	if c.ImportBurst <= 0 {
		errs = append(errs, errors.New("READLOG_IMPORT_BURST must be > 0"))
	}
	if c.ImportRefillPerMin <= 0 {
		errs = append(errs, errors.New("READLOG_IMPORT_REFILL_PER_MIN must be > 0"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("READLOG_REQUEST_TIMEOUT must be > 0"))
	}

	return errors.Join(errs...)
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
