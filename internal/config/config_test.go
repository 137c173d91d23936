package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"READLOG_STORE", "READLOG_LISTEN_PORT", "READLOG_MAX_UPLOAD_BYTES", "READLOG_TRUST_PROXY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %q, want :8080", cfg.ListenPort)
	}
	if cfg.Store != StoreRedis {
		t.Errorf("Store = %q, want redis", cfg.Store)
	}
	if cfg.MaxUploadBytes != 5242880 {
		t.Errorf("MaxUploadBytes = %d, want 5242880", cfg.MaxUploadBytes)
	}
	if cfg.TrustProxy {
		t.Error("TrustProxy should default to false")
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("READLOG_STORE", "Postgres")
	t.Setenv("READLOG_DATABASE_URL", "postgres://localhost/readlog")
	t.Setenv("READLOG_ALLOWED_CIDRS", `"10.0.0.0/8", 192.168.1.0/24`)
	t.Setenv("READLOG_IMPORT_BURST", "3")
	t.Setenv("REDIS_POOL_SIZE", "25")

	cfg := Load()

	if cfg.Store != StorePostgres {
		t.Errorf("Store = %q, want postgres", cfg.Store)
	}
	if cfg.DatabaseURL != "postgres://localhost/readlog" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if len(cfg.AllowedCIDRS) != 2 || cfg.AllowedCIDRS[0] != "10.0.0.0/8" {
		t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
	}
	if cfg.ImportBurst != 3 {
		t.Errorf("ImportBurst = %d, want 3", cfg.ImportBurst)
	}
	if cfg.RedisPoolSize != 25 {
		t.Errorf("RedisPoolSize = %d, want 25", cfg.RedisPoolSize)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("READLOG_SEED_FILE=/data/library.yaml\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)

	// godotenv never overrides variables that are already set
	os.Unsetenv("READLOG_SEED_FILE")
	t.Cleanup(func() { os.Unsetenv("READLOG_SEED_FILE") })

	cfg := Load()
	if cfg.SeedFile != "/data/library.yaml" {
		t.Errorf("SeedFile = %q, want value from .env", cfg.SeedFile)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store:              StoreMemory,
			LogLevel:           "info",
			MaxUploadBytes:     1024,
			ImportBurst:        1,
			ImportRefillPerMin: 1,
			RequestTimeout:     time.Second,
			RedisAddr:          "localhost:6379",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid memory", mutate: func(*Config) {}},
		{name: "valid redis", mutate: func(c *Config) { c.Store = StoreRedis }},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "mongo" }, wantErr: "unknown backend"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store = StorePostgres }, wantErr: "READLOG_DATABASE_URL"},
		{name: "redis without addr", mutate: func(c *Config) { c.Store = StoreRedis; c.RedisAddr = "" }, wantErr: "READLOG_REDIS_ADDR"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: "READLOG_LOG_LEVEL"},
		{name: "zero upload cap", mutate: func(c *Config) { c.MaxUploadBytes = 0 }, wantErr: "READLOG_MAX_UPLOAD_BYTES"},
		{name: "zero burst", mutate: func(c *Config) { c.ImportBurst = 0 }, wantErr: "READLOG_IMPORT_BURST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := &Config{Store: "nope", LogLevel: "loud"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, want := range []string{"READLOG_STORE", "READLOG_LOG_LEVEL", "READLOG_MAX_UPLOAD_BYTES"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %s", err, want)
		}
	}
}

func TestMustLoadPanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("READLOG_STORE", "mongo")

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("MustLoad() should have panicked")
		}
	}()
	MustLoad()
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{name: "valid duration", value: "5s", def: time.Second, expected: 5 * time.Second},
		{name: "invalid duration uses default", value: "invalid", def: 10 * time.Second, expected: 10 * time.Second},
		{name: "missing variable uses default", value: "", def: 15 * time.Second, expected: 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := mustDuration("TEST_DURATION", tt.def); got != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", value: "true", def: false, expected: true},
		{name: "false value", value: "false", def: true, expected: false},
		{name: "invalid value uses default", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := mustBool("TEST_BOOL", tt.def); got != tt.expected {
				t.Errorf("mustBool() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(` a , 'b',, "c" `)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("splitAndTrim() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitAndTrim()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if splitAndTrim("") != nil {
		t.Error("splitAndTrim(\"\") should be nil")
	}
}
