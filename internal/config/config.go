// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// SecretKeySize is the decoded length of OCTA_SECRET_KEY (AES-256).
const SecretKeySize = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	OutputDir        string
	LogLevel         slog.Level
	DBPath           string
	SecretKey        []byte
	ResolvePasswords bool
	SortKeys         bool
	Parallelism      int
	HTMLReports      bool
}

// HasResultStore reports whether run history should be persisted.
func (c *Config) HasResultStore() bool {
	return c.DBPath != ""
}

// LoadEnvFile loads variables from a dotenv file into the process environment.
// Variables already set are left untouched. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables and returns a validated Config.
// Optional variables with defaults: OCTA_OUTPUT_DIR (matches), OCTA_LOG_LEVEL (info),
// OCTA_DB_PATH (empty, history disabled), OCTA_SECRET_KEY (empty, stored passwords
// dropped), OCTA_RESOLVE_PASSWORDS, OCTA_SORT_KEYS, OCTA_HTML_REPORTS (false),
// OCTA_PARALLELISM (1).
func Load() (*Config, error) {
	cfg := &Config{
		OutputDir:   "matches",
		LogLevel:    slog.LevelInfo,
		Parallelism: 1,
	}

	if v, ok := os.LookupEnv("OCTA_OUTPUT_DIR"); ok && v != "" {
		cfg.OutputDir = v
	}

	if v, ok := os.LookupEnv("OCTA_LOG_LEVEL"); ok && v != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("OCTA_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	cfg.DBPath = os.Getenv("OCTA_DB_PATH")

	if v := os.Getenv("OCTA_SECRET_KEY"); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("OCTA_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != SecretKeySize {
			return nil, fmt.Errorf("OCTA_SECRET_KEY must decode to %d bytes, got %d", SecretKeySize, len(key))
		}
		cfg.SecretKey = key
	}

	var err error
	if cfg.ResolvePasswords, err = lookupBool("OCTA_RESOLVE_PASSWORDS"); err != nil {
		return nil, err
	}
	if cfg.SortKeys, err = lookupBool("OCTA_SORT_KEYS"); err != nil {
		return nil, err
	}
	if cfg.HTMLReports, err = lookupBool("OCTA_HTML_REPORTS"); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("OCTA_PARALLELISM"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("OCTA_PARALLELISM has invalid value %q: %w", v, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("OCTA_PARALLELISM must be at least 1, got %d", n)
		}
		cfg.Parallelism = n
	}

	return cfg, nil
}

// ParseLevel maps a level name to a slog.Level. Matching is case-insensitive.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func lookupBool(key string) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s has invalid boolean %q: %w", key, v, err)
	}
	return b, nil
}
