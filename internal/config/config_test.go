package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every OCTA_ env var that Load() reads.
var allConfigKeys = []string{
	"OCTA_OUTPUT_DIR",
	"OCTA_LOG_LEVEL",
	"OCTA_DB_PATH",
	"OCTA_SECRET_KEY",
	"OCTA_RESOLVE_PASSWORDS",
	"OCTA_SORT_KEYS",
	"OCTA_PARALLELISM",
	"OCTA_HTML_REPORTS",
}

// isolateConfigEnv saves and unsets all OCTA_ env vars so tests don't
// inherit values from the host environment.
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("OCTA_OUTPUT_DIR", "/tmp/out")
	t.Setenv("OCTA_LOG_LEVEL", "debug")
	t.Setenv("OCTA_DB_PATH", "/tmp/octa.db")
	t.Setenv("OCTA_SECRET_KEY", strings.Repeat("ab", SecretKeySize))
	t.Setenv("OCTA_RESOLVE_PASSWORDS", "true")
	t.Setenv("OCTA_SORT_KEYS", "1")
	t.Setenv("OCTA_PARALLELISM", "8")
	t.Setenv("OCTA_HTML_REPORTS", "TRUE")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/tmp/octa.db", cfg.DBPath)
	assert.True(t, cfg.HasResultStore())
	require.Len(t, cfg.SecretKey, SecretKeySize)
	assert.Equal(t, byte(0xab), cfg.SecretKey[0])
	assert.True(t, cfg.ResolvePasswords)
	assert.True(t, cfg.SortKeys)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.True(t, cfg.HTMLReports)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "matches", cfg.OutputDir)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.DBPath)
	assert.False(t, cfg.HasResultStore())
	assert.Nil(t, cfg.SecretKey)
	assert.False(t, cfg.ResolvePasswords)
	assert.False(t, cfg.SortKeys)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.False(t, cfg.HTMLReports)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "log level", key: "OCTA_LOG_LEVEL", value: "loud"},
		{name: "secret not hex", key: "OCTA_SECRET_KEY", value: "zz"},
		{name: "secret too short", key: "OCTA_SECRET_KEY", value: "abcd"},
		{name: "bool", key: "OCTA_SORT_KEYS", value: "maybe"},
		{name: "parallelism not int", key: "OCTA_PARALLELISM", value: "many"},
		{name: "parallelism zero", key: "OCTA_PARALLELISM", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	isolateConfigEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OCTA_OUTPUT_DIR=from-file\nOCTA_PARALLELISM=3\n"), 0o600))
	t.Setenv("OCTA_PARALLELISM", "2")

	require.NoError(t, LoadEnvFile(path))
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.OutputDir)
	assert.Equal(t, 2, cfg.Parallelism, "existing environment wins over the file")
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
}
