package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"QUIZ_SERVER_URL", "HTTP_TIMEOUT_SECONDS", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
		"SESSION_STORE", "SESSION_PATH", "REDIS_URL", "SESSION_TTL_HOURS",
		"DISPLAY_TIMEZONE", "EXPORT_DIR", "PDF_PAGE_SIZE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, "http://localhost:8000", cfg.ServerURL)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "file", cfg.SessionStore)
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
	require.Equal(t, "Asia/Kolkata", cfg.DisplayTimezone)
	require.Equal(t, "A4", cfg.PDFPageSize)
	require.NoError(t, cfg.Validate())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("QUIZ_SERVER_URL", "https://quiz.example.edu")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("SESSION_TTL_HOURS", "not-a-number")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")

	cfg := Load()
	require.Equal(t, "https://quiz.example.edu", cfg.ServerURL)
	require.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "redis", cfg.SessionStore)
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
	require.Equal(t, time.UTC, cfg.Location())
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			ServerURL:       "http://localhost:8000",
			HTTPTimeout:     time.Second,
			LogLevel:        "info",
			LogFormat:       "json",
			SessionStore:    "file",
			DisplayTimezone: "UTC",
			PDFPageSize:     "Letter",
		}
	}
	require.NoError(t, base().Validate())

	cases := map[string]func(*Config){
		"store":    func(c *Config) { c.SessionStore = "memcache" },
		"redis":    func(c *Config) { c.SessionStore = "redis" },
		"timeout":  func(c *Config) { c.HTTPTimeout = 0 },
		"url":      func(c *Config) { c.ServerURL = "not a url" },
		"timezone": func(c *Config) { c.DisplayTimezone = "Mars/Olympus" },
		"page":     func(c *Config) { c.PDFPageSize = "A3" },
		"format":   func(c *Config) { c.LogFormat = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
