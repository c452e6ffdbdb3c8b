package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"quiz-client/internal/validator"
)

// Config holds the client configuration. Command-line flags override it.
type Config struct {
	ServerURL   string        `env:"QUIZ_SERVER_URL" validate:"required,url"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT_SECONDS" validate:"gt=0"`
	LogLevel    string        `env:"LOG_LEVEL" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFormat   string        `env:"LOG_FORMAT" validate:"oneof=pretty json"`
	// LogFile receives the logs instead of stderr when set.
	LogFile string `env:"LOG_FILE"`

	SessionStore   string        `env:"SESSION_STORE" validate:"oneof=file sqlite redis"`
	SessionPath    string        `env:"SESSION_PATH"`
	SessionProfile string        `env:"SESSION_PROFILE"`
	RedisURL       string        `env:"REDIS_URL" validate:"required_if=SessionStore redis"`
	SessionTTL     time.Duration `env:"SESSION_TTL_HOURS" validate:"gte=0"`

	DisplayTimezone string `env:"DISPLAY_TIMEZONE" validate:"timezone"`
	ExportDir       string `env:"EXPORT_DIR"`
	PDFPageSize     string `env:"PDF_PAGE_SIZE" validate:"oneof=A4 Letter a4 letter"`
}

// Load reads configuration from environment variables with defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerURL:       getEnv("QUIZ_SERVER_URL", "http://localhost:8000"),
		HTTPTimeout:     time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "pretty")),
		LogFile:         getEnv("LOG_FILE", ""),
		SessionStore:    strings.ToLower(getEnv("SESSION_STORE", "file")),
		SessionPath:     getEnv("SESSION_PATH", ""),
		SessionProfile:  getEnv("SESSION_PROFILE", currentUser()),
		RedisURL:        getEnv("REDIS_URL", ""),
		SessionTTL:      time.Duration(getEnvInt("SESSION_TTL_HOURS", 12)) * time.Hour,
		DisplayTimezone: getEnv("DISPLAY_TIMEZONE", "Asia/Kolkata"),
		ExportDir:       getEnv("EXPORT_DIR", "."),
		PDFPageSize:     getEnv("PDF_PAGE_SIZE", "A4"),
	}
}

// Validate checks the values after flags have been applied.
func (c *Config) Validate() error {
	return validator.Struct(c)
}

// Location resolves DisplayTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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

func currentUser() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "default"
}
