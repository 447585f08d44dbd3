// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every key. Unprefixed tag names are accepted too.
const Prefix = "USERDESK"

// DefaultEnvFile is read when present.
const DefaultEnvFile = ".env"

// Store selects and configures the document backend.
type Store struct {
	Driver            string `envconfig:"STORE_DRIVER" default:"file"`
	FilePath          string `envconfig:"DB_FILE" default:"db.json"`
	SQLitePath        string `envconfig:"SQLITE_PATH" default:"userdesk.db"`
	PostgresDSN       string `envconfig:"POSTGRES_DSN"`
	S3Bucket          string `envconfig:"S3_BUCKET"`
	S3Key             string `envconfig:"S3_KEY" default:"userdesk/db.json"`
	S3Region          string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint        string `envconfig:"S3_ENDPOINT"`
	S3PathStyle       bool   `envconfig:"S3_PATH_STYLE"`
	S3AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
}

type Config struct {
	Port            int           `envconfig:"PORT" default:"4000"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"text"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	SentryDSN       string        `envconfig:"SENTRY_DSN"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	DefaultPageSize int           `envconfig:"DEFAULT_PAGE_SIZE" default:"10"`

	Store
}

// Load reads envFile (ignored when missing) and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	if c.DefaultPageSize < 1 {
		return fmt.Errorf("invalid default page size %d", c.DefaultPageSize)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout %s", c.ShutdownTimeout)
	}
	return nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Usage prints the recognised keys to stdout.
func Usage() error {
	var c Config
	return envconfig.Usagef(Prefix, &c, os.Stdout, envconfig.DefaultTableFormat)
}
