// Package config loads runtime settings from the environment with
// development-friendly defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// Config is the full runtime configuration. Every field comes from an
// environment variable; development defaults keep local setup to zero
// required variables.
type Config struct {
	Host string
	Port string
	Env  string // development, production, testing

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible storage for PDF attachments. Optional: uploads are
	// disabled when the credentials are absent.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}

const devPassword = "changeme"

// Load builds the configuration from the environment. Production refuses
// to start on the default database password.
func Load() (*Config, error) {
	cfg := &Config{
		Host: getenv("APP_HOST", "0.0.0.0"),
		Port: getenv("APP_PORT", "8080"),
		Env:  getenv("APP_ENV", "development"),

		DBHost:     getenv("POSTGRES_HOST", "localhost"),
		DBPort:     getenv("POSTGRES_PORT", "5432"),
		DBUser:     getenv("POSTGRES_USER", "kalem"),
		DBPassword: getenv("POSTGRES_PASSWORD", devPassword),
		DBName:     getenv("POSTGRES_DB", "kalem"),

		ValkeyHost:     getenv("VALKEY_HOST", "localhost"),
		ValkeyPort:     getenv("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    getenv("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    getenv("S3_BUCKET", "kalem-files"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	if cfg.Env == "production" && cfg.DBPassword == devPassword {
		return nil, errors.New("POSTGRES_PASSWORD must be set in production")
	}
	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev reports development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// S3Configured reports whether enough storage settings are present to
// enable PDF uploads.
func (c *Config) S3Configured() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
