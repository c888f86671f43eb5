// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file, a .env
// file and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN holds the Postgres connection string.
	DatabaseDSN string `json:"database_dsn"`

	// JWTSecret signs and verifies bearer tokens.
	JWTSecret string `json:"jwt_secret"`

	// TokenTTL is the lifetime of issued bearer tokens.
	TokenTTL time.Duration `json:"token_ttl"`

	// LogLevel is passed to the zap logger.
	LogLevel string `json:"log_level"`

	// AllowedOrigins lists the origins accepted by CORS and the websocket
	// handshake. Empty means any origin.
	AllowedOrigins []string `json:"allowed_origins"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:3015", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.JWTSecret, "s", "", "secret used to sign bearer tokens")
	flag.DurationVar(&options.TokenTTL, "ttl", 7*24*time.Hour, "bearer token lifetime")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.DurationVar(&options.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the optional config file and
// environment variables. Values from a .env file in the working directory are
// exported into the environment first and never override variables that are
// already set. It returns a pointer to the Options struct containing the
// parsed configuration values.
func Parse() *Options {
	_ = godotenv.Load()
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if err := loadFile(options.Config, options); err != nil {
		log.Fatal(err)
	}

	if err := applyEnv(options); err != nil {
		log.Fatal(err)
	}

	return options
}

// loadFile merges a JSON config file into opts. A missing file is not an error.
func loadFile(path string, opts *Options) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func applyEnv(opts *Options) error {
	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		opts.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		opts.DatabaseDSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		opts.JWTSecret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		opts.LogLevel = level
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		opts.AllowedOrigins = splitList(origins)
	}
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		opts.TokenTTL = d
	}
	if timeout := os.Getenv("SHUTDOWN_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
		opts.ShutdownTimeout = d
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
