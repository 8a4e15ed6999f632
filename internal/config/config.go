package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Token strategies understood by the auth package.
const (
	TokenStrategyJWT  = "jwt"
	TokenStrategyHMAC = "hmac"
)

// Config holds application level configuration loaded from .env, environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenStrategy   string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
	DriverCapacity  int

	BootstrapAdminPhone    string
	BootstrapAdminPassword string
}

const (
	defaultRunAddress      = ":8080"
	defaultJWTSecret       = "change-me-in-production"
	defaultTokenStrategy   = TokenStrategyJWT
	defaultTokenTTL        = 24 * time.Hour
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = "info"
	defaultDriverCapacity  = 1
)

// Load reads configuration in order: .env (if present), environment, flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:             getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:            getString(lookup, "DATABASE_URI", ""),
		JWTSecret:              getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenStrategy:          getString(lookup, "TOKEN_STRATEGY", defaultTokenStrategy),
		TokenTTL:               getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		ShutdownTimeout:        getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:               getString(lookup, "LOG_LEVEL", defaultLogLevel),
		DriverCapacity:         getInt(lookup, "DRIVER_CAPACITY", defaultDriverCapacity),
		BootstrapAdminPhone:    getString(lookup, "BOOTSTRAP_ADMIN_PHONE", ""),
		BootstrapAdminPassword: getString(lookup, "BOOTSTRAP_ADMIN_PASSWORD", ""),
	}

	fs := pflag.NewFlagSet("fueldelivery", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = cfg.TokenTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVarP(&cfg.RunAddress, "address", "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVarP(&cfg.DatabaseURI, "database", "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.TokenStrategy, "token-strategy", cfg.TokenStrategy, "Auth token format: jwt or hmac")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Auth token lifetime")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.IntVar(&cfg.DriverCapacity, "driver-capacity", cfg.DriverCapacity, "Maximum active orders per driver")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DriverCapacity <= 0 {
		cfg.DriverCapacity = defaultDriverCapacity
	}

	cfg.TokenStrategy = strings.ToLower(cfg.TokenStrategy)
	switch cfg.TokenStrategy {
	case TokenStrategyJWT, TokenStrategyHMAC:
	default:
		return nil, fmt.Errorf("unknown token strategy %q", cfg.TokenStrategy)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if (cfg.BootstrapAdminPhone == "") != (cfg.BootstrapAdminPassword == "") {
		return nil, fmt.Errorf("bootstrap admin requires both phone and password")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
