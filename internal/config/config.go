// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "SQP"

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Id schemes of the memory backend.
const (
	IDSequence = "sequence"
	IDUUID     = "uuid"
)

// Config is the server configuration.
type Config struct {
	GRPCAddr        string `envconfig:"GRPC_ADDR" default:":8443"`
	HTTPAddr        string `envconfig:"HTTP_ADDR" default:":8080"`
	Storage         string `envconfig:"STORAGE" default:"memory"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	JWTKey          string `envconfig:"JWT_KEY" required:"true"`
	IDScheme        string `envconfig:"ID_SCHEME" default:"sequence"`
	Seed            bool   `envconfig:"SEED" default:"true"`
	AuditEvents     bool   `envconfig:"AUDIT_EVENTS" default:"true"`
	SimulateLatency bool   `envconfig:"SIMULATE_LATENCY" default:"false"`
	TLSCert         string `envconfig:"TLS_CERT"`
	TLSKey          string `envconfig:"TLS_KEY"`
	RedisURL        string `envconfig:"REDIS_URL"`
	AuditChannel    string `envconfig:"AUDIT_CHANNEL" default:"sqp:audit"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string `envconfig:"LOG_FORMAT" default:"json"`
	Dev             bool   `envconfig:"DEV" default:"false"`
}

// Load reads envFile (a missing file is ignored) and then SQP_* variables.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TLSEnabled reports whether both TLS files are configured.
func (c Config) TLSEnabled() bool { return c.TLSCert != "" && c.TLSKey != "" }

// Validate checks cross-field constraints that envconfig cannot express.
func (c Config) Validate() error {
	if c.JWTKey == "" {
		return errors.New("SQP_JWT_KEY is required")
	}
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("SQP_DATABASE_URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("SQP_STORAGE %q: want memory or postgres", c.Storage)
	}
	if c.IDScheme != IDSequence && c.IDScheme != IDUUID {
		return fmt.Errorf("SQP_ID_SCHEME %q: want sequence or uuid", c.IDScheme)
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("SQP_TLS_CERT and SQP_TLS_KEY must be set together")
	}
	if !c.TLSEnabled() && !c.Dev {
		return errors.New("TLS files are required unless SQP_DEV is set")
	}
	return nil
}
