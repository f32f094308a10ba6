package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/servipro/marketplace-api/internal/email"
	"github.com/servipro/marketplace-api/internal/repository/postgres"
	"github.com/servipro/marketplace-api/internal/router"
	"github.com/servipro/marketplace-api/pkg/auth"
	redismsg "github.com/servipro/marketplace-api/pkg/messaging/redis"
	"github.com/servipro/marketplace-api/pkg/worker"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type StorageConfig struct {
	// Backend selects the repository implementation: postgres or memory.
	Backend string `yaml:"backend"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// Config is the process configuration, loaded from YAML with environment
// variable overrides.
type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Router   router.Config    `yaml:"router"`
	Storage  StorageConfig    `yaml:"storage"`
	Database postgres.Config  `yaml:"database"`
	JWT      auth.Config      `yaml:"jwt"`
	Redis    redismsg.Config  `yaml:"redis"`
	SMTP     email.SMTPConfig `yaml:"smtp"`
	Outbox   worker.Config    `yaml:"outbox"`
	Log      LogConfig        `yaml:"log"`
	Metrics  MetricsConfig    `yaml:"metrics"`
}

// Load reads the YAML file at path (optional), then applies MARKETPLACE_*
// environment overrides, then validates.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := defaults()
	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)
	}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := envconfig.Process("marketplace", cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{Backend: BackendPostgres},
		Database: postgres.Config{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Log:     LogConfig{Level: "info"},
		Metrics: MetricsConfig{Namespace: "marketplace"},
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("jwt.refresh_secret is required")
	}
	return nil
}
