// Package config loads pathwise settings: built-in defaults, then an
// optional YAML file, then PATHWISE_* environment variables, then
// validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/pipeline"
	"github.com/abhisek/pathwise/internal/remediation"
	"github.com/abhisek/pathwise/internal/store/redisstore"
	"github.com/abhisek/pathwise/internal/tutor"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	LLM         llm.Config        `yaml:"llm"`
	Store       StoreConfig       `yaml:"store"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Remediation RemediationConfig `yaml:"remediation"`
	Log         LogConfig         `yaml:"log"`
}

// StoreConfig selects and configures the session gateway.
type StoreConfig struct {
	Backend string `yaml:"backend" validate:"oneof=sqlite redis"`

	// Path of the SQLite database. Empty means the default data dir.
	Path string `yaml:"path"`

	// Retention is the number of snapshots kept per session; 0 keeps all.
	Retention int `yaml:"retention" validate:"gte=0"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr        string `yaml:"addr"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db" validate:"gte=0"`
	Prefix      string `yaml:"prefix"`
	MaxAttempts int    `yaml:"max_attempts" validate:"gte=0"`
}

// Options converts the section to redisstore options.
func (r RedisConfig) Options() redisstore.Options {
	return redisstore.Options{
		Addr:        r.Addr,
		Password:    r.Password,
		DB:          r.DB,
		Prefix:      r.Prefix,
		MaxAttempts: r.MaxAttempts,
	}
}

// PipelineConfig configures the module pipeline.
type PipelineConfig struct {
	TaskTimeout  time.Duration `yaml:"task_timeout" validate:"gt=0"`
	HistoryLimit int           `yaml:"history_limit" validate:"gte=1,lte=100"`
}

// RemediationConfig holds the policy thresholds.
type RemediationConfig struct {
	PassThreshold float64 `yaml:"pass_threshold" validate:"gt=0,lte=1"`
	RiskThreshold float64 `yaml:"risk_threshold" validate:"gte=0,lte=1"`
}

// Policy converts the section to the policy config.
func (r RemediationConfig) Policy() remediation.Config {
	return remediation.Config{PassThreshold: r.PassThreshold, RiskThreshold: r.RiskThreshold}
}

// LogConfig configures logging.
type LogConfig struct {
	Mode  string `yaml:"mode" validate:"oneof=dev prod"`
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	// Output is the log file. Empty means <data dir>/pathwise.log.
	Output string `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM: llm.DefaultConfig(),
		Store: StoreConfig{
			Backend:   BackendSQLite,
			Retention: 20,
			Redis: RedisConfig{
				Addr:        "localhost:6379",
				Prefix:      "pathwise:",
				MaxAttempts: redisstore.DefaultMaxAttempts,
			},
		},
		Pipeline: PipelineConfig{
			TaskTimeout:  pipeline.DefaultTaskTimeout,
			HistoryLimit: tutor.DefaultHistoryLimit,
		},
		Remediation: RemediationConfig{
			PassThreshold: remediation.PassThreshold,
			RiskThreshold: remediation.RiskThreshold,
		},
		Log: LogConfig{Mode: "prod"},
	}
}

var validate = validator.New()

// Load builds the configuration. An explicit path must exist; with an empty
// path the default location is read when present.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p := os.Getenv("PATHWISE_CONFIG"); p != "" {
			path, explicit = p, true
		} else if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultPath is $XDG_CONFIG_HOME/pathwise/config.yaml, falling back to
// ~/.config/pathwise/config.yaml.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "pathwise", "config.yaml"), nil
}

// ApplyEnv overlays PATHWISE_* environment variables.
func (c *Config) ApplyEnv() {
	c.LLM.ApplyEnv()

	if v := os.Getenv("PATHWISE_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("PATHWISE_REDIS_ADDR"); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := os.Getenv("PATHWISE_REDIS_PASSWORD"); v != "" {
		c.Store.Redis.Password = v
	}
	if v := os.Getenv("PATHWISE_TASK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Pipeline.TaskTimeout = d
		}
	}
	if v := os.Getenv("PATHWISE_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Pipeline.HistoryLimit = n
		}
	}
	if v := os.Getenv("PATHWISE_LOG_MODE"); v != "" {
		c.Log.Mode = v
	}
	if v := os.Getenv("PATHWISE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks field rules. Provider credentials are checked separately
// by llm.Config.Validate when a provider is built.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Store.Backend == BackendRedis && c.Store.Redis.Addr == "" {
		return errors.New("invalid config: store.redis.addr is required for the redis backend")
	}
	return nil
}
