// Package config loads walkv settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/julianstephens/go-utils/helpers"
	"github.com/julianstephens/go-utils/validator"

	"github.com/julianstephens/walkv/internal/logger"
	"github.com/julianstephens/walkv/internal/walkv"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config is the root of walkv.yaml.
type Config struct {
	// DataDir holds wal.log. It is created on open.
	DataDir string `yaml:"data_dir"`

	// SyncWrites fsyncs the WAL after every append.
	SyncWrites bool `yaml:"sync_writes"`

	// TruncateTornTail cuts an incomplete trailing frame off the WAL on open
	// so new appends start on a record boundary.
	TruncateTornTail bool `yaml:"truncate_torn_tail"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Dir enables the rotating file logger. Empty disables it.
	Dir        string `yaml:"dir"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	// Stream is "stdout", "stderr" or "none".
	Stream string `yaml:"stream"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		DataDir: walkv.DefaultDataDir,
		Log: LogConfig{
			Level:      walkv.DefaultLogLevel,
			MaxSizeMB:  walkv.DefaultLogMaxSize,
			MaxBackups: walkv.DefaultLogMaxBackups,
			Stream:     walkv.LogStreamStderr,
		},
	}
}

// Load reads path over Default(). A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" || !helpers.Exists(path) {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate rejects settings the store cannot run with.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalidConfig)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Stream {
	case "", walkv.LogStreamStdout, walkv.LogStreamStderr, walkv.LogStreamNone:
	default:
		return fmt.Errorf("%w: log.stream %q", ErrInvalidConfig, c.Log.Stream)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalidConfig)
	}
	if c.Log.Dir != "" {
		if err := validator.Numbers[int]().ValidateNonZero(c.Log.MaxSizeMB); err != nil {
			return fmt.Errorf("%w: log.max_size_mb: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}
