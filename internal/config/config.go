// Package config loads settings from defaults, an optional TOML file and
// TODO_* environment variables, in that order of precedence (lowest first).
// CLI flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/idilsaglam/mytodos/internal/kv"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "todo.toml"

type Config struct {
	Theme   string        `toml:"theme" env:"TODO_THEME" env-default:"auto"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

type StorageConfig struct {
	Driver     string `toml:"driver" env:"TODO_STORAGE_DRIVER" env-default:"file"`
	Key        string `toml:"key" env:"TODO_STORAGE_KEY" env-default:"TodoApp"`
	Dir        string `toml:"dir" env:"TODO_DATA_DIR" env-default:"."`
	SQLitePath string `toml:"sqlite_path" env:"TODO_SQLITE_PATH" env-default:"todos.db"`
	RedisURL   string `toml:"redis_url" env:"TODO_REDIS_URL" env-default:"redis://localhost:6379/0"`
}

type LogConfig struct {
	Level string `toml:"level" env:"TODO_LOG_LEVEL" env-default:"info"`
	// File receives logs while the TUI owns the terminal. Empty discards them.
	File string `toml:"file" env:"TODO_LOG_FILE"`
}

// Default mirrors the env-default tags above.
func Default() Config {
	return Config{
		Theme: "auto",
		Storage: StorageConfig{
			Driver:     "file",
			Key:        "TodoApp",
			Dir:        ".",
			SQLitePath: "todos.db",
			RedisURL:   "redis://localhost:6379/0",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path (or DefaultFile when path is empty and the file exists)
// and then the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Theme) {
	case "auto", "light", "dark":
	default:
		errs = append(errs, fmt.Errorf("theme: want auto, light or dark, got %q", c.Theme))
	}
	if _, err := kv.ParseDriver(c.Storage.Driver); err != nil {
		errs = append(errs, fmt.Errorf("storage.driver: %w", err))
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, errors.New("storage.key: must not be empty"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// StorageOptions translates the storage section for kv.Open.
func (c *Config) StorageOptions() kv.Options {
	return kv.Options{
		Driver:      kv.Driver(c.Storage.Driver),
		Dir:         c.Storage.Dir,
		SQLitePath:  c.Storage.SQLitePath,
		RedisURL:    c.Storage.RedisURL,
		RedisPrefix: "mytodos:",
	}
}

// WriteDefault writes the default configuration as TOML. An existing
// file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
