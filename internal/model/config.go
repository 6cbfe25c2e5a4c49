package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend names.
const (
	BackendSQLite  = "sqlite"
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendMemory  = "memory"
)

// Snapshot codec names.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// StorageConfig selects where and how snapshots are persisted.
type StorageConfig struct {
	// Backend is one of the Backend* constants.
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the database file (sqlite), directory (file, keyring file
	// fallback) or unused (memory).
	Path string `mapstructure:"path" yaml:"path"`

	// Codec is one of the Codec* constants.
	Codec string `mapstructure:"codec" yaml:"codec"`

	// TodosKey and TagsKey name the two durable slots.
	TodosKey string `mapstructure:"todos_key" yaml:"todos_key"`
	TagsKey  string `mapstructure:"tags_key" yaml:"tags_key"`
}

// BehaviorConfig holds the timing and feature switches of the store.
type BehaviorConfig struct {
	ErrorExpiryMS    int  `mapstructure:"error_expiry_ms" yaml:"error_expiry_ms"`
	SearchDebounceMS int  `mapstructure:"search_debounce_ms" yaml:"search_debounce_ms"`
	SearchEnabled    bool `mapstructure:"search_enabled" yaml:"search_enabled"`
}

// ErrorExpiry returns the error expiry as a duration.
func (b BehaviorConfig) ErrorExpiry() time.Duration {
	return time.Duration(b.ErrorExpiryMS) * time.Millisecond
}

// SearchDebounce returns the search debounce delay as a duration.
func (b BehaviorConfig) SearchDebounce() time.Duration {
	return time.Duration(b.SearchDebounceMS) * time.Millisecond
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	// File receives log output; empty means stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Behavior BehaviorConfig `mapstructure:"behavior" yaml:"behavior"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/todolist/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "todolist", "config.yaml")
}

// DefaultDataDir returns the directory holding persisted snapshots,
// located at ~/.local/share/todolist.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(home, ".local", "share", "todolist")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Backend:  BackendSQLite,
			Path:     filepath.Join(DefaultDataDir(), "todos.db"),
			Codec:    CodecJSON,
			TodosKey: "react-todo-context7-todos",
			TagsKey:  "react-todo-context7-tags",
		},
		Behavior: BehaviorConfig{
			ErrorExpiryMS:    3000,
			SearchDebounceMS: 300,
			SearchEnabled:    true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(DefaultDataDir(), "todolist.log"),
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// TODOLIST_* environment variables override file values (for example
// TODOLIST_STORAGE_BACKEND). If the file does not exist, defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	def := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("todolist")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values and so
	// AutomaticEnv can see every key.
	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.path", def.Storage.Path)
	v.SetDefault("storage.codec", def.Storage.Codec)
	v.SetDefault("storage.todos_key", def.Storage.TodosKey)
	v.SetDefault("storage.tags_key", def.Storage.TagsKey)
	v.SetDefault("behavior.error_expiry_ms", def.Behavior.ErrorExpiryMS)
	v.SetDefault("behavior.search_debounce_ms", def.Behavior.SearchDebounceMS)
	v.SetDefault("behavior.search_enabled", def.Behavior.SearchEnabled)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("display.theme", def.Display.Theme)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks enumerated settings and clamps non-positive delays.
func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile, BackendKeyring, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Storage.Codec {
	case CodecJSON, CodecMsgpack:
	default:
		return fmt.Errorf("unknown storage codec %q", c.Storage.Codec)
	}
	if c.Storage.TodosKey == "" || c.Storage.TagsKey == "" {
		return fmt.Errorf("storage keys must not be empty")
	}
	if c.Storage.TodosKey == c.Storage.TagsKey {
		return fmt.Errorf("storage keys must differ, both are %q", c.Storage.TodosKey)
	}

	def := DefaultAppConfig()
	if c.Behavior.ErrorExpiryMS <= 0 {
		c.Behavior.ErrorExpiryMS = def.Behavior.ErrorExpiryMS
	}
	if c.Behavior.SearchDebounceMS < 0 {
		c.Behavior.SearchDebounceMS = def.Behavior.SearchDebounceMS
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("behavior", cfg.Behavior)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
