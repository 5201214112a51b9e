package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

const envPrefix = "TASKLINE"

type Config struct {
	DatabasePath    string
	Timezone        string
	DefaultDuration time.Duration
	DebounceDelay   time.Duration
	SchedulerBuffer int
	LogLevel        string
	ShowGaps        bool
}

// fileConfig mirrors Config with durations spelled as strings, which is how
// they read in a hand-edited TOML file.
type fileConfig struct {
	DatabasePath    string `toml:"database"`
	Timezone        string `toml:"timezone"`
	DefaultDuration string `toml:"default_duration"`
	DebounceDelay   string `toml:"debounce_delay"`
	SchedulerBuffer int    `toml:"scheduler_buffer"`
	LogLevel        string `toml:"log_level"`
	ShowGaps        bool   `toml:"show_gaps"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:    filepath.Join(DefaultDir(), "taskline.db"),
		Timezone:        "Local",
		DefaultDuration: 45 * time.Minute,
		DebounceDelay:   time.Second,
		SchedulerBuffer: 64,
		LogLevel:        "info",
		ShowGaps:        true,
	}
}

// DefaultDir is $XDG_CONFIG_HOME/taskline, falling back to ~/.config/taskline.
func DefaultDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "taskline")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskline"
	}
	return filepath.Join(home, ".config", "taskline")
}

func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// Load reads the TOML file at path (the default location when empty) and
// applies TASKLINE_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	def := DefaultConfig()
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database", def.DatabasePath)
	v.SetDefault("timezone", def.Timezone)
	v.SetDefault("default_duration", def.DefaultDuration.String())
	v.SetDefault("debounce_delay", def.DebounceDelay.String())
	v.SetDefault("scheduler_buffer", def.SchedulerBuffer)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("show_gaps", def.ShowGaps)

	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := Config{
		DatabasePath:    v.GetString("database"),
		Timezone:        v.GetString("timezone"),
		DefaultDuration: v.GetDuration("default_duration"),
		DebounceDelay:   v.GetDuration("debounce_delay"),
		SchedulerBuffer: v.GetInt("scheduler_buffer"),
		LogLevel:        v.GetString("log_level"),
		ShowGaps:        v.GetBool("show_gaps"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return errors.New("config: database path is required")
	}
	if c.DefaultDuration <= 0 {
		return fmt.Errorf("config: default_duration must be positive, got %s", c.DefaultDuration)
	}
	if c.DebounceDelay < 0 {
		return fmt.Errorf("config: debounce_delay must not be negative, got %s", c.DebounceDelay)
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("config: scheduler_buffer must be positive, got %d", c.SchedulerBuffer)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; "" and "Local" mean the system zone.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// WriteDefault writes the default configuration to path unless a file is
// already there.
func WriteDefault(path string) error {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, DefaultConfig()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(fileConfig{
		DatabasePath:    cfg.DatabasePath,
		Timezone:        cfg.Timezone,
		DefaultDuration: cfg.DefaultDuration.String(),
		DebounceDelay:   cfg.DebounceDelay.String(),
		SchedulerBuffer: cfg.SchedulerBuffer,
		LogLevel:        cfg.LogLevel,
		ShowGaps:        cfg.ShowGaps,
	})
}
