// Package config loads settings from droidwright.yaml, the environment and
// .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/logging"
	"github.com/tas33n/DroidWright/internal/netfetch"
	"github.com/tas33n/DroidWright/internal/planner"
	"github.com/tas33n/DroidWright/internal/script"
	"github.com/tas33n/DroidWright/internal/wait"
)

// EnvPrefix prefixes environment overrides: DROIDWRIGHT_WAIT_POLL_INTERVAL
// sets wait.poll_interval.
const EnvPrefix = "DROIDWRIGHT"

// Config is the full application configuration.
type Config struct {
	ADB      ADBConfig       `mapstructure:"adb"`
	Wait     wait.Config     `mapstructure:"wait"`
	Dispatch action.Config   `mapstructure:"dispatch"`
	Storage  StorageConfig   `mapstructure:"storage"`
	Network  netfetch.Config `mapstructure:"network"`
	Planner  PlannerConfig   `mapstructure:"planner"`
	Log      logging.Config  `mapstructure:"log"`
	Run      RunConfig       `mapstructure:"run"`
	Serve    ServeConfig     `mapstructure:"serve"`
}

// ADBConfig locates the adb binary and the device.
type ADBConfig struct {
	Path   string `mapstructure:"path"`
	Serial string `mapstructure:"serial"`
}

// StorageConfig locates the script key-value database.
type StorageConfig struct {
	Path string `mapstructure:"path"` // SQLite file, or ":memory:"
}

// PlannerConfig selects the action planner.
type PlannerConfig struct {
	Provider             string `mapstructure:"provider"` // gemini or http
	URL                  string `mapstructure:"url"`      // Plan server for the http provider
	planner.GeminiConfig `mapstructure:",squash"`
}

// RunConfig bounds script runs.
type RunConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServeConfig configures the MCP server.
type ServeConfig struct {
	Transport string        `mapstructure:"transport"` // stdio or streamable-http
	Addr      string        `mapstructure:"addr"`      // Listen address for streamable-http
	CacheTTL  time.Duration `mapstructure:"cache_ttl"` // Snapshot reuse window for read-only tools
}

// SetDefaults registers every key with its default value. Keys must be
// registered for environment overrides to apply.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("adb.path", "adb")
	v.SetDefault("adb.serial", "")

	wc := wait.DefaultConfig()
	v.SetDefault("wait.poll_interval", wc.PollInterval)
	v.SetDefault("wait.settle", wc.Settle)
	v.SetDefault("wait.scroll_duration", wc.ScrollDuration)

	dc := action.DefaultConfig()
	v.SetDefault("dispatch.tap_settle", dc.TapSettle)
	v.SetDefault("dispatch.swipe_settle", dc.SwipeSettle)
	v.SetDefault("dispatch.long_tap_duration", dc.LongTapDuration)
	v.SetDefault("dispatch.swipe_duration", dc.SwipeDuration)
	v.SetDefault("dispatch.sleep_duration", dc.SleepDuration)

	v.SetDefault("storage.path", DefaultStoragePath())

	nc := netfetch.DefaultConfig()
	v.SetDefault("network.timeout", nc.Timeout)
	v.SetDefault("network.max_elapsed", nc.MaxElapsed)
	v.SetDefault("network.max_body", nc.MaxBody)

	v.SetDefault("planner.provider", "gemini")
	v.SetDefault("planner.url", "")
	v.SetDefault("planner.api_key", "")
	v.SetDefault("planner.model", "gemini-2.5-flash")
	v.SetDefault("planner.temperature", 0.2)
	v.SetDefault("planner.requests_per_minute", 10)

	lc := logging.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.format", lc.Format)
	v.SetDefault("log.file", lc.File)
	v.SetDefault("log.max_size", lc.MaxSize)
	v.SetDefault("log.max_backups", lc.MaxBackups)
	v.SetDefault("log.max_age", lc.MaxAge)
	v.SetDefault("log.compress", lc.Compress)

	v.SetDefault("run.timeout", script.DefaultConfig().Timeout)
	v.SetDefault("serve.transport", "stdio")
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.cache_ttl", 500*time.Millisecond)
}

// DefaultStoragePath returns the SQLite file used when storage.path is unset.
func DefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "droidwright.db"
	}
	return filepath.Join(home, ".local", "share", "droidwright", "storage.db")
}

// ReadFile reads path, or when path is empty searches for droidwright.yaml
// in the working directory and $HOME/.config/droidwright. A missing
// searched-for file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("droidwright")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "droidwright"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load applies defaults and environment overrides to v and returns the
// validated configuration.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("planner.api_key", EnvPrefix+"_PLANNER_API_KEY", "GEMINI_API_KEY"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration with every default applied.
func Default() Config {
	cfg, err := Load(viper.New())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the configuration for sane values.
func (c Config) Validate() error {
	durations := map[string]time.Duration{
		"wait.poll_interval":         c.Wait.PollInterval,
		"wait.settle":                c.Wait.Settle,
		"wait.scroll_duration":       c.Wait.ScrollDuration,
		"dispatch.tap_settle":        c.Dispatch.TapSettle,
		"dispatch.swipe_settle":      c.Dispatch.SwipeSettle,
		"dispatch.long_tap_duration": c.Dispatch.LongTapDuration,
		"dispatch.swipe_duration":    c.Dispatch.SwipeDuration,
		"dispatch.sleep_duration":    c.Dispatch.SleepDuration,
		"network.timeout":            c.Network.Timeout,
		"network.max_elapsed":        c.Network.MaxElapsed,
		"run.timeout":                c.Run.Timeout,
		"serve.cache_ttl":            c.Serve.CacheTTL,
	}
	for key, d := range durations {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", key, d)
		}
	}
	if c.Wait.PollInterval == 0 {
		return fmt.Errorf("wait.poll_interval must be positive")
	}
	if c.Network.MaxBody < 0 {
		return fmt.Errorf("network.max_body must not be negative")
	}
	switch c.Planner.Provider {
	case "gemini":
	case "http":
		if c.Planner.URL == "" {
			return fmt.Errorf("planner.url is required for the http provider")
		}
	default:
		return fmt.Errorf("planner.provider must be gemini or http, got %q", c.Planner.Provider)
	}
	if c.Planner.RequestsPerMinute < 0 {
		return fmt.Errorf("planner.requests_per_minute must not be negative")
	}
	switch c.Serve.Transport {
	case "stdio", "streamable-http":
	default:
		return fmt.Errorf("serve.transport must be stdio or streamable-http, got %q", c.Serve.Transport)
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}

// Runner returns the settings for script runs.
func (c Config) Runner() script.Config {
	return script.Config{Timeout: c.Run.Timeout, Wait: c.Wait, Dispatch: c.Dispatch}
}
