// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. UNITBROWSER_LOGGER_LEVEL.
const EnvPrefix = "UNITBROWSER"

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Style() StyleConfig
	Script() ScriptConfig

	SetBrowserViewportWidth(int)
	SetStyleCacheQueries(bool)
	SetStyleLogSkippedSelectors(bool)
	SetScriptTimeout(time.Duration)
	SetScriptConcurrency(int)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	StyleCfg   StyleConfig   `mapstructure:"style" yaml:"style"`
	ScriptCfg  ScriptConfig  `mapstructure:"script" yaml:"script"`
}

var _ Interface = (*Config)(nil)

// --- Getters ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Style() StyleConfig     { return c.StyleCfg }
func (c *Config) Script() ScriptConfig   { return c.ScriptCfg }

// --- Setters ---

func (c *Config) SetBrowserViewportWidth(w int)      { c.BrowserCfg.ViewportWidth = w }
func (c *Config) SetStyleCacheQueries(b bool)        { c.StyleCfg.CacheQueries = b }
func (c *Config) SetStyleLogSkippedSelectors(b bool) { c.StyleCfg.LogSkippedSelectors = b }
func (c *Config) SetScriptTimeout(d time.Duration)   { c.ScriptCfg.Timeout = d }
func (c *Config) SetScriptConcurrency(n int)         { c.ScriptCfg.Concurrency = n }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig describes the emulated screen.
type BrowserConfig struct {
	ViewportWidth  int    `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int    `mapstructure:"viewport_height" yaml:"viewport_height"`
	UserAgent      string `mapstructure:"user_agent" yaml:"user_agent"`
}

// StyleConfig tunes the cascade.
type StyleConfig struct {
	// CacheQueries keeps evaluated selector results until the document changes.
	CacheQueries bool `mapstructure:"cache_queries" yaml:"cache_queries"`
	// LogSkippedSelectors logs every selector the translator cannot express.
	LogSkippedSelectors bool `mapstructure:"log_skipped_selectors" yaml:"log_skipped_selectors"`
}

// ScriptConfig bounds script execution.
type ScriptConfig struct {
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "unitbrowser")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.viewport_width", 1256)
	v.SetDefault("browser.viewport_height", 800)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (compatible; unitbrowser)")

	// -- Style --
	v.SetDefault("style.cache_queries", true)
	v.SetDefault("style.log_skipped_selectors", true)

	// -- Script --
	v.SetDefault("script.timeout", "30s")
	v.SetDefault("script.concurrency", 4)
}

// Load prepares v from an optional config file and the environment. An empty path
// searches the working directory, then ConfigDir, for config.yaml; a missing default file is not an
// error, a missing explicit one is.
func Load(v *viper.Viper, path string) error {
	SetDefaults(v)

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return fmt.Errorf("failed to expand config path %q: %w", path, err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.AddConfigPath(".")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.LoggerCfg.LogFile != "" {
		expanded, err := homedir.Expand(cfg.LoggerCfg.LogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to expand logger.log_file: %w", err)
		}
		cfg.LoggerCfg.LogFile = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.LoggerCfg.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be 'console' or 'json', got %q", c.LoggerCfg.Format)
	}
	if c.BrowserCfg.ViewportWidth <= 0 {
		return fmt.Errorf("browser.viewport_width must be a positive integer")
	}
	if c.BrowserCfg.ViewportHeight < 0 {
		return fmt.Errorf("browser.viewport_height must not be negative")
	}
	if c.ScriptCfg.Timeout <= 0 {
		return fmt.Errorf("script.timeout must be a positive duration")
	}
	if c.ScriptCfg.Concurrency <= 0 {
		return fmt.Errorf("script.concurrency must be a positive integer")
	}
	return nil
}

// ConfigDir returns the per-user directory that holds unitbrowser state.
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".unitbrowser"), nil
}
