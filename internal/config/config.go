package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete pertloom configuration
type Config struct {
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
	Serve  ServeConfig  `mapstructure:"serve"`
	BD     BDConfig     `mapstructure:"bd"`
	Claude ClaudeConfig `mapstructure:"claude"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	// Format is one of "table", "json", "csv"
	Format string `mapstructure:"format"`
	// Color enables ANSI colours in table output
	Color bool `mapstructure:"color"`
}

// LogConfig controls diagnostic logging on stderr
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// ServeConfig controls the HTTP analysis endpoint
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// BDConfig locates the bd CLI used by import
type BDConfig struct {
	Bin string `mapstructure:"bin"`
	DB  string `mapstructure:"db"` // empty uses bd's own discovery
}

// ClaudeConfig controls dependency inference
type ClaudeConfig struct {
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "table",
			Color:  true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:7777",
		},
		BD: BDConfig{
			Bin: "bd",
		},
		Claude: ClaudeConfig{
			Model:     "claude-sonnet-4-6",
			MaxTokens: 4096,
		},
	}
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.color", defaults.Output.Color)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetDefault("serve.addr", defaults.Serve.Addr)

	v.SetDefault("bd.bin", defaults.BD.Bin)
	v.SetDefault("bd.db", defaults.BD.DB)

	v.SetDefault("claude.model", defaults.Claude.Model)
	v.SetDefault("claude.max_tokens", defaults.Claude.MaxTokens)
}

// Init prepares v: defaults, config file lookup and PERTLOOM_* environment
// overrides. An explicit cfgFile must exist; the default locations are
// optional.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pertloom")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix("PERTLOOM")
	// PERTLOOM_OUTPUT_FORMAT for output.format
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load unmarshals v into a Config and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the directory searched for pertloom.yaml
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pertloom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pertloom"
	}
	return filepath.Join(home, ".config", "pertloom")
}
