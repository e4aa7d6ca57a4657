// Package config loads shmioctl's runtime configuration from built-in
// defaults, a YAML file, and SHMIOCTL_-prefixed environment variables, in
// that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is shmioctl's static configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// MetricsAddr, if non-empty, serves /metrics on this address.
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr"`

	// DebugChecks enables frame corruption checks by default.
	DebugChecks bool `mapstructure:"debug_checks" yaml:"debug_checks"`
}

// Default returns the configuration used when no file, flags, or
// environment variables override it.
func Default() Config {
	return Config{
		LogLevel:    "info",
		MetricsAddr: "",
		DebugChecks: false,
	}
}

// Load reads configPath (if non-empty) as YAML, layers SHMIOCTL_* environment
// variables over it, and returns the result merged onto Default().
func Load(configPath string) (Config, error) {
	v := viper.New()

	cfg := Default()
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("metrics_addr", cfg.MetricsAddr)
	v.SetDefault("debug_checks", cfg.DebugChecks)

	v.SetEnvPrefix("SHMIOCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to path in YAML form, for `shmioctl init`-style flows that
// hand the operator a starting file to edit.
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
