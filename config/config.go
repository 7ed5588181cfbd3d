package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"receiver/logging"
)

const envPrefix = "RECEIVER"

// The global, read-only config variable.
var (
	cfg  *Config
	once sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_address", "0.0.0.0:8000")
	v.SetDefault("max_body_bytes", 0)
	v.SetDefault("shutdown_timeout", 15*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.log_interval", time.Second)
}

// Load builds a Config from defaults, an optional YAML file, RECEIVER_* environment
// variables and command line flags, in increasing order of precedence.
func Load(args *CliConfig) (*Config, error) {
	if args == nil {
		args = &CliConfig{}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if args.ConfigFile != "" {
		v.SetConfigFile(args.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if args.Listen != "" {
		v.Set("listen_address", args.Listen)
	}

	var configuration Config
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if args.Debug {
		configuration.Log.Level = "debug"
	}

	if err := configuration.validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return errors.New("listen_address is required")
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative, got %d", c.MaxBodyBytes)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Metrics.LogInterval <= 0 {
		return fmt.Errorf("metrics.log_interval must be positive, got %s", c.Metrics.LogInterval)
	}
	return nil
}

// LoadConfig loads the global configuration. It ensures that the configuration is set only once.
func LoadConfig(args *CliConfig) (*Config, error) {
	var err error
	once.Do(func() {
		var c *Config
		c, err = Load(args)
		if err != nil {
			return
		}
		cfg = c
	})

	if err != nil {
		return nil, err
	}

	if cfg == nil {
		return nil, errors.New("configuration was not set")
	}

	return cfg, nil
}

// GetConfig returns the loaded configuration.
// It panics if the configuration has not been set.
func GetConfig() *Config {
	if cfg == nil {
		panic("Config has not been set! Call LoadConfig first.")
	}
	return cfg
}
