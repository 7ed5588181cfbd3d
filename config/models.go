package config

import "time"

// LogConfig controls the process-wide logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig lists the origins allowed to call the receiver. "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MetricsConfig controls the /metrics route and the periodic activity log line.
type MetricsConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	LogInterval time.Duration `mapstructure:"log_interval"`
}

// Config holds the application configuration.
type Config struct {
	ListenAddress   string        `mapstructure:"listen_address"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Log             LogConfig     `mapstructure:"log"`
	CORS            CORSConfig    `mapstructure:"cors"`
	Metrics         MetricsConfig `mapstructure:"metrics"`
}
