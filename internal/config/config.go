// Package config loads qrfusion configuration from defaults, an optional
// YAML file and QRFUSION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cristianadrielbraun/qrfusion/internal/logo"
)

// Config is the resolved runtime configuration.
type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	Logo     LogoConfig
	Export   ExportConfig
	Limits   LimitsConfig
	Settings LogSettings
}

type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type SessionConfig struct {
	TTL    time.Duration
	Cookie string
}

type LogoConfig struct {
	MaxBytes int64
}

type ExportConfig struct {
	Filename string
}

// LimitsConfig rate limits logo uploads and exports per client address.
type LimitsConfig struct {
	PerSecond float64
	Burst     int
}

type LogSettings struct {
	Debug     bool
	LogToFile bool
	LogsDir   string
}

// DefaultAddr is the listen address used when nothing else is configured.
const DefaultAddr = ":8080"

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.shutdown-timeout", 10*time.Second)
	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.cookie", "qrfusion_session")
	v.SetDefault("logo.max-bytes", logo.DefaultMaxBytes)
	v.SetDefault("export.filename", "qr-fusion-code.png")
	v.SetDefault("limits.per-second", 5.0)
	v.SetDefault("limits.burst", 10)
	v.SetDefault("settings.debug", false)
	v.SetDefault("settings.log-to-file", false)
	v.SetDefault("settings.logs-dir", "logs")
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("QRFUSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (if set) into v and resolves the configuration. Without a
// path, ./config.yaml is used when present.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			ShutdownTimeout: v.GetDuration("server.shutdown-timeout"),
		},
		Session: SessionConfig{
			TTL:    v.GetDuration("session.ttl"),
			Cookie: v.GetString("session.cookie"),
		},
		Logo:   LogoConfig{MaxBytes: v.GetInt64("logo.max-bytes")},
		Export: ExportConfig{Filename: v.GetString("export.filename")},
		Limits: LimitsConfig{
			PerSecond: v.GetFloat64("limits.per-second"),
			Burst:     v.GetInt("limits.burst"),
		},
		Settings: LogSettings{
			Debug:     v.GetBool("settings.debug"),
			LogToFile: v.GetBool("settings.log-to-file"),
			LogsDir:   v.GetString("settings.logs-dir"),
		},
	}

	// PORT is honored for platforms that only inject a port number, unless an
	// address was configured explicitly.
	if port := os.Getenv("PORT"); port != "" && cfg.Server.Addr == DefaultAddr {
		cfg.Server.Addr = ":" + port
	}
	return cfg, nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Session.Cookie == "" {
		return fmt.Errorf("session.cookie is required")
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must not be negative")
	}
	if c.Logo.MaxBytes <= 0 {
		return fmt.Errorf("logo.max-bytes must be positive")
	}
	if c.Export.Filename == "" || strings.ContainsAny(c.Export.Filename, `/\"`) {
		return fmt.Errorf("export.filename must be a plain file name")
	}
	if c.Limits.PerSecond <= 0 || c.Limits.Burst <= 0 {
		return fmt.Errorf("limits.per-second and limits.burst must be positive")
	}
	return nil
}
