// Kunhua Huang 2026

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds tuning values only. Addresses and ports are always given on
// the command line.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
}

type ServerConfig struct {
	ReadTimeout    Duration `yaml:"read_timeout"`
	WriteTimeout   Duration `yaml:"write_timeout"`
	MaxConnections int      `yaml:"max_connections"`
	ReusePort      bool     `yaml:"reuse_port"`
	FrameRate      int64    `yaml:"frame_rate"` // frames per second, 0 = unlimited
	FrameBurst     int64    `yaml:"frame_burst"`
	GracePeriod    Duration `yaml:"grace_period"`
	MetricsAddress string   `yaml:"metrics_address"` // empty disables /metrics
	LogLevel       string   `yaml:"log_level"`
}

type ClientConfig struct {
	Rounds       int      `yaml:"rounds"`
	RoundDelay   Duration `yaml:"round_delay"`
	DialTimeout  Duration `yaml:"dial_timeout"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	LogLevel     string   `yaml:"log_level"`
}

type Duration struct{ time.Duration }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Default returns the values used when no file is given. Timeouts are zero,
// meaning socket calls block until they complete.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			GracePeriod: Duration{5 * time.Second},
			LogLevel:    "info",
		},
		Client: ClientConfig{
			Rounds:      3,
			RoundDelay:  Duration{2 * time.Second},
			DialTimeout: Duration{5 * time.Second},
			LogLevel:    "info",
		},
	}
}

// Load reads path over Default, so keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("server.max_connections must not be negative")
	}
	if c.Server.FrameRate < 0 {
		return fmt.Errorf("server.frame_rate must not be negative")
	}
	if c.Server.FrameRate > 0 && c.Server.FrameBurst <= 0 {
		return fmt.Errorf("server.frame_burst must be positive when frame_rate is set")
	}
	if c.Client.Rounds < 0 {
		return fmt.Errorf("client.rounds must not be negative")
	}

	for name, d := range map[string]Duration{
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
		"server.grace_period":  c.Server.GracePeriod,
		"client.round_delay":   c.Client.RoundDelay,
		"client.dial_timeout":  c.Client.DialTimeout,
		"client.read_timeout":  c.Client.ReadTimeout,
		"client.write_timeout": c.Client.WriteTimeout,
	} {
		if d.Duration < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}

	for name, lvl := range map[string]string{
		"server.log_level": c.Server.LogLevel,
		"client.log_level": c.Client.LogLevel,
	} {
		if !knownLevel(lvl) {
			return fmt.Errorf("%s: unknown level %q", name, lvl)
		}
	}
	return nil
}

func knownLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error", "none", "off":
		return true
	}
	return false
}
