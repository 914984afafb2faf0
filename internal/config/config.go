package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents configuration data for the dashboard.
type Config struct {
	ListenAddr      string   `yaml:"listen_addr" toml:"listen_addr"`
	ProbeHost       string   `yaml:"probe_host" toml:"probe_host"`
	DefaultPort     int      `yaml:"default_port" toml:"default_port"`
	RefreshInterval Duration `yaml:"refresh_interval" toml:"refresh_interval"`
	RequestTimeout  Duration `yaml:"request_timeout" toml:"request_timeout"`
	AutoRefresh     bool     `yaml:"auto_refresh" toml:"auto_refresh"`
	TimeZone        string   `yaml:"time_zone" toml:"time_zone"`
	Logging         Logging  `yaml:"logging" toml:"logging"`
}

// Logging controls log level, format and the optional rotating log file.
type Logging struct {
	Dir      string `yaml:"dir" toml:"dir"`
	MaxMB    int    `yaml:"max_mb" toml:"max_mb"`
	MaxFiles int    `yaml:"max_files" toml:"max_files"`
	Level    string `yaml:"level" toml:"level"`
	Format   string `yaml:"format" toml:"format"`
}

// Duration wraps time.Duration so config files can say "10s".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// UnmarshalText lets the TOML decoder read durations from strings.
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// DefaultConfig returns sensible defaults in case no configuration file is provided.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":8090",
		ProbeHost:       "localhost",
		DefaultPort:     8080,
		RefreshInterval: Duration{10 * time.Second},
		AutoRefresh:     true,
		TimeZone:        "Local",
		Logging: Logging{
			MaxMB:    10,
			MaxFiles: 3,
			Level:    "info",
			Format:   "text",
		},
	}
}

// Load reads configuration from a YAML or TOML file. Missing files fall back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(content), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, "listen_addr is required")
	}
	if strings.TrimSpace(c.ProbeHost) == "" {
		errs = append(errs, "probe_host is required")
	}
	if c.DefaultPort <= 0 || c.DefaultPort > 65535 {
		errs = append(errs, fmt.Sprintf("default_port %d out of range", c.DefaultPort))
	}
	if c.RefreshInterval.Duration < time.Second {
		errs = append(errs, "refresh_interval must be at least 1s")
	}
	if c.RequestTimeout.Duration < 0 {
		errs = append(errs, "request_timeout must not be negative")
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("time_zone: %v", err))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q is not one of text, json", c.Logging.Format))
	}
	if c.Logging.Dir != "" {
		if c.Logging.MaxMB <= 0 {
			errs = append(errs, "logging.max_mb must be > 0")
		}
		if c.Logging.MaxFiles <= 0 {
			errs = append(errs, "logging.max_files must be > 0")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Location resolves the configured time zone used for displayed timestamps.
func (c *Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.TimeZone) {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.TimeZone)
	}
}
