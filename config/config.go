// Package config loads messaging-core runtime configuration from YAML,
// the way a long-running game server or matchmaking process would supply
// it rather than constructing options in code.
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// TransportMode selects which transport.Transport implementation a
// process should construct from a Config.
type TransportMode string

const (
	// TransportUDP is a plain, unencrypted UDP transport.
	TransportUDP TransportMode = "udp"
	// TransportSecureUDP is a Noise_XX-encrypted UDP transport.
	TransportSecureUDP TransportMode = "secure_udp"
)

// Config is the top-level shape of a msgcore YAML configuration file.
type Config struct {
	ListenAddr string        `yaml:"listen_addr"`
	Transport  TransportMode `yaml:"transport"`
	LogLevel   string        `yaml:"log_level"`

	// StaticKeyFile names a file holding a hex-encoded Curve25519 private
	// key to use as this process's Noise identity. Only meaningful when
	// Transport is TransportSecureUDP; a blank value means generate and
	// discard an ephemeral key at startup.
	StaticKeyFile string `yaml:"static_key_file"`
}

// Default returns the configuration a freshly installed process should
// start from.
func Default() *Config {
	return &Config{
		ListenAddr: ":33445",
		Transport:  TransportUDP,
		LogLevel:   "info",
	}
}

// Load reads and parses a YAML configuration file at path, filling in
// defaults for anything the file omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that a Config describes a runnable process.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}

	switch c.Transport {
	case TransportUDP, TransportSecureUDP:
	default:
		return fmt.Errorf("transport must be %q or %q, got %q", TransportUDP, TransportSecureUDP, c.Transport)
	}

	if c.Transport == TransportUDP && c.StaticKeyFile != "" {
		return fmt.Errorf("static_key_file is only meaningful for transport %q", TransportSecureUDP)
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unrecognized log_level %q", c.LogLevel)
	}

	return nil
}

// LogrusLevel parses LogLevel into a logrus.Level, defaulting to
// logrus.InfoLevel for a blank value. Validate should be called first;
// LogrusLevel assumes LogLevel is already one of the accepted strings.
func (c *Config) LogrusLevel() logrus.Level {
	if c.LogLevel == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
