package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const configEnv = "SIDPATCH_CONFIG"

// Config holds the host settings. The patch core itself has no configuration.
type Config struct {
	ServerName    string `yaml:"server_name"`
	ServerVersion string `yaml:"server_version"`
	DeviceID      int    `yaml:"device_id"` // SysEx device id, 7-bit
	LogFile       string `yaml:"log_file,omitempty"`
	Debug         bool   `yaml:"debug,omitempty"` // dump SysEx frames to stderr
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ServerName:    "SID Patch MCP",
		ServerVersion: "1.0.0",
		DeviceID:      0x00,
	}
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sidpatch", "config.yaml"), nil
}

// LoadConfig reads the config at path, or at ConfigPath when path is empty.
// A missing file yields the defaults. Keys absent from the file keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks values that end up on the wire.
func (c *Config) Validate() error {
	if c.DeviceID < 0 || c.DeviceID > 0x7F {
		return errors.Errorf("device_id must be in range 0-127, got %d", c.DeviceID)
	}
	if c.ServerName == "" {
		return errors.New("server_name must not be empty")
	}
	return nil
}

// InitConfig writes the default config to path, or to ConfigPath when path
// is empty, unless a file already exists there. It returns the path used.
func InitConfig(path string) (string, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return "", errors.Wrap(err, "resolving config path")
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		return path, errors.Errorf("config %s already exists", path)
	} else if !os.IsNotExist(err) {
		return path, errors.Wrapf(err, "checking config %s", path)
	}

	return path, DefaultConfig().Save(path)
}

// Save writes the config to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithStack(err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(os.WriteFile(path, data, 0644))
}
