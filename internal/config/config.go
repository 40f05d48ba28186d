// Package config loads and manages the redeembot configuration file.
// The bot token may come from the config file or the REDEEMBOT_TOKEN
// environment variable (the environment wins), so the file can be committed
// without credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TokenEnvVar overrides the configured bot token when set.
const TokenEnvVar = "REDEEMBOT_TOKEN"

// Defaults applied when the file or a field is absent.
const (
	DefaultDataDir       = "data"
	DefaultFetchTimeout  = 15 * time.Second
	DefaultRetentionDays = 7
	DefaultLogLevel      = "info"
	DefaultPollTimeout   = 30 // seconds, long-poll request length
)

// Config represents the contents of the YAML config file.
type Config struct {
	Token               string  `yaml:"token,omitempty"`
	Admins              []int64 `yaml:"admins"`
	DataDir             string  `yaml:"data_dir"`
	FetchTimeoutSeconds int     `yaml:"fetch_timeout_seconds"`
	RetentionDays       int     `yaml:"retention_days"`
	LogLevel            string  `yaml:"log_level"`
	PollTimeoutSeconds  int     `yaml:"poll_timeout_seconds"`
}

// defaultConfig returns a Config with every field at its default.
func defaultConfig() *Config {
	return &Config{
		DataDir:             DefaultDataDir,
		FetchTimeoutSeconds: int(DefaultFetchTimeout / time.Second),
		RetentionDays:       DefaultRetentionDays,
		LogLevel:            DefaultLogLevel,
		PollTimeoutSeconds:  DefaultPollTimeout,
	}
}

// Load reads the config from path. A missing file yields the defaults; a
// present but unparsable file is an error. The token environment variable,
// when set, overrides the file's token.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if env := os.Getenv(TokenEnvVar); env != "" {
		cfg.Token = env
	}

	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults restores zero-valued fields a partial file left out.
func (c *Config) fillDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = int(DefaultFetchTimeout / time.Second)
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = DefaultRetentionDays
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.PollTimeoutSeconds <= 0 {
		c.PollTimeoutSeconds = DefaultPollTimeout
	}
}

// FetchTimeout returns the paste/document fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Retention returns how long export temp files are kept.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// AdminSet returns the admin ids as a set.
func (c *Config) AdminSet() map[int64]bool {
	set := make(map[int64]bool, len(c.Admins))
	for _, id := range c.Admins {
		set[id] = true
	}
	return set
}
