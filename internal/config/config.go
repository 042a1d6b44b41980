package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL   = "http://localhost:8888/api"
	DefaultFeedURL  = "ws://localhost:8888/ws"
	DefaultLogLevel = "info"
)

// Environment overrides, applied after the file is read.
const (
	EnvAPIURL   = "BOTADMIN_API_URL"
	EnvFeedURL  = "BOTADMIN_FEED_URL"
	EnvLogLevel = "BOTADMIN_LOG_LEVEL"
)

// Config represents ~/.botadmin/config.toml.
type Config struct {
	DefaultProfile string       `toml:"default_profile"`
	Server         ServerConfig `toml:"server"`
	Log            LogConfig    `toml:"log"`
}

// ServerConfig locates the bot backend.
type ServerConfig struct {
	APIURL  string `toml:"api_url"`
	FeedURL string `toml:"feed_url"`
}

// LogConfig controls the local log file.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns a config pointing at a backend on localhost:8888.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			APIURL:  DefaultAPIURL,
			FeedURL: DefaultFeedURL,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads config from the given path. Returns nil config and error if file missing.
// Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault reads path if it exists, falls back to defaults when it does
// not, and applies environment overrides either way.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		cfg = Default()
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides server and log settings from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		c.Server.APIURL = v
	}
	if v := getenv(EnvFeedURL); v != "" {
		c.Server.FeedURL = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks that the backend URLs use supported schemes.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Server.APIURL, "http://") && !strings.HasPrefix(c.Server.APIURL, "https://") {
		return fmt.Errorf("server.api_url %q must be an http(s) URL", c.Server.APIURL)
	}
	if !strings.HasPrefix(c.Server.FeedURL, "ws://") && !strings.HasPrefix(c.Server.FeedURL, "wss://") {
		return fmt.Errorf("server.feed_url %q must be a ws(s) URL", c.Server.FeedURL)
	}
	return nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
