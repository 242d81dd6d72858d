// Package config loads server configuration from a TOML file layered over
// built-in defaults. A missing file is not an error — the defaults are a
// working local setup.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	GitHub   GitHubConfig   `toml:"github"`
	Sandbox  SandboxConfig  `toml:"sandbox"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type AuthConfig struct {
	JWTSecret      string `toml:"jwt_secret"`
	TokenExpiryMin int    `toml:"token_expiry_min"`
	SecureCookies  bool   `toml:"secure_cookies"`
}

// GitHubConfig holds the OAuth App credentials. GitHub login is disabled
// when ClientID is empty.
type GitHubConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	CallbackURL  string `toml:"callback_url"`
}

// SandboxConfig controls the automated-review sandbox. When disabled the
// server runs fine without a Docker daemon; automated review requests
// report the feature as unavailable.
type SandboxConfig struct {
	Enabled    bool `toml:"enabled"`
	PoolSize   int  `toml:"pool_size"`
	TimeoutSec int  `toml:"timeout_sec"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{
			Path: "data/codementor.db",
		},
		Auth: AuthConfig{
			JWTSecret:      "change-me-in-production",
			TokenExpiryMin: 1440, // 24h
			SecureCookies:  false,
		},
		GitHub: GitHubConfig{
			CallbackURL: "http://localhost:8080/auth/github/callback",
		},
		Sandbox: SandboxConfig{
			Enabled:    false,
			PoolSize:   2,
			TimeoutSec: 5,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
