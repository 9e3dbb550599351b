// Package config reads and writes the gitorg configuration file, which holds
// the GitHub token and the default organization list.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/naka-gawa/gitorg/internal/domain"
	"github.com/pelletier/go-toml/v2"
)

const (
	appName  = "gitorg"
	fileName = "config.toml"

	// TokenEnv overrides the stored token when set.
	TokenEnv = "GITORG_TOKEN"
)

// Config is the content of config.toml.
type Config struct {
	Auth     AuthConfig     `toml:"auth"`
	Defaults DefaultsConfig `toml:"defaults"`
	API      APIConfig      `toml:"api,omitempty"`
}

// AuthConfig is the [auth] table.
type AuthConfig struct {
	Token domain.Token `toml:"token,omitempty" masq:"secret"`
}

// DefaultsConfig is the [defaults] table. An empty Orgs list means every
// organization the token can see.
type DefaultsConfig struct {
	Orgs []string `toml:"orgs,omitempty"`
}

// APIConfig is the optional [api] table used for GitHub Enterprise Server.
type APIConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
}

// Token returns the configured token, preferring $GITORG_TOKEN.
func (c *Config) Token() (domain.Token, error) {
	if env := strings.TrimSpace(os.Getenv(TokenEnv)); env != "" {
		return domain.Token(env), nil
	}
	if c.Auth.Token == "" {
		return "", &domain.AuthError{}
	}
	return c.Auth.Token, nil
}

// SetToken replaces the stored credential. There is only ever one.
func (c *Config) SetToken(token domain.Token) {
	c.Auth.Token = token
}

// DefaultPath returns $XDG_CONFIG_HOME/gitorg/config.toml, falling back to
// ~/.config/gitorg/config.toml.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", &domain.ConfigError{Err: goerr.Wrap(err, "cannot find home directory")}
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the configuration at path. A missing file yields an empty Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: goerr.Wrap(err, "failed to read config file")}
	}
	return parse(path, data)
}

func parse(path string, data []byte) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}
	for i, org := range cfg.Defaults.Orgs {
		cfg.Defaults.Orgs[i] = strings.TrimSpace(org)
		if cfg.Defaults.Orgs[i] == "" {
			return nil, &domain.ConfigError{Path: path, Err: goerr.New("empty organization name in defaults.orgs", goerr.V("index", i))}
		}
	}
	return &cfg, nil
}

// Save writes cfg to path atomically with owner-only permissions.
func Save(path string, cfg *Config) error {
	err := writeAtomic(path, func(w io.Writer) error {
		return toml.NewEncoder(w).Encode(cfg)
	})
	if err != nil {
		return &domain.ConfigError{Path: path, Err: err}
	}
	return nil
}
