package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"hovercard/internal/tooltip"
)

const envPrefix = "HOVERCARD_"

type Config struct {
	GitHub GitHub `koanf:"github" yaml:"github"`
	Server Server `koanf:"server" yaml:"server"`
	Viewer Viewer `koanf:"viewer" yaml:"viewer"`
}

type GitHub struct {
	Host         string `koanf:"host" yaml:"host"`
	APIURL       string `koanf:"api_url" yaml:"api_url,omitempty"`
	ClientID     string `koanf:"client_id" yaml:"client_id,omitempty"`
	ClientSecret string `koanf:"client_secret" yaml:"client_secret,omitempty"`
	AuthURL      string `koanf:"auth_url" yaml:"auth_url,omitempty"`
	TokenURL     string `koanf:"token_url" yaml:"token_url,omitempty"`
}

type Server struct {
	Listen   string `koanf:"listen" yaml:"listen"`
	BaseURL  string `koanf:"base_url" yaml:"base_url"`
	Database string `koanf:"database" yaml:"database"`
}

type Viewer struct {
	Endpoint      string `koanf:"endpoint" yaml:"endpoint"`
	User          string `koanf:"user" yaml:"user"`
	OverlayOffset int    `koanf:"overlay_offset" yaml:"overlay_offset"`
	LogFile       string `koanf:"log_file" yaml:"log_file,omitempty"`
}

// DefaultConfig returns a config for a local server and viewer.
func DefaultConfig() *Config {
	user := os.Getenv("USER")
	if user == "" {
		user = "local"
	}
	dataDir := ".hovercard"
	if dir, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(dir, "hovercard")
	}
	return &Config{
		GitHub: GitHub{Host: tooltip.DefaultHost},
		Server: Server{
			Listen:   "127.0.0.1:8065",
			BaseURL:  "http://127.0.0.1:8065",
			Database: filepath.Join(dataDir, "hovercard.db"),
		},
		Viewer: Viewer{
			Endpoint:      "http://127.0.0.1:8065",
			User:          user,
			OverlayOffset: tooltip.DefaultOffset,
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (HOVERCARD_SERVER__LISTEN -> server.listen).
// A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	// may hold the OAuth client secret
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// ValidateViewer checks the settings the viewer needs.
func (c *Config) ValidateViewer() error {
	if err := absoluteURL("viewer.endpoint", c.Viewer.Endpoint); err != nil {
		return err
	}
	if c.Viewer.User == "" {
		return fmt.Errorf("viewer.user is required")
	}
	if c.Viewer.OverlayOffset < 0 {
		return fmt.Errorf("viewer.overlay_offset must be non-negative")
	}
	return c.validateHost()
}

// ValidateServer checks the settings the tooltip server needs.
func (c *Config) ValidateServer() error {
	host, _, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		return fmt.Errorf("invalid server.listen %q: %w", c.Server.Listen, err)
	}
	// callers name themselves, so only local viewers may reach the server
	if !isLoopback(host) {
		return fmt.Errorf("server.listen %q must be a loopback address", c.Server.Listen)
	}
	if err := absoluteURL("server.base_url", c.Server.BaseURL); err != nil {
		return err
	}
	if c.Server.Database == "" {
		return fmt.Errorf("server.database is required")
	}
	if (c.GitHub.ClientID == "") != (c.GitHub.ClientSecret == "") {
		return fmt.Errorf("github.client_id and github.client_secret must be set together")
	}
	if c.GitHub.APIURL != "" {
		if err := absoluteURL("github.api_url", c.GitHub.APIURL); err != nil {
			return err
		}
	}
	return c.validateHost()
}

func (c *Config) validateHost() error {
	if c.GitHub.Host == "" || strings.ContainsAny(c.GitHub.Host, "/ ") {
		return fmt.Errorf("invalid github.host %q", c.GitHub.Host)
	}
	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func absoluteURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
	}
	return nil
}
