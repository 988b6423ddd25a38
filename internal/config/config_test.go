package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "github.com", cfg.GitHub.Host)
	assert.Equal(t, 10, cfg.Viewer.OverlayOffset)
	assert.Equal(t, "127.0.0.1:8065", cfg.Server.Listen)
	assert.NoError(t, cfg.ValidateViewer())
	assert.NoError(t, cfg.ValidateServer())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hovercard.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
github:
  host: git.example.com
  client_id: id
  client_secret: secret
server:
  listen: 127.0.0.1:9000
viewer:
  endpoint: http://tooltips.example.com
  overlay_offset: 3
`), 0o644))
	t.Setenv("HOVERCARD_VIEWER__USER", "carol")
	t.Setenv("HOVERCARD_SERVER__BASE_URL", "https://tooltips.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "git.example.com", cfg.GitHub.Host)
	assert.Equal(t, "id", cfg.GitHub.ClientID)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)
	assert.Equal(t, "https://tooltips.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "http://tooltips.example.com", cfg.Viewer.Endpoint)
	assert.Equal(t, 3, cfg.Viewer.OverlayOffset)
	assert.Equal(t, "carol", cfg.Viewer.User)
	// untouched keys keep their defaults
	assert.NotEmpty(t, cfg.Server.Database)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("invalid: yaml: content: ["), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "reading config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		server  bool
		wantErr string
	}{
		{"relative endpoint", func(c *Config) { c.Viewer.Endpoint = "/tooltips" }, false, "viewer.endpoint"},
		{"no user", func(c *Config) { c.Viewer.User = "" }, false, "viewer.user"},
		{"negative offset", func(c *Config) { c.Viewer.OverlayOffset = -1 }, false, "overlay_offset"},
		{"bad host", func(c *Config) { c.GitHub.Host = "github.com/x" }, false, "github.host"},
		{"bad listen", func(c *Config) { c.Server.Listen = "8065" }, true, "server.listen"},
		{"all interfaces", func(c *Config) { c.Server.Listen = ":8065" }, true, "loopback"},
		{"public address", func(c *Config) { c.Server.Listen = "0.0.0.0:8065" }, true, "loopback"},
		{"half oauth", func(c *Config) { c.GitHub.ClientID = "id" }, true, "client_secret"},
		{"bad api url", func(c *Config) { c.GitHub.APIURL = "api" }, true, "github.api_url"},
		{"no database", func(c *Config) { c.Server.Database = "" }, true, "server.database"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var err error
			if tt.server {
				err = cfg.ValidateServer()
			} else {
				err = cfg.ValidateViewer()
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateServerLoopback(t *testing.T) {
	for _, addr := range []string{"127.0.0.1:8065", "localhost:8065", "[::1]:8065"} {
		cfg := DefaultConfig()
		cfg.Server.Listen = addr
		assert.NoError(t, cfg.ValidateServer(), addr)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hovercard.yml")
	cfg := DefaultConfig()
	cfg.GitHub.ClientID = "id"
	cfg.GitHub.ClientSecret = "secret"
	cfg.Viewer.User = "dave"
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
