package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabampctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
extension_dir = "/tmp/ext"
bind_addr = "0.0.0.0:9000"
cdp_port = 9333
log_level = "debug"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ext", cfg.ExtensionDir)
	assert.Equal(t, "0.0.0.0:9000", cfg.BindAddr)
	assert.Equal(t, 9333, cfg.CDPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Default().CDPAddress, cfg.CDPAddress, "unset keys keep defaults")
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("extension_dir = ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabampctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(`bind_addr = "127.0.0.1:1111"`), 0o644))
	t.Setenv("TABAMP_BIND_ADDR", "127.0.0.1:2222")
	t.Setenv("TABAMP_CDP_PORT", "9444")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:2222", cfg.BindAddr)
	assert.Equal(t, 9444, cfg.CDPPort)
}

func TestCDPURL(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://127.0.0.1:9222", cfg.CDPURL())
}
