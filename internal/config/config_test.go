// ABOUTME: Tests for config loading, env overrides, and path handling.
// ABOUTME: Uses t.Setenv to isolate XDG dirs per test.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateXDG(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, key := range []string{"LIFT_SERVER", "LIFT_TOKEN", "LIFT_DATA_DIR"} {
		// t.Setenv registers the restore; a set-but-empty var would still
		// count as an override, so unset it for real.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestLoadFirstRunMintsDeviceID(t *testing.T) {
	isolateXDG(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.DeviceID)

	// The minted id was written back and survives a reload.
	data, err := os.ReadFile(ConfigPath())
	require.NoError(t, err)
	var onDisk Config
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, cfg.DeviceID, onDisk.DeviceID)

	cfg2, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.DeviceID, cfg2.DeviceID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolateXDG(t)

	cfg := &Config{
		Server:   "https://lift.example.com",
		Token:    "tok-123",
		DeviceID: "dev-1",
		DataDir:  "/tmp/lift-data",
	}
	require.NoError(t, cfg.Save())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, got.Server)
	assert.Equal(t, cfg.Token, got.Token)
	assert.Equal(t, "dev-1", got.DeviceID)
	assert.Equal(t, "/tmp/lift-data", got.DataDir)
}

func TestEnvOverridesFile(t *testing.T) {
	isolateXDG(t)

	cfg := &Config{Server: "https://file.example.com", DeviceID: "dev-1"}
	require.NoError(t, cfg.Save())

	t.Setenv("LIFT_SERVER", "https://env.example.com")
	t.Setenv("LIFT_TOKEN", "env-tok")

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", got.Server)
	assert.Equal(t, "env-tok", got.Token)
}

func TestConfigPathUsesXDG(t *testing.T) {
	dir := isolateXDG(t)
	assert.Equal(t, filepath.Join(dir, "config", "lift", "config.json"), ConfigPath())
}

func TestDBPathDefaultsUnderDataDir(t *testing.T) {
	dir := isolateXDG(t)

	cfg := &Config{}
	assert.Equal(t, filepath.Join(dir, "data", "lift"), cfg.GetDataDir())
	assert.Equal(t, filepath.Join(dir, "data", "lift", "lift.db"), cfg.DBPath())

	cfg.DataDir = "/srv/lift"
	assert.Equal(t, filepath.Join("/srv/lift", "lift.db"), cfg.DBPath())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "lift"), ExpandPath("~/lift"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}
