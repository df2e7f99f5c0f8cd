package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/worldnav/engine/resolve"
	"github.com/nathoo/worldnav/types"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NAVIGATOR_WORLD", "NAVIGATOR_STORE", "NAVIGATOR_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, resolve.DefaultScale(), cfg.ResolverScale())
	assert.Equal(t, types.Settings{Enabled: true}, cfg.Settings())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "navigator.toml")
	body := `
[navigator]
enabled = true
sticky_location = true
auto_confirm = true

[scale]
km_per_unit = 1.0
max_distance_km = 10.0

[world]
file = "maps/world.json"
watch = true

[store]
driver = "memory"

[log]
level = "debug"
development = true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, types.Settings{Enabled: true, StickyLocation: true, AutoConfirm: true}, cfg.Settings())
	assert.Equal(t, resolve.Scale{KMPerUnit: 1, MaxDistanceKM: 10}, cfg.ResolverScale())
	assert.Equal(t, "maps/world.json", cfg.World.File)
	assert.True(t, cfg.World.Watch)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "navigator.toml")
	require.NoError(t, os.WriteFile(path, []byte("[navigator]\nsticky_location = true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Navigator.Enabled)
	assert.True(t, cfg.Navigator.StickyLocation)
	assert.Equal(t, 3.485, cfg.Scale.KMPerUnit)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	tests := map[string]string{
		"syntax":     "[navigator\n",
		"zero scale": "[scale]\nkm_per_unit = 0.0\n",
		"driver":     "[store]\ndriver = \"postgres\"\n",
		"level":      "[log]\nlevel = \"loud\"\n",
		"no path":    "[store]\ndriver = \"sqlite\"\npath = \"\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "navigator.toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Run("world and log level", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NAVIGATOR_WORLD", "/tmp/world.yaml")
		t.Setenv("NAVIGATOR_LOG_LEVEL", "warn")

		cfg := Defaults()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/world.yaml", cfg.World.File)
		assert.Equal(t, "warn", cfg.Log.Level)
	})

	t.Run("store path selects sqlite", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NAVIGATOR_STORE", "/tmp/s.db")

		cfg := &Config{Store: StoreConfig{Driver: DriverMemory}}
		cfg.applyEnvOverrides()

		assert.Equal(t, DriverSQLite, cfg.Store.Driver)
		assert.Equal(t, "/tmp/s.db", cfg.Store.Path)
	})

	t.Run("memory store", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NAVIGATOR_STORE", "memory")

		cfg := Defaults()
		cfg.applyEnvOverrides()

		assert.Equal(t, DriverMemory, cfg.Store.Driver)
		assert.Equal(t, "data/sessions.db", cfg.Store.Path)
	})

	t.Run("empty values leave config alone", func(t *testing.T) {
		clearEnv(t)

		cfg := Defaults()
		cfg.applyEnvOverrides()

		assert.Equal(t, Defaults(), cfg)
	})
}
