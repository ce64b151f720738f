package kasumi

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/kasumi/pkg/configs"
	"go.minekube.com/kasumi/pkg/version"
)

func TestApp(t *testing.T) {
	app := App()
	assert.Equal(t, version.String(), app.Version)

	flags := make(map[string]bool)
	for _, flag := range app.Flags {
		for _, name := range flag.Names() {
			if flags[name] {
				t.Errorf("Flag conflict detected: %s", name)
			}
			flags[name] = true
		}
	}
	for _, name := range []string{"config", "c", "debug", "d", "verbosity", "v", "bind", "b"} {
		assert.True(t, flags[name], "flag %s should exist", name)
	}

	help, err := app.ToMarkdown()
	require.NoError(t, err)
	assert.Contains(t, help, "--bind")
	assert.Contains(t, help, "config")
}

func TestConfigCommand(t *testing.T) {
	app := App()
	out := new(bytes.Buffer)
	app.Writer = out
	require.NoError(t, app.Run([]string{"kasumi", "config"}))
	assert.Equal(t, configs.DefaultConfigBytes, out.Bytes())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kasumi.yml")
	require.NoError(t, os.WriteFile(file, []byte("bind: 127.0.0.1:25566\nworld:\n  viewDistance: 8\n"), 0644))

	t.Setenv("KASUMI_WORLD_GAMEMODE", "survival")
	t.Setenv("KASUMI_TELEMETRY_METRICS_ENABLED", "true")
	v, err := initViper(file)
	require.NoError(t, err)
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:25566", cfg.Bind)
	assert.Equal(t, 8, cfg.World.ViewDistance)
	assert.Equal(t, "survival", cfg.World.GameMode)
	assert.Equal(t, 30000, cfg.ReadTimeout)
	assert.True(t, cfg.Telemetry.Metrics.Enabled)
	assert.Equal(t, "stdout", cfg.Telemetry.Metrics.Exporter)

	_, err = initViper(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(true, 10)
	require.NoError(t, err)
	assert.True(t, log.V(1).Enabled())

	log, err = newLogger(false, 0)
	require.NoError(t, err)
	assert.False(t, log.V(1).Enabled())
}
