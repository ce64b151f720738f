package kasumi

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/kasumi/pkg/configs"
	"go.minekube.com/kasumi/pkg/telemetry"
)

// defaultConfig returns the config Viper builds from the defaults alone.
func defaultConfig(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	var c Config
	require.NoError(t, v.Unmarshal(&c))
	return &c
}

func TestDefaults(t *testing.T) {
	c := defaultConfig(t)
	assert.Equal(t, "0.0.0.0:25565", c.Bind)
	assert.Equal(t, 30000, c.ReadTimeout)
	assert.Equal(t, 15000, c.KeepAliveInterval)
	assert.True(t, c.Quota.Connections.Enabled)
	assert.Equal(t, float32(5), c.Quota.Connections.OPS)
	assert.Equal(t, 1000, c.Status.CacheTTL)
	assert.True(t, c.Login.OfflineUUIDs)
	assert.Equal(t, []uint32{85, 10, 10, 9}, c.World.Layers)
	assert.Equal(t, "creative", c.World.GameMode)

	warns, errs := c.Validate()
	assert.Empty(t, warns)
	assert.Empty(t, errs)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		warns  int
		errs   int
	}{
		{"empty bind", func(c *Config) { c.Bind = "" }, 0, 1},
		{"bad bind", func(c *Config) { c.Bind = "localhost" }, 0, 1},
		{"bad port", func(c *Config) { c.Bind = "localhost:70000" }, 0, 1},
		{"no read timeout", func(c *Config) { c.ReadTimeout = 0 }, 1, 1},
		{"keep-alives disabled", func(c *Config) { c.KeepAliveInterval = 0 }, 1, 0},
		{"slow keep-alives", func(c *Config) { c.KeepAliveInterval = 30000 }, 1, 0},
		{"huge frames", func(c *Config) { c.MaxFrameSize = 1 << 22 }, 0, 1},
		{"bad quota", func(c *Config) { c.Quota.Connections.Burst = 0 }, 0, 1},
		{"disabled bad quota", func(c *Config) {
			c.Quota.Connections = QuotaSettings{Enabled: false}
		}, 0, 0},
		{"online uuids", func(c *Config) { c.Login.OfflineUUIDs = false }, 1, 0},
		{"view distance", func(c *Config) { c.World.ViewDistance = 33 }, 0, 1},
		{"no layers", func(c *Config) { c.World.Layers = nil }, 1, 0},
		{"too many layers", func(c *Config) { c.World.Layers = make([]uint32, 385) }, 0, 1},
		{"bad biome", func(c *Config) { c.World.Biome = "Plains!" }, 0, 1},
		{"bad game mode", func(c *Config) { c.World.GameMode = "hardcore" }, 0, 1},
		{"disabled bad exporter", func(c *Config) { c.Telemetry.Metrics.Exporter = "statsd" }, 0, 0},
		{"metrics to stdout", func(c *Config) { c.Telemetry.Metrics.Enabled = true }, 0, 0},
		{"bad exporter", func(c *Config) {
			c.Telemetry.Metrics.Enabled = true
			c.Telemetry.Metrics.Exporter = "statsd"
		}, 0, 1},
		{"otlp without endpoint", func(c *Config) {
			c.Telemetry.Metrics = telemetry.Metrics{Enabled: true, Exporter: "otlp", Interval: -1}
		}, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaultConfig(t)
			tt.modify(c)
			warns, errs := c.Validate()
			assert.Len(t, warns, tt.warns, "%v", warns)
			assert.Len(t, errs, tt.errs, "%v", errs)
		})
	}

	var nilConfig *Config
	_, errs := nilConfig.Validate()
	assert.Len(t, errs, 1)
}

func TestEmbeddedConfig(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(configs.DefaultConfigBytes)))
	var c Config
	require.NoError(t, v.Unmarshal(&c))
	assert.Equal(t, *defaultConfig(t), c)
}
