package kasumi

import (
	"fmt"
	"slices"
	"time"

	"go.minekube.com/kasumi/pkg/proto/codec"
	"go.minekube.com/kasumi/pkg/proto/packet"
	"go.minekube.com/kasumi/pkg/proto/util"
	"go.minekube.com/kasumi/pkg/telemetry"
	"go.minekube.com/kasumi/pkg/util/configutil"
	"go.minekube.com/kasumi/pkg/util/validation"
	"go.minekube.com/kasumi/pkg/world"
)

// Config is the configuration of the server.
type Config struct {
	Bind string // The address to listen for connections.

	ProxyProtocol     bool // ha-proxy compatibility
	ReadTimeout       int  // ms
	WriteTimeout      int  // ms
	KeepAliveInterval int  // ms, 0 disables keep-alives
	MaxFrameSize      int

	Quota  Quota
	Status Status
	Login  Login
	World  World

	GameData string // Path to a game data table, empty uses the embedded table.

	Telemetry telemetry.Config

	Debug bool
}

type (
	// Quota is the config for rate limiting.
	Quota struct {
		Connections QuotaSettings // Limits new connections per second, per IP block.
	}
	QuotaSettings struct {
		Enabled    bool    // If false, there is no such limiting.
		OPS        float32 // Allowed operations/events per second, per IP block
		Burst      int     // The maximum events per second, per block; the size of the token bucket
		MaxEntries int     // Maximum number of IP blocks to keep track of in cache
	}
	Status struct {
		Motd           string // Legacy text or JSON component.
		ShowMaxPlayers int    // Zero hides the player count.
		Favicon        string // Data URI or image file path.
		CacheTTL       int    // ms, 0 disables the status cache
		VersionName    string
	}
	Login struct {
		OfflineUUIDs bool
	}
	World struct {
		ViewDistance       int
		SimulationDistance int
		Layers             []uint32 // Block state ids from the bottom up.
		Biome              string
		GameMode           string
		Hardcore           bool
		SeaLevel           int
	}
)

// GameModes maps config names to game modes.
var GameModes = map[string]packet.GameMode{
	"survival":  packet.Survival,
	"creative":  packet.Creative,
	"adventure": packet.Adventure,
	"spectator": packet.Spectator,
}

// maxViewDistance is the largest view distance a vanilla client accepts.
const maxViewDistance = 32

// SetDefaults sets Config defaults used with Viper.
func SetDefaults(i configutil.SetDefault) {
	i.SetDefault("bind", "0.0.0.0:25565")
	i.SetDefault("proxyProtocol", false)
	i.SetDefault("readTimeout", 30000)
	i.SetDefault("writeTimeout", 10000)
	i.SetDefault("keepAliveInterval", 15000)
	i.SetDefault("maxFrameSize", codec.VanillaMaximumFrameLength)

	// Default quotas should never affect legitimate operations,
	// but rate limits aggressive behaviours.
	i.SetDefault("quota.connections.enabled", true)
	i.SetDefault("quota.connections.ops", 5)
	i.SetDefault("quota.connections.burst", 10)
	i.SetDefault("quota.connections.maxEntries", 1000)

	i.SetDefault("status.motd", "§dA Kasumi Server")
	i.SetDefault("status.showMaxPlayers", 20)
	i.SetDefault("status.cacheTtl", 1000)
	i.SetDefault("status.versionName", "Kasumi "+packet.MinecraftVersion)

	i.SetDefault("login.offlineUuids", true)

	i.SetDefault("world.viewDistance", 4)
	i.SetDefault("world.simulationDistance", 4)
	// bedrock, dirt, dirt, grass block
	i.SetDefault("world.layers", []uint32{85, 10, 10, 9})
	i.SetDefault("world.biome", "minecraft:plains")
	i.SetDefault("world.gameMode", "creative")
	i.SetDefault("world.seaLevel", 63)

	i.SetDefault("telemetry.metrics.enabled", false)
	i.SetDefault("telemetry.metrics.exporter", "stdout")
	i.SetDefault("telemetry.metrics.endpoint", "localhost:4317")
	i.SetDefault("telemetry.metrics.interval", 60000)
}

// Validate validates Config.
func (c *Config) Validate() (warns []error, errs []error) {
	e := func(m string, args ...any) { errs = append(errs, fmt.Errorf(m, args...)) }
	w := func(m string, args ...any) { warns = append(warns, fmt.Errorf(m, args...)) }

	if c == nil {
		e("config must not be nil")
		return
	}

	if len(c.Bind) == 0 {
		e("Bind is empty")
	} else if err := validation.ValidHostPort(c.Bind); err != nil {
		e("Invalid bind %q: %v", c.Bind, err)
	}

	if c.ReadTimeout <= 0 {
		e("Read timeout must be positive, got %dms", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		e("Write timeout must not be negative, got %dms", c.WriteTimeout)
	}
	if c.KeepAliveInterval < 0 {
		e("Keep-alive interval must not be negative, got %dms", c.KeepAliveInterval)
	} else if c.KeepAliveInterval == 0 {
		w("Keep-alives are disabled, clients will time out after about 15 seconds in the world")
	} else if c.KeepAliveInterval >= c.ReadTimeout {
		w("Keep-alive interval %dms is not shorter than the read timeout %dms", c.KeepAliveInterval, c.ReadTimeout)
	}
	if c.MaxFrameSize <= 0 || c.MaxFrameSize > codec.VanillaMaximumFrameLength {
		e("Max frame size must be 1..%d, got %d", codec.VanillaMaximumFrameLength, c.MaxFrameSize)
	}

	if q := c.Quota.Connections; q.Enabled {
		if q.OPS <= 0 {
			e("Connection quota ops must be positive, got %v", q.OPS)
		}
		if q.Burst <= 0 {
			e("Connection quota burst must be positive, got %d", q.Burst)
		}
		if q.MaxEntries <= 0 {
			e("Connection quota max entries must be positive, got %d", q.MaxEntries)
		}
	}

	if c.Status.ShowMaxPlayers < 0 {
		e("Status show max players must not be negative, got %d", c.Status.ShowMaxPlayers)
	}
	if c.Status.CacheTTL < 0 {
		e("Status cache ttl must not be negative, got %dms", c.Status.CacheTTL)
	}

	if !c.Login.OfflineUUIDs {
		w("Player UUIDs sent by clients are trusted, enable login.offlineUuids to derive them from names")
	}

	if c.World.ViewDistance < 0 || c.World.ViewDistance > maxViewDistance {
		e("View distance must be 0..%d, got %d", maxViewDistance, c.World.ViewDistance)
	}
	if c.World.SimulationDistance < 0 || c.World.SimulationDistance > maxViewDistance {
		e("Simulation distance must be 0..%d, got %d", maxViewDistance, c.World.SimulationDistance)
	}
	if len(c.World.Layers) == 0 {
		w("World has no layers, players will fall into the void")
	} else if len(c.World.Layers) > world.Height {
		e("World has %d layers, at most %d are allowed", len(c.World.Layers), world.Height)
	}
	if _, err := util.ParseKey(c.World.Biome); err != nil {
		e("Invalid biome %q: %v", c.World.Biome, err)
	}
	if _, ok := GameModes[c.World.GameMode]; !ok {
		e("Unknown game mode %q, must be one of survival,creative,adventure,spectator", c.World.GameMode)
	}

	if m := c.Telemetry.Metrics; m.Enabled {
		if !slices.Contains(telemetry.Exporters, m.Exporter) {
			e("Unknown metrics exporter %q, must be one of %v", m.Exporter, telemetry.Exporters)
		} else if m.Exporter == "otlp" && m.Endpoint == "" {
			e("Metrics endpoint is required for the otlp exporter")
		}
		if m.Interval < 0 {
			e("Metrics interval must not be negative, got %dms", m.Interval)
		}
	}

	return
}

func millis(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }
