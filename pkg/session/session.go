// Package session implements the packet handlers taking a client
// from the handshake through login and configuration into a flat world.
package session

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/jellydator/ttlcache/v3"
	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/common/minecraft/key"
	"golang.org/x/sync/singleflight"

	"go.minekube.com/kasumi/pkg/gamedata"
	"go.minekube.com/kasumi/pkg/netmc"
	"go.minekube.com/kasumi/pkg/proto/packet"
	"go.minekube.com/kasumi/pkg/proto/state"
	"go.minekube.com/kasumi/pkg/util/favicon"
	"go.minekube.com/kasumi/pkg/util/uuid"
	"go.minekube.com/kasumi/pkg/world"
)

// Options configure the handlers.
type Options struct {
	// Status
	Motd           *component.Text
	VersionName    string
	MaxPlayers     int
	ShowMaxPlayers bool
	Favicon        favicon.Favicon
	StatusCacheTTL time.Duration // Zero disables caching.
	// Online returns the number of players in the world.
	Online func() int

	// Login
	OfflineUUIDs bool // Derive player UUIDs from names instead of trusting the client.

	// World
	GameData           *gamedata.Table
	ViewDistance       int
	SimulationDistance int
	Layers             []uint32 // Block state ids from the bottom of the world up.
	Biome              key.Key
	GameMode           packet.GameMode
	Hardcore           bool
	SeaLevel           int
}

// Handlers handles the packets of client connections.
type Handlers struct {
	opts Options

	dimensionType int
	dimensionName key.Key
	spawnY        float64
	chunk         *world.Chunk
	light         packet.LightData

	statusCache *ttlcache.Cache[string, string]
}

const (
	dimensionTypeRegistry = "minecraft:dimension_type"
	biomeRegistry         = "minecraft:worldgen/biome"
	overworld             = "minecraft:overworld"
)

// New validates opts against the game data table and prepares the flat world.
func New(opts Options) (*Handlers, error) {
	if opts.GameData == nil {
		opts.GameData = gamedata.Default()
	}
	if opts.Online == nil {
		opts.Online = func() int { return 0 }
	}
	if opts.Biome == nil {
		opts.Biome = key.New(key.MinecraftNamespace, "plains")
	}
	if len(opts.Layers) > world.Height {
		return nil, fmt.Errorf("%d layers exceed the world height of %d", len(opts.Layers), world.Height)
	}
	dimType, ok := opts.GameData.Index(dimensionTypeRegistry, overworld)
	if !ok {
		return nil, fmt.Errorf("game data has no %s entry in %s", overworld, dimensionTypeRegistry)
	}
	biome, ok := opts.GameData.Index(biomeRegistry, opts.Biome.String())
	if !ok {
		return nil, fmt.Errorf("game data has no %s entry in %s", opts.Biome, biomeRegistry)
	}

	h := &Handlers{
		opts:          opts,
		dimensionType: dimType,
		dimensionName: key.New(key.MinecraftNamespace, "overworld"),
		spawnY:        float64(world.MinY + len(opts.Layers)),
		chunk:         world.Flat(opts.Layers, uint32(biome)),
		light:         packet.FullBright(),
	}
	if opts.StatusCacheTTL > 0 {
		h.statusCache = ttlcache.New[string, string](
			withLoader(new(singleflight.Group), opts.StatusCacheTTL, h.statusJSON))
	}
	return h, nil
}

// withLoader returns a ttlcache option that uses the given load function to load a value for a key
// if it is not already cached.
func withLoader[K comparable, V any](group *singleflight.Group, ttl time.Duration, load func(key K) V) ttlcache.Option[K, V] {
	loader := ttlcache.LoaderFunc[K, V](
		func(c *ttlcache.Cache[K, V], key K) *ttlcache.Item[K, V] {
			v := load(key)
			return c.Set(key, v, ttl)
		},
	)
	return ttlcache.WithLoader[K, V](
		ttlcache.NewSuppressedLoader[K, V](loader, group),
	)
}

// Register registers all packet decoders and handlers.
func (h *Handlers) Register(b *state.Builder) *state.Builder {
	packet.Register(b)

	state.Handle(b, h.handleHandshake)

	state.Handle(b, h.handleStatusRequest)
	state.Handle(b, h.handleStatusPing)

	state.Handle(b, h.handleLoginStart)
	state.Handle(b, h.handleLoginAcknowledged)

	state.Handle(b, h.handleClientInformation)
	state.Handle(b, h.handlePluginMessage)
	state.Handle(b, h.handleKnownPacks)
	state.Handle(b, h.handleAcknowledgeFinishConfiguration)
	state.Handle(b, handleConfigKeepAlive)

	state.Handle(b, h.handleConfirmTeleportation)
	state.Handle(b, handleKeepAliveResponse)
	return b
}

// Player is the profile of a logged in client.
type Player struct {
	Name string
	ID   uuid.UUID
}

// session is the per connection state kept by the handlers.
type session struct {
	protocol   int
	player     *Player
	clientInfo *packet.ClientInformation
	teleportID int
	spawned    bool
}

type sessionKey struct{}

func sessionOf(c state.Conn) *session {
	a, ok := c.(netmc.Attributes)
	if !ok {
		return new(session)
	}
	if s, ok := a.Value(sessionKey{}).(*session); ok {
		return s
	}
	s := new(session)
	a.SetValue(sessionKey{}, s)
	return s
}

// PlayerOf returns the player of a connection that completed the login.
func PlayerOf(c state.Conn) (*Player, bool) {
	s := sessionOf(c)
	return s.player, s.player != nil
}

func logOf(c state.Conn) logr.Logger {
	return logr.FromContextOrDiscard(c.Context())
}
