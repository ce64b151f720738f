package packet

import (
	"bytes"
	"io"

	"go.minekube.com/common/minecraft/key"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/util"
	"go.minekube.com/kasumi/pkg/world"
)

// ConfirmTeleportation confirms a SynchronizePlayerPosition.
type ConfirmTeleportation struct {
	TeleportID int
}

func (c *ConfirmTeleportation) ID() proto.PacketID { return 0x00 }
func (c *ConfirmTeleportation) State() proto.State { return proto.PlayState }

func (c *ConfirmTeleportation) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteVarInt(wr, c.TeleportID)
}

func (c *ConfirmTeleportation) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	c.TeleportID, err = util.ReadVarInt(rd)
	return
}

// KeepAliveResponse answers a KeepAliveRequest in the play state.
type KeepAliveResponse struct {
	KeepAliveID int64
}

func (k *KeepAliveResponse) ID() proto.PacketID { return 0x1A }
func (k *KeepAliveResponse) State() proto.State { return proto.PlayState }

func (k *KeepAliveResponse) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteInt64(wr, k.KeepAliveID)
}

func (k *KeepAliveResponse) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	k.KeepAliveID, err = util.ReadInt64(rd)
	return
}

// KeepAliveRequest is sent periodically in the play state
// and must be answered with the same id.
type KeepAliveRequest struct {
	KeepAliveID int64
}

func (k *KeepAliveRequest) ID() proto.PacketID { return 0x26 }
func (k *KeepAliveRequest) State() proto.State { return proto.PlayState }

func (k *KeepAliveRequest) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteInt64(wr, k.KeepAliveID)
}

func (k *KeepAliveRequest) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	k.KeepAliveID, err = util.ReadInt64(rd)
	return
}

// PlayDisconnect disconnects a client in the play state.
type PlayDisconnect struct {
	Reason string // Plain text reason.
}

func (d *PlayDisconnect) ID() proto.PacketID { return 0x1C }
func (d *PlayDisconnect) State() proto.State { return proto.PlayState }

func (d *PlayDisconnect) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteNBT(wr, d.Reason)
}

func (d *PlayDisconnect) Decode(_ *proto.PacketContext, rd io.Reader) error {
	return decodeTextReason(rd, &d.Reason)
}

// GameEventType is the kind of a GameEvent.
type GameEventType uint8

const (
	ChangeGameModeEvent        GameEventType = 3
	StartWaitingForChunksEvent GameEventType = 13
)

// GameEvent notifies the client about a game state change.
type GameEvent struct {
	Event GameEventType
	Value float32
}

func (g *GameEvent) ID() proto.PacketID { return 0x22 }
func (g *GameEvent) State() proto.State { return proto.PlayState }

func (g *GameEvent) Fields() util.Schema {
	return util.Schema{
		util.F("event", (*uint8)(&g.Event), util.ReadUint8, util.WriteUint8),
		util.F("value", &g.Value, util.ReadFloat32, util.WriteFloat32),
	}
}

func (g *GameEvent) Encode(_ *proto.PacketContext, wr io.Writer) error { return g.Fields().Encode(wr) }
func (g *GameEvent) Decode(_ *proto.PacketContext, rd io.Reader) error { return g.Fields().Decode(rd) }

// GameMode is a player game mode.
type GameMode uint8

const (
	Survival GameMode = iota
	Creative
	Adventure
	Spectator
)

// DeathLocation is the dimension and position a player last died at.
type DeathLocation struct {
	Dimension key.Key
	Location  util.Position
}

func (d *DeathLocation) Fields() util.Schema {
	return util.Schema{
		util.F("dimension", &d.Dimension, util.ReadKey, util.WriteKey),
		util.F("location", &d.Location, util.ReadPosition, util.WritePosition),
	}
}

var readDeathLocation, writeDeathLocation = util.Composite[DeathLocation]()

// Login joins the player into the world.
type Login struct {
	EntityID            int32
	Hardcore            bool
	DimensionNames      []key.Key
	MaxPlayers          int
	ViewDistance        int
	SimulationDistance  int
	ReducedDebugInfo    bool
	EnableRespawnScreen bool
	DoLimitedCrafting   bool
	DimensionType       int // network id in the dimension type registry
	DimensionName       key.Key
	HashedSeed          int64
	GameMode            GameMode
	PreviousGameMode    int8 // -1 if none
	Debug               bool
	Flat                bool
	DeathLocation       util.Optional[DeathLocation]
	PortalCooldown      int
	SeaLevel            int
	EnforcesSecureChat  bool
}

func (l *Login) ID() proto.PacketID { return 0x2B }
func (l *Login) State() proto.State { return proto.PlayState }

func (l *Login) Fields() util.Schema {
	return util.Schema{
		util.F("entityId", &l.EntityID, util.ReadInt32, util.WriteInt32),
		util.F("hardcore", &l.Hardcore, util.ReadBool, util.WriteBool),
		util.F("dimensionNames", &l.DimensionNames, readKeys, writeKeys),
		util.F("maxPlayers", &l.MaxPlayers, util.ReadVarInt, util.WriteVarInt),
		util.F("viewDistance", &l.ViewDistance, util.ReadVarInt, util.WriteVarInt),
		util.F("simulationDistance", &l.SimulationDistance, util.ReadVarInt, util.WriteVarInt),
		util.F("reducedDebugInfo", &l.ReducedDebugInfo, util.ReadBool, util.WriteBool),
		util.F("enableRespawnScreen", &l.EnableRespawnScreen, util.ReadBool, util.WriteBool),
		util.F("doLimitedCrafting", &l.DoLimitedCrafting, util.ReadBool, util.WriteBool),
		util.F("dimensionType", &l.DimensionType, util.ReadVarInt, util.WriteVarInt),
		util.F("dimensionName", &l.DimensionName, util.ReadKey, util.WriteKey),
		util.F("hashedSeed", &l.HashedSeed, util.ReadInt64, util.WriteInt64),
		util.F("gameMode", (*uint8)(&l.GameMode), util.ReadUint8, util.WriteUint8),
		util.F("previousGameMode", &l.PreviousGameMode, util.ReadInt8, util.WriteInt8),
		util.F("debug", &l.Debug, util.ReadBool, util.WriteBool),
		util.F("flat", &l.Flat, util.ReadBool, util.WriteBool),
		util.F("deathLocation", &l.DeathLocation, util.OptionalReader(readDeathLocation), util.OptionalWriter(writeDeathLocation)),
		util.F("portalCooldown", &l.PortalCooldown, util.ReadVarInt, util.WriteVarInt),
		util.F("seaLevel", &l.SeaLevel, util.ReadVarInt, util.WriteVarInt),
		util.F("enforcesSecureChat", &l.EnforcesSecureChat, util.ReadBool, util.WriteBool),
	}
}

func (l *Login) Encode(_ *proto.PacketContext, wr io.Writer) error { return l.Fields().Encode(wr) }
func (l *Login) Decode(_ *proto.PacketContext, rd io.Reader) error { return l.Fields().Decode(rd) }

// SynchronizePlayerPosition teleports the player.
// The client answers with ConfirmTeleportation.
type SynchronizePlayerPosition struct {
	TeleportID                      int
	X, Y, Z                         float64
	VelocityX, VelocityY, VelocityZ float64
	Yaw, Pitch                      float32
	Flags                           int32 // relative teleport flags
}

func (s *SynchronizePlayerPosition) ID() proto.PacketID { return 0x41 }
func (s *SynchronizePlayerPosition) State() proto.State { return proto.PlayState }

func (s *SynchronizePlayerPosition) Fields() util.Schema {
	return util.Schema{
		util.F("teleportId", &s.TeleportID, util.ReadVarInt, util.WriteVarInt),
		util.F("x", &s.X, util.ReadFloat64, util.WriteFloat64),
		util.F("y", &s.Y, util.ReadFloat64, util.WriteFloat64),
		util.F("z", &s.Z, util.ReadFloat64, util.WriteFloat64),
		util.F("velocityX", &s.VelocityX, util.ReadFloat64, util.WriteFloat64),
		util.F("velocityY", &s.VelocityY, util.ReadFloat64, util.WriteFloat64),
		util.F("velocityZ", &s.VelocityZ, util.ReadFloat64, util.WriteFloat64),
		util.F("yaw", &s.Yaw, util.ReadFloat32, util.WriteFloat32),
		util.F("pitch", &s.Pitch, util.ReadFloat32, util.WriteFloat32),
		util.F("flags", &s.Flags, util.ReadInt32, util.WriteInt32),
	}
}

func (s *SynchronizePlayerPosition) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return s.Fields().Encode(wr)
}

func (s *SynchronizePlayerPosition) Decode(_ *proto.PacketContext, rd io.Reader) error {
	return s.Fields().Decode(rd)
}

// LightArrayLength is the length of a section's light array, 4 bits per block.
const LightArrayLength = world.SectionBlocks / 2

// LightData holds the sky and block light of a chunk column including
// one section below and one above the world.
type LightData struct {
	SkyLightMask        BitSet
	BlockLightMask      BitSet
	EmptySkyLightMask   BitSet
	EmptyBlockLightMask BitSet
	SkyLight            [][]byte
	BlockLight          [][]byte
}

var (
	readLightArrays = util.PrefixedArrayReader(func(rd io.Reader) ([]byte, error) {
		return util.ReadBytesMax(rd, LightArrayLength)
	})
	writeLightArrays = util.PrefixedArrayWriter(util.WriteBytes)
)

func (l *LightData) Fields() util.Schema {
	return util.Schema{
		util.F("skyLightMask", &l.SkyLightMask, readBitSet, writeBitSet),
		util.F("blockLightMask", &l.BlockLightMask, readBitSet, writeBitSet),
		util.F("emptySkyLightMask", &l.EmptySkyLightMask, readBitSet, writeBitSet),
		util.F("emptyBlockLightMask", &l.EmptyBlockLightMask, readBitSet, writeBitSet),
		util.F("skyLight", &l.SkyLight, readLightArrays, writeLightArrays),
		util.F("blockLight", &l.BlockLight, readLightArrays, writeLightArrays),
	}
}

// FullBright returns light data with full sky light and no block light
// in every section of a chunk column.
func FullBright() LightData {
	var l LightData
	full := bytes.Repeat([]byte{0xFF}, LightArrayLength)
	for i := 0; i < world.SectionCount+2; i++ {
		l.SkyLightMask.Set(i)
		l.EmptyBlockLightMask.Set(i)
		l.SkyLight = append(l.SkyLight, full)
	}
	return l
}

// ChunkDataAndLight sends a chunk column with its light.
type ChunkDataAndLight struct {
	ChunkX, ChunkZ int32
	Chunk          *world.Chunk
	Light          LightData
}

func (c *ChunkDataAndLight) ID() proto.PacketID { return 0x27 }
func (c *ChunkDataAndLight) State() proto.State { return proto.PlayState }

func (c *ChunkDataAndLight) Encode(_ *proto.PacketContext, wr io.Writer) error {
	if err := util.WriteInt32(wr, c.ChunkX); err != nil {
		return err
	}
	if err := util.WriteInt32(wr, c.ChunkZ); err != nil {
		return err
	}
	if err := c.Chunk.Encode(wr); err != nil {
		return err
	}
	return c.Light.Fields().Encode(wr)
}

func (c *ChunkDataAndLight) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	if c.ChunkX, err = util.ReadInt32(rd); err != nil {
		return err
	}
	if c.ChunkZ, err = util.ReadInt32(rd); err != nil {
		return err
	}
	c.Chunk = new(world.Chunk)
	if err = c.Chunk.Decode(rd); err != nil {
		return err
	}
	return c.Light.Fields().Decode(rd)
}

var (
	_ proto.Packet = (*ConfirmTeleportation)(nil)
	_ proto.Packet = (*KeepAliveResponse)(nil)
	_ proto.Packet = (*KeepAliveRequest)(nil)
	_ proto.Packet = (*PlayDisconnect)(nil)
	_ proto.Packet = (*GameEvent)(nil)
	_ proto.Packet = (*Login)(nil)
	_ proto.Packet = (*SynchronizePlayerPosition)(nil)
	_ proto.Packet = (*ChunkDataAndLight)(nil)
)
