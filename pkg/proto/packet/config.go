package packet

import (
	"fmt"
	"io"

	"github.com/Tnze/go-mc/nbt"
	"go.minekube.com/common/minecraft/key"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/util"
)

// ChatMode is the chat visibility a client chose.
type ChatMode int32

const (
	ChatEnabled ChatMode = iota
	ChatCommandsOnly
	ChatHidden
)

func (m ChatMode) Known() bool { return m >= ChatEnabled && m <= ChatHidden }

// MainHand is the main hand of a player.
type MainHand int32

const (
	LeftHand MainHand = iota
	RightHand
)

func (h MainHand) Known() bool { return h == LeftHand || h == RightHand }

// ParticleStatus is the particle setting of a client.
type ParticleStatus int32

const (
	AllParticles ParticleStatus = iota
	DecreasedParticles
	MinimalParticles
)

func (p ParticleStatus) Known() bool { return p >= AllParticles && p <= MinimalParticles }

// ClientInformation holds the client settings.
type ClientInformation struct {
	Locale              string
	ViewDistance        int8
	ChatMode            ChatMode
	ChatColors          bool
	SkinParts           uint8
	MainHand            MainHand
	TextFiltering       bool
	AllowServerListings bool
	ParticleStatus      ParticleStatus
}

func (c *ClientInformation) ID() proto.PacketID { return 0x00 }
func (c *ClientInformation) State() proto.State { return proto.ConfigurationState }

func (c *ClientInformation) Fields() util.Schema {
	return util.Schema{
		util.F("locale", &c.Locale, util.StringReader(16), util.WriteString),
		util.F("viewDistance", &c.ViewDistance, util.ReadInt8, util.WriteInt8),
		util.F("chatMode", &c.ChatMode, util.ReadEnum[ChatMode], util.WriteEnum[ChatMode]),
		util.F("chatColors", &c.ChatColors, util.ReadBool, util.WriteBool),
		util.F("skinParts", &c.SkinParts, util.ReadUint8, util.WriteUint8),
		util.F("mainHand", &c.MainHand, util.ReadEnum[MainHand], util.WriteEnum[MainHand]),
		util.F("textFiltering", &c.TextFiltering, util.ReadBool, util.WriteBool),
		util.F("allowServerListings", &c.AllowServerListings, util.ReadBool, util.WriteBool),
		util.F("particleStatus", &c.ParticleStatus, util.ReadEnum[ParticleStatus], util.WriteEnum[ParticleStatus]),
	}
}

func (c *ClientInformation) Encode(_ *proto.PacketContext, wr io.Writer) error { return c.Fields().Encode(wr) }
func (c *ClientInformation) Decode(_ *proto.PacketContext, rd io.Reader) error { return c.Fields().Decode(rd) }

// MaxPluginMessageLength is the maximum data length of a serverbound plugin message.
const MaxPluginMessageLength = 32767

// PluginMessage is a custom payload on a named channel.
type PluginMessage struct {
	Channel key.Key
	Data    []byte
}

func (p *PluginMessage) ID() proto.PacketID { return 0x02 }
func (p *PluginMessage) State() proto.State { return proto.ConfigurationState }

func (p *PluginMessage) Encode(_ *proto.PacketContext, wr io.Writer) error {
	if err := util.WriteKey(wr, p.Channel); err != nil {
		return err
	}
	return util.WriteRaw(wr, p.Data)
}

func (p *PluginMessage) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	if p.Channel, err = util.ReadKey(rd); err != nil {
		return err
	}
	if p.Data, err = util.ReadRemaining(rd); err != nil {
		return err
	}
	if len(p.Data) > MaxPluginMessageLength {
		return fmt.Errorf("%w: plugin message of %d bytes", proto.ErrMalformedBuffer, len(p.Data))
	}
	return nil
}

// AcknowledgeFinishConfiguration is sent by the client after FinishConfiguration
// to switch into the play state.
type AcknowledgeFinishConfiguration struct{}

func (*AcknowledgeFinishConfiguration) ID() proto.PacketID { return 0x03 }
func (*AcknowledgeFinishConfiguration) State() proto.State { return proto.ConfigurationState }
func (*AcknowledgeFinishConfiguration) Encode(*proto.PacketContext, io.Writer) error { return nil }
func (*AcknowledgeFinishConfiguration) Decode(*proto.PacketContext, io.Reader) error { return nil }

// FinishConfiguration tells the client that the configuration is complete.
type FinishConfiguration struct{}

func (*FinishConfiguration) ID() proto.PacketID { return 0x03 }
func (*FinishConfiguration) State() proto.State { return proto.ConfigurationState }
func (*FinishConfiguration) Encode(*proto.PacketContext, io.Writer) error { return nil }
func (*FinishConfiguration) Decode(*proto.PacketContext, io.Reader) error { return nil }

// ConfigKeepAlive is the keep-alive of the configuration state.
// Both directions use the same id.
type ConfigKeepAlive struct {
	KeepAliveID int64
}

func (k *ConfigKeepAlive) ID() proto.PacketID { return 0x04 }
func (k *ConfigKeepAlive) State() proto.State { return proto.ConfigurationState }

func (k *ConfigKeepAlive) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteInt64(wr, k.KeepAliveID)
}

func (k *ConfigKeepAlive) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	k.KeepAliveID, err = util.ReadInt64(rd)
	return
}

// ConfigDisconnect disconnects a client during configuration.
type ConfigDisconnect struct {
	Reason string // Plain text reason.
}

func (d *ConfigDisconnect) ID() proto.PacketID { return 0x02 }
func (d *ConfigDisconnect) State() proto.State { return proto.ConfigurationState }

func (d *ConfigDisconnect) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteNBT(wr, d.Reason)
}

func (d *ConfigDisconnect) Decode(_ *proto.PacketContext, rd io.Reader) error {
	return decodeTextReason(rd, &d.Reason)
}

func decodeTextReason(rd io.Reader, reason *string) error {
	m, err := util.ReadNBT(rd)
	if err != nil {
		return err
	}
	if err = m.Unmarshal(reason); err != nil {
		return fmt.Errorf("%w: reason is not a string tag: %v", proto.ErrMalformedBuffer, err)
	}
	return nil
}

// ServerboundKnownPacks lists the data packs the client knows.
type ServerboundKnownPacks struct {
	Packs []KnownPack
}

func (k *ServerboundKnownPacks) ID() proto.PacketID { return 0x07 }
func (k *ServerboundKnownPacks) State() proto.State { return proto.ConfigurationState }

func (k *ServerboundKnownPacks) Fields() util.Schema {
	return util.Schema{util.F("packs", &k.Packs, readKnownPacks, writeKnownPacks)}
}

func (k *ServerboundKnownPacks) Encode(_ *proto.PacketContext, wr io.Writer) error { return k.Fields().Encode(wr) }
func (k *ServerboundKnownPacks) Decode(_ *proto.PacketContext, rd io.Reader) error { return k.Fields().Decode(rd) }

// ClientboundKnownPacks lists the data packs the server wants to use.
type ClientboundKnownPacks struct {
	Packs []KnownPack
}

func (k *ClientboundKnownPacks) ID() proto.PacketID { return 0x0E }
func (k *ClientboundKnownPacks) State() proto.State { return proto.ConfigurationState }

func (k *ClientboundKnownPacks) Fields() util.Schema {
	return util.Schema{util.F("packs", &k.Packs, readKnownPacks, writeKnownPacks)}
}

func (k *ClientboundKnownPacks) Encode(_ *proto.PacketContext, wr io.Writer) error { return k.Fields().Encode(wr) }
func (k *ClientboundKnownPacks) Decode(_ *proto.PacketContext, rd io.Reader) error { return k.Fields().Decode(rd) }

// RegistryEntry is one entry of a synchronized registry.
// Data is absent when the client takes it from a known pack.
type RegistryEntry struct {
	ID   key.Key
	Data util.Optional[nbt.RawMessage]
}

func (e *RegistryEntry) Fields() util.Schema {
	return util.Schema{
		util.F("id", &e.ID, util.ReadKey, util.WriteKey),
		util.F("data", &e.Data, util.OptionalReader(util.ReadNBT), util.OptionalWriter(util.WriteRawNBT)),
	}
}

var (
	readRegistryEntry, writeRegistryEntry = util.Composite[RegistryEntry]()
	readRegistryEntries                   = util.PrefixedArrayReader(readRegistryEntry)
	writeRegistryEntries                  = util.PrefixedArrayWriter(writeRegistryEntry)
)

// RegistryData synchronizes one registry with the client.
// The index of an entry is its network id.
type RegistryData struct {
	Registry key.Key
	Entries  []RegistryEntry
}

func (r *RegistryData) ID() proto.PacketID { return 0x07 }
func (r *RegistryData) State() proto.State { return proto.ConfigurationState }

func (r *RegistryData) Fields() util.Schema {
	return util.Schema{
		util.F("registry", &r.Registry, util.ReadKey, util.WriteKey),
		util.F("entries", &r.Entries, readRegistryEntries, writeRegistryEntries),
	}
}

func (r *RegistryData) Encode(_ *proto.PacketContext, wr io.Writer) error { return r.Fields().Encode(wr) }
func (r *RegistryData) Decode(_ *proto.PacketContext, rd io.Reader) error { return r.Fields().Decode(rd) }

var (
	_ proto.Packet = (*ClientInformation)(nil)
	_ proto.Packet = (*PluginMessage)(nil)
	_ proto.Packet = (*AcknowledgeFinishConfiguration)(nil)
	_ proto.Packet = (*FinishConfiguration)(nil)
	_ proto.Packet = (*ConfigKeepAlive)(nil)
	_ proto.Packet = (*ConfigDisconnect)(nil)
	_ proto.Packet = (*ServerboundKnownPacks)(nil)
	_ proto.Packet = (*ClientboundKnownPacks)(nil)
	_ proto.Packet = (*RegistryData)(nil)
)
