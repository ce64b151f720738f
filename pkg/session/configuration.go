package session

import (
	"slices"

	"go.minekube.com/kasumi/pkg/netmc"
	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/packet"
	"go.minekube.com/kasumi/pkg/proto/state"
)

func (h *Handlers) handleClientInformation(c state.Conn, p *packet.ClientInformation) error {
	s := sessionOf(c)
	first := s.clientInfo == nil
	s.clientInfo = p
	logOf(c).V(1).Info("client information", "locale", p.Locale, "viewDistance", p.ViewDistance)
	if !first {
		return nil
	}
	return c.WritePacket(&packet.ClientboundKnownPacks{Packs: []packet.KnownPack{packet.CorePack}})
}

func (h *Handlers) handlePluginMessage(c state.Conn, p *packet.PluginMessage) error {
	logOf(c).V(1).Info("plugin message", "channel", p.Channel.String(), "len", len(p.Data))
	return nil
}

// handleKnownPacks sends the game data registries and finishes the configuration.
func (h *Handlers) handleKnownPacks(c state.Conn, p *packet.ServerboundKnownPacks) error {
	if !slices.Contains(p.Packs, packet.CorePack) {
		logOf(c).Info("client does not know the core pack, registry entries without data may be rejected",
			"packs", p.Packs)
	}
	for _, rd := range h.opts.GameData.Packets() {
		if err := c.WritePacket(rd); err != nil {
			return err
		}
	}
	return c.WritePacket(&packet.FinishConfiguration{})
}

func (h *Handlers) handleAcknowledgeFinishConfiguration(c state.Conn, _ *packet.AcknowledgeFinishConfiguration) error {
	if err := c.SetState(proto.PlayState); err != nil {
		return err
	}
	s := sessionOf(c)
	s.teleportID++
	s.spawned = false
	if err := c.WritePacket(h.login()); err != nil {
		return err
	}
	return c.WritePacket(&packet.SynchronizePlayerPosition{
		TeleportID: s.teleportID,
		X:          0.5,
		Y:          h.spawnY,
		Z:          0.5,
	})
}

func handleConfigKeepAlive(c state.Conn, p *packet.ConfigKeepAlive) error {
	return ackKeepAlive(c, p.KeepAliveID)
}

func ackKeepAlive(c state.Conn, id int64) error {
	if k, ok := c.(netmc.KeepAliver); ok {
		return k.AckKeepAlive(id)
	}
	return nil
}
