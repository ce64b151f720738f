package session

import (
	"go.minekube.com/common/minecraft/key"

	"go.minekube.com/kasumi/pkg/proto/packet"
	"go.minekube.com/kasumi/pkg/proto/state"
)

// entityID is the entity id of every player, since
// players never see each other.
const entityID = 1

func (h *Handlers) login() *packet.Login {
	return &packet.Login{
		EntityID:            entityID,
		Hardcore:            h.opts.Hardcore,
		DimensionNames:      []key.Key{h.dimensionName},
		MaxPlayers:          h.opts.MaxPlayers,
		ViewDistance:        h.opts.ViewDistance,
		SimulationDistance:  h.opts.SimulationDistance,
		EnableRespawnScreen: true,
		DimensionType:       h.dimensionType,
		DimensionName:       h.dimensionName,
		GameMode:            h.opts.GameMode,
		PreviousGameMode:    -1,
		Flat:                true,
		SeaLevel:            h.opts.SeaLevel,
	}
}

// handleConfirmTeleportation sends the chunks around the spawn
// once the client confirmed the initial teleport.
func (h *Handlers) handleConfirmTeleportation(c state.Conn, p *packet.ConfirmTeleportation) error {
	s := sessionOf(c)
	if p.TeleportID != s.teleportID || s.spawned {
		logOf(c).V(1).Info("ignoring teleport confirmation", "teleportId", p.TeleportID, "expected", s.teleportID)
		return nil
	}
	s.spawned = true

	if err := c.WritePacket(&packet.GameEvent{Event: packet.StartWaitingForChunksEvent}); err != nil {
		return err
	}
	vd := int32(h.opts.ViewDistance)
	for x := -vd; x <= vd; x++ {
		for z := -vd; z <= vd; z++ {
			if err := c.WritePacket(&packet.ChunkDataAndLight{
				ChunkX: x,
				ChunkZ: z,
				Chunk:  h.chunk,
				Light:  h.light,
			}); err != nil {
				return err
			}
		}
	}
	if p, ok := PlayerOf(c); ok {
		logOf(c).Info("player spawned", "username", p.Name, "chunks", (2*vd+1)*(2*vd+1))
	}
	return nil
}

func handleKeepAliveResponse(c state.Conn, p *packet.KeepAliveResponse) error {
	return ackKeepAlive(c, p.KeepAliveID)
}
