package session

import (
	"fmt"

	"go.minekube.com/kasumi/pkg/netmc"
	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/packet"
	"go.minekube.com/kasumi/pkg/proto/state"
	"go.minekube.com/kasumi/pkg/util/uuid"
)

// disconnect writes the disconnect packet of the connection's state
// and requests the connection to be closed.
func disconnect(c state.Conn, reason string) error {
	if p := netmc.DisconnectPacket(c.State(), reason); p != nil {
		if err := c.WritePacket(p); err != nil {
			return err
		}
	}
	return proto.ErrConnDone
}

func (h *Handlers) handleLoginStart(c state.Conn, p *packet.LoginStart) error {
	s := sessionOf(c)
	log := logOf(c)
	if s.protocol != packet.Protocol {
		reason := fmt.Sprintf("Outdated client! Please use %s", packet.MinecraftVersion)
		if s.protocol > packet.Protocol {
			reason = fmt.Sprintf("Outdated server! I'm still on %s", packet.MinecraftVersion)
		}
		log.Info("disconnecting client with unsupported protocol version",
			"username", p.Username, "protocol", s.protocol)
		return disconnect(c, reason)
	}

	id := p.PlayerID
	if h.opts.OfflineUUIDs || id == uuid.Nil {
		id = uuid.OfflinePlayerUUID(p.Username)
	}
	s.player = &Player{Name: p.Username, ID: id}
	log.Info("player logging in", "username", p.Username, "uuid", id)
	return c.WritePacket(&packet.LoginSuccess{
		PlayerID: id,
		Username: p.Username,
	})
}

func (h *Handlers) handleLoginAcknowledged(c state.Conn, _ *packet.LoginAcknowledged) error {
	if sessionOf(c).player == nil {
		return fmt.Errorf("%w: login acknowledged before login start", proto.ErrIllegalTransition)
	}
	return c.SetState(proto.ConfigurationState)
}
