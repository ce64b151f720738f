package session

import (
	"fmt"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/packet"
	"go.minekube.com/kasumi/pkg/proto/state"
)

func (h *Handlers) handleHandshake(c state.Conn, p *packet.Handshake) error {
	s := sessionOf(c)
	s.protocol = p.ProtocolVersion
	log := logOf(c)
	if p.ProtocolVersion != packet.Protocol {
		log.V(1).Info("client uses a different protocol version",
			"protocol", p.ProtocolVersion, "supported", packet.Protocol)
	}

	var next proto.State
	switch p.Intent {
	case packet.StatusIntent:
		next = proto.StatusState
	case packet.LoginIntent, packet.TransferIntent:
		// Transfers are accepted like a regular login.
		next = proto.LoginState
	default:
		return fmt.Errorf("%w: unexpected intent %s", proto.ErrMalformedBuffer, p.Intent)
	}
	log.V(1).Info("handshake", "intent", p.Intent, "address", p.ServerAddress, "port", p.Port)
	return c.SetState(next)
}
