package netmc

import (
	"go.minekube.com/common/minecraft/component"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/packet"
	"go.minekube.com/kasumi/pkg/util/componentutil"
)

// DisconnectPacket returns the packet disconnecting a client with the
// reason in the given state or nil if the state has no disconnect packet.
func DisconnectPacket(s proto.State, reason string) proto.Packet {
	switch s {
	case proto.LoginState:
		b, err := componentutil.MarshalJSON(&component.Text{Content: reason})
		if err != nil {
			return nil
		}
		return &packet.LoginDisconnect{Reason: string(b)}
	case proto.ConfigurationState:
		return &packet.ConfigDisconnect{Reason: reason}
	case proto.PlayState:
		return &packet.PlayDisconnect{Reason: reason}
	}
	return nil
}

// Disconnect sends the reason to the client, if its state allows it, and closes the connection.
func Disconnect(c MinecraftConn, reason string) error {
	if p := DisconnectPacket(c.State(), reason); p != nil {
		return CloseWith(c, p)
	}
	return c.Close()
}
