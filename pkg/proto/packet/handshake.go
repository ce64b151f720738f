package packet

import (
	"io"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/util"
)

// Intent is the state a client asks to switch to after the handshake.
type Intent int32

const (
	StatusIntent   Intent = 1
	LoginIntent    Intent = 2
	TransferIntent Intent = 3
)

func (i Intent) Known() bool { return i >= StatusIntent && i <= TransferIntent }

func (i Intent) String() string {
	switch i {
	case StatusIntent:
		return "Status"
	case LoginIntent:
		return "Login"
	case TransferIntent:
		return "Transfer"
	}
	return "UnknownIntent"
}

// Handshake is the first packet a client sends.
type Handshake struct {
	ProtocolVersion int
	ServerAddress   string
	Port            uint16
	Intent          Intent
}

func (h *Handshake) ID() proto.PacketID { return 0x00 }
func (h *Handshake) State() proto.State { return proto.HandshakeState }

func (h *Handshake) Fields() util.Schema {
	return util.Schema{
		util.F("protocolVersion", &h.ProtocolVersion, util.ReadVarInt, util.WriteVarInt),
		util.F("serverAddress", &h.ServerAddress, util.StringReader(255), util.WriteString),
		util.F("port", &h.Port, util.ReadUint16, util.WriteUint16),
		util.F("intent", &h.Intent, util.ReadEnum[Intent], util.WriteEnum[Intent]),
	}
}

func (h *Handshake) Encode(_ *proto.PacketContext, wr io.Writer) error { return h.Fields().Encode(wr) }
func (h *Handshake) Decode(_ *proto.PacketContext, rd io.Reader) error { return h.Fields().Decode(rd) }

var _ proto.Packet = (*Handshake)(nil)
