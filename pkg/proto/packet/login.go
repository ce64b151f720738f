package packet

import (
	"io"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/util"
	"go.minekube.com/kasumi/pkg/util/uuid"
)

// MaxUsernameLength is the maximum length of a player name.
const MaxUsernameLength = 16

// LoginStart starts the login of a player.
type LoginStart struct {
	Username string
	PlayerID uuid.UUID
}

func (l *LoginStart) ID() proto.PacketID { return 0x00 }
func (l *LoginStart) State() proto.State { return proto.LoginState }

func (l *LoginStart) Fields() util.Schema {
	return util.Schema{
		util.F("username", &l.Username, util.StringReader(MaxUsernameLength), util.WriteString),
		util.F("playerId", &l.PlayerID, util.ReadUUID, util.WriteUUID),
	}
}

func (l *LoginStart) Encode(_ *proto.PacketContext, wr io.Writer) error { return l.Fields().Encode(wr) }
func (l *LoginStart) Decode(_ *proto.PacketContext, rd io.Reader) error { return l.Fields().Decode(rd) }

// LoginDisconnect disconnects a client during login with a JSON text component.
type LoginDisconnect struct {
	Reason string
}

func (d *LoginDisconnect) ID() proto.PacketID { return 0x00 }
func (d *LoginDisconnect) State() proto.State { return proto.LoginState }

func (d *LoginDisconnect) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteString(wr, d.Reason)
}

func (d *LoginDisconnect) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	d.Reason, err = util.ReadString(rd)
	return
}

// LoginSuccess completes the login with the player's game profile.
type LoginSuccess struct {
	PlayerID   uuid.UUID
	Username   string
	Properties []Property
}

func (l *LoginSuccess) ID() proto.PacketID { return 0x02 }
func (l *LoginSuccess) State() proto.State { return proto.LoginState }

func (l *LoginSuccess) Fields() util.Schema {
	return util.Schema{
		util.F("playerId", &l.PlayerID, util.ReadUUID, util.WriteUUID),
		util.F("username", &l.Username, util.StringReader(MaxUsernameLength), util.WriteString),
		util.F("properties", &l.Properties, readProperties, writeProperties),
	}
}

func (l *LoginSuccess) Encode(_ *proto.PacketContext, wr io.Writer) error { return l.Fields().Encode(wr) }
func (l *LoginSuccess) Decode(_ *proto.PacketContext, rd io.Reader) error { return l.Fields().Decode(rd) }

// LoginAcknowledged is sent by the client after LoginSuccess
// to switch into the configuration state.
type LoginAcknowledged struct{}

func (*LoginAcknowledged) ID() proto.PacketID { return 0x03 }
func (*LoginAcknowledged) State() proto.State { return proto.LoginState }
func (*LoginAcknowledged) Encode(*proto.PacketContext, io.Writer) error { return nil }
func (*LoginAcknowledged) Decode(*proto.PacketContext, io.Reader) error { return nil }

var (
	_ proto.Packet = (*LoginStart)(nil)
	_ proto.Packet = (*LoginDisconnect)(nil)
	_ proto.Packet = (*LoginSuccess)(nil)
	_ proto.Packet = (*LoginAcknowledged)(nil)
)
