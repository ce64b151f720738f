package packet

import (
	"io"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/util"
)

// StatusRequest asks for the server list status.
type StatusRequest struct{}

func (*StatusRequest) ID() proto.PacketID { return 0x00 }
func (*StatusRequest) State() proto.State { return proto.StatusState }
func (*StatusRequest) Encode(*proto.PacketContext, io.Writer) error { return nil }
func (*StatusRequest) Decode(*proto.PacketContext, io.Reader) error { return nil }

// StatusResponse carries the server list status as JSON.
type StatusResponse struct {
	Status string
}

func (s *StatusResponse) ID() proto.PacketID { return 0x00 }
func (s *StatusResponse) State() proto.State { return proto.StatusState }

func (s *StatusResponse) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteString(wr, s.Status)
}

func (s *StatusResponse) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	s.Status, err = util.ReadString(rd)
	return
}

// StatusPing is sent by the client and echoed back by the server
// to measure the latency.
type StatusPing struct {
	RandomID int64
}

func (s *StatusPing) ID() proto.PacketID { return 0x01 }
func (s *StatusPing) State() proto.State { return proto.StatusState }

func (s *StatusPing) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteInt64(wr, s.RandomID)
}

func (s *StatusPing) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	s.RandomID, err = util.ReadInt64(rd)
	return
}

var (
	_ proto.Packet = (*StatusRequest)(nil)
	_ proto.Packet = (*StatusResponse)(nil)
	_ proto.Packet = (*StatusPing)(nil)
)
