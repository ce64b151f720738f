package codec

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/util"
)

// Encoder is a synchronized packet encoder.
type Encoder struct {
	direction proto.Direction

	mu sync.Mutex // Protects following fields
	wr io.Writer  // to underlying writer to write successfully encoded packet to
}

func NewEncoder(w io.Writer, direction proto.Direction) *Encoder {
	return &Encoder{
		wr:        w,
		direction: direction,
	}
}

// WritePacket encodes the packet id and data into a whole frame
// and writes it to the underlying writer.
func (e *Encoder) WritePacket(packet proto.Packet) (n int, err error) {
	buf := new(bytes.Buffer)
	_ = util.WriteVarInt(buf, int(packet.ID()))

	ctx := &proto.PacketContext{
		Direction: e.direction,
		State:     packet.State(),
		PacketID:  packet.ID(),
		Packet:    packet,
	}
	if err = packet.Encode(ctx, buf); err != nil {
		return 0, fmt.Errorf("error encoding packet %T (id: %s, state: %s): %w",
			packet, packet.ID(), packet.State(), err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeBuf(buf.Bytes()) // packet id + data
}

// Write writes the payload (packet id + data) as a frame to the underlying writer.
func (e *Encoder) Write(payload []byte) (n int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeBuf(payload)
}

// see https://minecraft.wiki/w/Java_Edition_protocol#Packet_format for details
func (e *Encoder) writeBuf(payload []byte) (n int, err error) {
	frame := make([]byte, 0, len(payload)+util.MaxVarIntLen)
	frame = util.AppendVarInt(frame, int32(len(payload)))
	frame = append(frame, payload...)
	return writeFull(e.wr, frame)
}

// writeFull writes all of b, retrying after short writes.
func writeFull(w io.Writer, b []byte) (n int, err error) {
	for len(b) > 0 {
		var m int
		m, err = w.Write(b)
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, io.ErrShortWrite
		}
		b = b[m:]
	}
	return n, nil
}
