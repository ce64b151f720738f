package codec

import (
	"errors"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/util"
)

const (
	// VanillaMaximumFrameLength is the largest frame a vanilla client sends,
	// the maximum value of a 3 byte VarInt.
	VanillaMaximumFrameLength = 1<<21 - 1
	// InitialBufferCapacity is the initial capacity of the frame accumulator.
	InitialBufferCapacity = 4096
)

// Frame is one length-prefixed protocol message with its packet id split off.
type Frame struct {
	ID      proto.PacketID
	Payload []byte // The bytes after the packet id.
}

// Framer extracts complete frames from a stream of bytes
// that may arrive split at arbitrary positions.
// It is not safe for concurrent use.
type Framer struct {
	buf       []byte
	off       int // start of unconsumed bytes in buf
	maxLength int
}

// NewFramer returns a Framer rejecting frames longer than maxLength.
// A maxLength <= 0 uses VanillaMaximumFrameLength.
func NewFramer(maxLength int) *Framer {
	if maxLength <= 0 {
		maxLength = VanillaMaximumFrameLength
	}
	return &Framer{
		buf:       make([]byte, 0, InitialBufferCapacity),
		maxLength: maxLength,
	}
}

// Feed appends newly received bytes.
func (f *Framer) Feed(p []byte) {
	if f.off > 0 && f.off == len(f.buf) {
		// everything consumed, restart at the front
		f.buf = f.buf[:0]
		f.off = 0
	} else if f.off > 0 && len(f.buf)+len(p) > cap(f.buf) {
		// discard the consumed prefix before growing
		n := copy(f.buf, f.buf[f.off:])
		f.buf = f.buf[:n]
		f.off = 0
	}
	f.buf = append(f.buf, p...)
}

// Buffered returns the number of bytes not yet consumed as frames.
func (f *Framer) Buffered() int {
	return len(f.buf) - f.off
}

// Reset drops all buffered bytes.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.off = 0
}

// Next returns the next complete frame.
// If no complete frame is buffered yet, ok is false and nothing is consumed.
// The returned payload is only valid until the next call to Feed.
//
// A negative or oversized declared length or a packet id
// exceeding the frame returns a *proto.MalformedPacketError.
func (f *Framer) Next() (frame Frame, ok bool, err error) {
	data := f.buf[f.off:]
	length, n, err := util.DecodeVarInt(data)
	if err != nil {
		if errors.Is(err, proto.ErrIncomplete) {
			return frame, false, nil
		}
		return frame, false, &proto.MalformedPacketError{Length: -1, Reason: err.Error()}
	}
	if length < 0 {
		return frame, false, &proto.MalformedPacketError{Length: length, Reason: "negative length"}
	}
	if int(length) > f.maxLength {
		return frame, false, &proto.MalformedPacketError{Length: length, Reason: "exceeds maximum frame length"}
	}
	if len(data)-n < int(length) {
		return frame, false, nil
	}
	body := data[n : n+int(length)]

	id, idLen, err := util.DecodeVarInt(body)
	if err != nil {
		return frame, false, &proto.MalformedPacketError{Length: length, Reason: "invalid packet id: " + err.Error()}
	}
	f.off += n + int(length)
	return Frame{
		ID:      proto.PacketID(id),
		Payload: body[idLen:],
	}, true, nil
}
