package proto

import (
	"fmt"
	"io"
)

// Packet should be implemented by any Minecraft protocol packet.
// It is the layer of the protocol packet's data.
type Packet interface {
	ID() PacketID                                      // The constant packet id.
	State() State                                      // The constant state the packet belongs to.
	Encode(c *PacketContext, wr io.Writer) error       // Encodes the packet into the writer
	Decode(c *PacketContext, rd io.Reader) (err error) // Decodes a packet by reading from the reader
}

type PacketContext struct {
	Direction Direction // The direction the packet was bound to.
	State     State     // The state the packet was received or sent in.
	PacketID  PacketID  // Is always set.
	Packet    Packet    // The decoded packet, nil if unknown.

	// The payload after the packet id.
	// It may be longer than what the Packet's Decode read.
	Payload []byte // Empty when encoding.
}

// Direction is the direction a packet is meant to go to/come from.
type Direction uint8

const (
	ClientBound Direction = iota // Packets sent to the client.
	ServerBound                  // Packets sent to the server.
)

func (d Direction) String() string {
	switch d {
	case ServerBound:
		return "ServerBound"
	case ClientBound:
		return "ClientBound"
	}
	return "UnknownBound"
}

// PacketID identifies a packet within a State.
type PacketID int32

func (p PacketID) String() string {
	return fmt.Sprintf("0x%02x", int32(p))
}
