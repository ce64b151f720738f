package proto

import (
	"errors"
	"fmt"
)

// Errors returned while decoding and dispatching packets.
var (
	// ErrIncomplete signals that more bytes are needed before a value can be read.
	// It is never fatal and only used to retry once more data arrived.
	ErrIncomplete = errors.New("incomplete input")
	// ErrVarIntTooBig is returned when a VarInt spans more than 5 bytes.
	ErrVarIntTooBig = errors.New("VarInt is too big")
	// ErrStringTooLong is returned when a string exceeds its maximum length.
	ErrStringTooLong = errors.New("string is too long")
	// ErrInvalidString is returned when a string is not valid UTF-8.
	ErrInvalidString = errors.New("string is not valid UTF-8")
	// ErrMalformedBuffer is returned when a buffer violates the structure of a type,
	// like a negative array length.
	ErrMalformedBuffer = errors.New("malformed buffer")
	// ErrIllegalTransition is returned when a connection is moved to a state
	// that is not reachable from its current state.
	ErrIllegalTransition = errors.New("illegal state transition")
	// ErrDuplicateKey is returned when a registry key is registered twice.
	ErrDuplicateKey = errors.New("duplicate registry key")
	// ErrConnDone is returned by handlers to close a connection gracefully
	// once its lifecycle ended, e.g. after answering a status ping.
	ErrConnDone = errors.New("connection done")
)

// UnknownVariantError is returned when an enum discriminant is not known.
type UnknownVariantError struct {
	Type  string // The enum type name.
	Value int32  // The unknown discriminant.
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown variant %d of %s", e.Value, e.Type)
}

// MalformedPacketError is returned when a frame cannot be a valid packet.
type MalformedPacketError struct {
	Length int32  // The declared frame length.
	Reason string // Why the frame is malformed.
}

func (e *MalformedPacketError) Error() string {
	return fmt.Sprintf("malformed packet (length %d): %s", e.Length, e.Reason)
}

// IsFatal reports whether err must terminate the connection it occurred on.
// Only ErrIncomplete is a retry signal, every other error is fatal.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrIncomplete)
}
