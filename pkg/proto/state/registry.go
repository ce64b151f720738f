// Package state provides the immutable (state, packet id) registry
// resolving received frames to packet decoders and handlers.
package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/codec"
)

// Conn is the view of a client connection available to packet handlers.
type Conn interface {
	// Context is canceled when the connection is closed.
	Context() context.Context
	// State returns the current connection state.
	State() proto.State
	// SetState moves the connection to the next state.
	// It returns proto.ErrIllegalTransition if next is not reachable.
	SetState(next proto.State) error
	// WritePacket encodes and writes a packet to the client.
	WritePacket(p proto.Packet) error
}

// Key identifies a packet within the registry.
type Key struct {
	State proto.State
	ID    proto.PacketID
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.State, k.ID)
}

// KeyOf returns the registry key of a packet.
func KeyOf(p proto.Packet) Key {
	return Key{State: p.State(), ID: p.ID()}
}

// DecodeFunc decodes a frame payload into a packet
// and returns the number of payload bytes consumed.
type DecodeFunc func(c *proto.PacketContext, payload []byte) (p proto.Packet, n int, err error)

// HandleFunc handles a decoded packet received on a connection.
type HandleFunc func(c Conn, p proto.Packet) error

// Builder collects registrations and builds an immutable Registry.
// It is not safe for concurrent use.
type Builder struct {
	decoders map[Key]DecodeFunc
	handlers map[Key]HandleFunc
	errs     []error
}

func NewBuilder() *Builder {
	return &Builder{
		decoders: map[Key]DecodeFunc{},
		handlers: map[Key]HandleFunc{},
	}
}

// RegisterDecoder registers the decoder of a serverbound packet key.
func (b *Builder) RegisterDecoder(key Key, fn DecodeFunc) *Builder {
	if _, ok := b.decoders[key]; ok {
		b.errs = append(b.errs, fmt.Errorf("%w: decoder for %s already registered", proto.ErrDuplicateKey, key))
		return b
	}
	b.decoders[key] = fn
	return b
}

// RegisterHandler registers the handler of a serverbound packet key.
func (b *Builder) RegisterHandler(key Key, fn HandleFunc) *Builder {
	if _, ok := b.handlers[key]; ok {
		b.errs = append(b.errs, fmt.Errorf("%w: handler for %s already registered", proto.ErrDuplicateKey, key))
		return b
	}
	b.handlers[key] = fn
	return b
}

// packetPtr constrains P to be a pointer to T implementing proto.Packet.
type packetPtr[T any] interface {
	*T
	proto.Packet
}

// Register registers the decoder of packet type T under its own key.
func Register[T any, P packetPtr[T]](b *Builder) *Builder {
	return b.RegisterDecoder(KeyOf(P(new(T))), func(c *proto.PacketContext, payload []byte) (proto.Packet, int, error) {
		p := P(new(T))
		rd := bytes.NewReader(payload)
		err := p.Decode(c, rd)
		return p, len(payload) - rd.Len(), err
	})
}

// Handle registers fn as the handler of packet type T.
func Handle[T any, P packetPtr[T]](b *Builder, fn func(c Conn, p P) error) *Builder {
	return b.RegisterHandler(KeyOf(P(new(T))), func(c Conn, p proto.Packet) error {
		typed, ok := p.(P)
		if !ok {
			return fmt.Errorf("handler for %T received %T", P(nil), p)
		}
		return fn(c, typed)
	})
}

// Build returns the frozen Registry or all registration errors.
// A handler without a decoder for the same key is an error.
func (b *Builder) Build() (*Registry, error) {
	errs := b.errs
	for key := range b.handlers {
		if _, ok := b.decoders[key]; !ok {
			errs = append(errs, fmt.Errorf("handler for %s has no decoder", key))
		}
	}
	if len(errs) != 0 {
		return nil, errors.Join(errs...)
	}
	r := &Registry{
		decoders: make(map[Key]DecodeFunc, len(b.decoders)),
		handlers: make(map[Key]HandleFunc, len(b.handlers)),
	}
	for k, v := range b.decoders {
		r.decoders[k] = v
	}
	for k, v := range b.handlers {
		r.handlers[k] = v
	}
	return r, nil
}

// Registry is an immutable lookup from (state, packet id) to decoders and handlers.
// It is safe for concurrent use by any number of connections.
type Registry struct {
	decoders map[Key]DecodeFunc
	handlers map[Key]HandleFunc
}

// Decoder returns the decoder registered for key.
func (r *Registry) Decoder(key Key) (DecodeFunc, bool) {
	fn, ok := r.decoders[key]
	return fn, ok
}

// Handler returns the handler registered for key.
func (r *Registry) Handler(key Key) (HandleFunc, bool) {
	fn, ok := r.handlers[key]
	return fn, ok
}

// Keys returns all keys with a decoder, sorted by state and id.
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.decoders))
	for k := range r.decoders {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].State != keys[j].State {
			return keys[i].State < keys[j].State
		}
		return keys[i].ID < keys[j].ID
	})
	return keys
}

// Result is the outcome of dispatching a frame.
type Result int

const (
	// Handled means the packet was decoded and passed to its handler.
	Handled Result = iota
	// Ignored means the packet was decoded but has no handler.
	Ignored
	// Unknown means no decoder is registered for the frame's key.
	Unknown
	// Skipped means the decoder ran out of payload bytes.
	Skipped
	// Failed means the payload is malformed and the returned error is fatal.
	Failed
)

func (r Result) String() string {
	switch r {
	case Handled:
		return "Handled"
	case Ignored:
		return "Ignored"
	case Unknown:
		return "Unknown"
	case Skipped:
		return "Skipped"
	case Failed:
		return "Failed"
	}
	return "UnknownResult"
}

// Dispatch decodes the frame according to the connection's current state
// and passes the packet to its handler.
//
// Unknown frames and frames whose decoder ran out of bytes are not errors.
// Any returned error is fatal for the connection.
func (r *Registry) Dispatch(c Conn, frame codec.Frame) (Result, error) {
	key := Key{State: c.State(), ID: frame.ID}
	decode, ok := r.decoders[key]
	if !ok {
		return Unknown, nil
	}
	ctx := &proto.PacketContext{
		Direction: proto.ServerBound,
		State:     key.State,
		PacketID:  frame.ID,
		Payload:   frame.Payload,
	}
	p, _, err := decode(ctx, frame.Payload)
	if err != nil {
		if !proto.IsFatal(err) {
			return Skipped, nil
		}
		return Failed, fmt.Errorf("error decoding packet %s: %w", key, err)
	}
	handle, ok := r.handlers[key]
	if !ok {
		return Ignored, nil
	}
	if err = handle(c, p); err != nil {
		return Handled, fmt.Errorf("error handling packet %T (%s): %w", p, key, err)
	}
	return Handled, nil
}
