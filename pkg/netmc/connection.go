// Package netmc implements a client connection driving the packet
// framer, the connection state and the packet registry.
package netmc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/rs/xid"
	"go.uber.org/atomic"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/codec"
	"go.minekube.com/kasumi/pkg/proto/state"
	"go.minekube.com/kasumi/pkg/util/errs"
	"go.minekube.com/kasumi/pkg/util/sets"
)

// MinecraftConn is a Minecraft client connection.
// The connection is unusable after Close was called.
type MinecraftConn interface {
	// Context returns the context of the connection.
	// This Context is canceled on Close and carries the connection's logger.
	Context() context.Context
	// Close closes the connection, if not already.
	// It is okay to call this method multiple times.
	Close() error

	// ID returns the unique id of the connection.
	ID() xid.ID
	// RemoteAddr returns the remote address of the connection.
	RemoteAddr() net.Addr
	// Skipped returns the number of frames skipped because
	// their packet could not be decoded from the frame payload.
	Skipped() int64

	// State returns the current state of the connection.
	State() proto.State
	// SetState moves the connection to the next state.
	SetState(next proto.State) error
	// WritePacket encodes and writes a whole packet frame to the connection.
	// The packet must belong to the connection's current state.
	//
	// The connection will be closed on any write error encountered!
	WritePacket(p proto.Packet) error

	Attributes
	KeepAliver
}

// Attributes stores values of the session on a connection.
type Attributes interface {
	SetValue(key, value any)
	Value(key any) any
}

var _ state.Conn = (MinecraftConn)(nil)

// Closed returns true if the connection is closed.
func Closed(c interface{ Context() context.Context }) bool {
	return c.Context().Err() != nil
}

var (
	// ErrClosedConn indicates a connection is already closed.
	ErrClosedConn = errors.New("connection is closed")
	// ErrWrongState is returned when writing a packet that does not
	// belong to the connection's current state.
	ErrWrongState = errors.New("packet does not belong to connection state")
)

// Options configure a connection.
type Options struct {
	ReadTimeout       time.Duration // Disconnects when no data is received for this long.
	WriteTimeout      time.Duration
	KeepAliveInterval time.Duration // Zero disables keep-alives.
	MaxFrameLength    int           // Zero uses codec.VanillaMaximumFrameLength.
}

// unknownLogCap caps the number of distinct unknown packet keys logged per connection.
const unknownLogCap = 64

// NewMinecraftConn returns a new MinecraftConn and the func to run
// the blocking read-loop dispatching frames to the registry.
//
// The connection is closed when the read-loop returns or ctx is canceled.
func NewMinecraftConn(
	ctx context.Context,
	base net.Conn,
	registry *state.Registry,
	opts Options,
) (conn MinecraftConn, serve func() error) {
	if opts.MaxFrameLength <= 0 {
		opts.MaxFrameLength = codec.VanillaMaximumFrameLength
	}
	id := xid.New()
	log := logr.FromContextOrDiscard(ctx).WithName("conn").WithValues(
		"connId", id.String(), "remoteAddr", base.RemoteAddr().String())
	ctx = logr.NewContext(ctx, log)

	ctx, cancel := context.WithCancel(ctx)
	c := &minecraftConn{
		id:        id,
		c:         base,
		log:       log,
		opts:      opts,
		ctx:       ctx,
		cancelCtx: cancel,
		registry:  registry,
		dec:       codec.NewDecoder(base, opts.MaxFrameLength, log.V(2)),
		enc:       codec.NewEncoder(base, proto.ClientBound),
		state:     proto.HandshakeState,
		unknown:   sets.NewCappedSet[state.Key](unknownLogCap),
	}
	return c, c.serve
}

type minecraftConn struct {
	id   xid.ID
	c    net.Conn    // underlying connection
	log  logr.Logger // connections own logger
	opts Options

	registry *state.Registry
	dec      *codec.Decoder
	enc      *codec.Encoder

	ctx       context.Context // is canceled when connection closed
	cancelCtx context.CancelFunc
	closeOnce sync.Once

	mu    sync.RWMutex // Protects state and is read-locked while writing a packet.
	state proto.State

	writeMu sync.Mutex // Serializes write deadlines and frame writes.

	unknown *sets.CappedSet[state.Key] // only accessed by the read-loop
	skipped atomic.Int64
	values  sync.Map

	keepAlive keepAliveState
}

func (c *minecraftConn) Context() context.Context { return c.ctx }
func (c *minecraftConn) ID() xid.ID               { return c.id }
func (c *minecraftConn) RemoteAddr() net.Addr     { return c.c.RemoteAddr() }
func (c *minecraftConn) Skipped() int64           { return c.skipped.Load() }

func (c *minecraftConn) SetValue(key, value any) { c.values.Store(key, value) }

func (c *minecraftConn) Value(key any) any {
	v, _ := c.values.Load(key)
	return v
}

// serve is the main goroutine of this connection and reads frames
// to dispatch them in the connection's current state.
// Close will be called on method return.
func (c *minecraftConn) serve() (err error) {
	defer func() { _ = c.Close() }()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic in packets read loop: %v", r)
		}
	}()
	stop := context.AfterFunc(c.ctx, func() { _ = c.c.Close() })
	defer stop()
	defer func() {
		if n := c.unknown.Len(); n != 0 {
			c.log.V(1).Info("received unknown packets", "distinctKeys", n)
		}
	}()

	if c.opts.KeepAliveInterval > 0 {
		go c.keepAliveLoop()
	}

	for !Closed(c) {
		if err = c.next(); err != nil {
			if errors.Is(err, proto.ErrConnDone) || Closed(c) {
				return nil
			}
			return err
		}
	}
	return nil
}

// next reads and dispatches the next frame.
func (c *minecraftConn) next() error {
	if c.opts.ReadTimeout > 0 {
		// Set read timeout to wait for client to send a packet
		_ = c.c.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
	}
	frame, err := c.dec.ReadFrame()
	if err != nil {
		var malformed *proto.MalformedPacketError
		if errors.As(err, &malformed) || errs.IsConnClosedErr(err) {
			return errs.WrapSilent(err)
		}
		return err
	}

	result, err := c.registry.Dispatch(c, frame)
	switch result {
	case state.Unknown:
		key := state.Key{State: c.State(), ID: frame.ID}
		unknownPackets.Add(c.ctx, 1)
		if c.unknown.Add(key) {
			c.log.V(1).Info("ignoring unknown packet", "key", key, "len", len(frame.Payload))
		}
	case state.Skipped:
		c.skipped.Inc()
		skippedPackets.Add(c.ctx, 1)
		c.log.V(1).Info("skipped frame with incomplete packet", "id", frame.ID, "len", len(frame.Payload))
	}
	return err
}

func (c *minecraftConn) State() proto.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *minecraftConn) SetState(next proto.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", proto.ErrIllegalTransition, c.state, next)
	}
	c.log.V(1).Info("switching state", "from", c.state, "to", next)
	c.state = next
	c.keepAlive.reset()
	return nil
}

func (c *minecraftConn) WritePacket(p proto.Packet) (err error) {
	if Closed(c) {
		return ErrClosedConn
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p.State() != c.state {
		return fmt.Errorf("%w: %T belongs to %s, connection is in %s", ErrWrongState, p, p.State(), c.state)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	defer func() { c.closeOnErr(err) }()
	if c.opts.WriteTimeout > 0 {
		// Handle err in case the connection is
		// already closed and can't write to.
		if err = c.c.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
			return err
		}
	}
	_, err = c.enc.WritePacket(p)
	return err
}

func (c *minecraftConn) closeOnErr(err error) {
	if err == nil {
		return
	}
	_ = c.Close()
	if errors.Is(err, ErrClosedConn) || errs.IsConnClosedErr(err) {
		return // Don't log this error
	}
	c.log.V(1).Info("error writing packet, closing connection", "err", err)
}

func (c *minecraftConn) Close() error {
	err := ErrClosedConn
	c.closeOnce.Do(func() {
		c.cancelCtx()
		err = c.c.Close()
		c.log.V(1).Info("connection closed", "skippedFrames", c.skipped.Load())
	})
	return err
}

// CloseWith closes the connection after writing the packet.
func CloseWith(c MinecraftConn, packet proto.Packet) error {
	if Closed(c) {
		return ErrClosedConn
	}
	_ = c.WritePacket(packet)
	return c.Close()
}
