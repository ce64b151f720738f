package netmc

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/atomic"

	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/packet"
)

// KeepAliver is implemented by connections sending keep-alives.
type KeepAliver interface {
	// AckKeepAlive validates the id of a keep-alive answered by the client.
	AckKeepAlive(id int64) error
}

// ErrUnexpectedKeepAlive is returned by AckKeepAlive when the client
// answered a keep-alive that was not sent or is not the latest.
var ErrUnexpectedKeepAlive = errors.New("unexpected keep-alive id")

type keepAliveState struct {
	id      atomic.Int64
	pending atomic.Bool
	sentAt  atomic.Time
}

func (k *keepAliveState) reset() { k.pending.Store(false) }

func (c *minecraftConn) AckKeepAlive(id int64) error {
	if !c.keepAlive.pending.Load() || c.keepAlive.id.Load() != id {
		return fmt.Errorf("%w: %d", ErrUnexpectedKeepAlive, id)
	}
	c.keepAlive.pending.Store(false)
	c.log.V(2).Info("keep-alive answered", "latency", time.Since(c.keepAlive.sentAt.Load()))
	return nil
}

// keepAliveLoop sends a keep-alive every interval while the connection is
// in a state that supports them. It disconnects the client if the previous
// keep-alive was not answered until the next one is due.
func (c *minecraftConn) keepAliveLoop() {
	ticker := time.NewTicker(c.opts.KeepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
		}
		if err := SendKeepAlive(c); err != nil {
			if errors.Is(err, ErrKeepAliveTimeout) {
				c.log.Info("client did not answer keep-alive in time")
				_ = Disconnect(c, "Timed out")
				return
			}
			c.log.V(1).Info("error sending keep-alive", "err", err)
		}
	}
}

// ErrKeepAliveTimeout is returned by SendKeepAlive when the
// previous keep-alive was not answered yet.
var ErrKeepAliveTimeout = errors.New("keep-alive timed out")

// SendKeepAlive sends a keep-alive packet with a random id to the
// connection if it is in the configuration or play state.
// This prevents a connection timeout.
func SendKeepAlive(c MinecraftConn) error {
	mc, ok := c.(*minecraftConn)
	if !ok {
		return nil
	}
	var p proto.Packet
	id := rand.Int64()
	switch c.State() {
	case proto.ConfigurationState:
		p = &packet.ConfigKeepAlive{KeepAliveID: id}
	case proto.PlayState:
		p = &packet.KeepAliveRequest{KeepAliveID: id}
	default:
		return nil
	}
	if mc.keepAlive.pending.Load() {
		return ErrKeepAliveTimeout
	}
	mc.keepAlive.id.Store(id)
	mc.keepAlive.sentAt.Store(time.Now())
	mc.keepAlive.pending.Store(true)
	if err := c.WritePacket(p); err != nil {
		mc.keepAlive.reset()
		return err
	}
	return nil
}
