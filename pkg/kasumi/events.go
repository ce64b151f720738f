package kasumi

import (
	"net"

	"go.minekube.com/kasumi/pkg/netmc"
)

// ReadyEvent is fired once the server listens for connections.
type ReadyEvent struct {
	addr net.Addr
}

// Addr returns the address the server listens on.
func (e *ReadyEvent) Addr() net.Addr { return e.addr }

// ConnectionEvent is fired when a connection was accepted
// and before its first packet is read.
type ConnectionEvent struct {
	conn netmc.MinecraftConn
}

// Conn returns the accepted connection.
func (e *ConnectionEvent) Conn() netmc.MinecraftConn { return e.conn }

// DisconnectEvent is fired when a connection was closed.
type DisconnectEvent struct {
	conn netmc.MinecraftConn
	err  error
}

// Conn returns the closed connection.
func (e *DisconnectEvent) Conn() netmc.MinecraftConn { return e.conn }

// Err returns the error the connection was closed with, if any.
func (e *DisconnectEvent) Err() error { return e.err }

// ShutdownEvent is fired after the listener was closed and
// all connections were disconnected.
type ShutdownEvent struct{}
