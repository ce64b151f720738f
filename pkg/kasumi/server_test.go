package kasumi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"go.minekube.com/kasumi/pkg/ping"
	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/codec"
	"go.minekube.com/kasumi/pkg/proto/packet"
	"go.minekube.com/kasumi/pkg/util/errs"
	"go.minekube.com/kasumi/pkg/util/uuid"
)

type client struct {
	net.Conn
	enc *codec.Encoder
	dec *codec.Decoder
}

func dial(t *testing.T, addr net.Addr) *client {
	t.Helper()
	c, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return &client{
		Conn: c,
		enc:  codec.NewEncoder(c, proto.ServerBound),
		dec:  codec.NewDecoder(c, codec.VanillaMaximumFrameLength, logr.Discard()),
	}
}

func (c *client) write(t *testing.T, p proto.Packet) {
	t.Helper()
	_, err := c.enc.WritePacket(p)
	require.NoError(t, err)
}

func (c *client) frame(t *testing.T) codec.Frame {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	frame, err := c.dec.ReadFrame()
	require.NoError(t, err)
	return frame
}

// read reads the next frame and decodes it into p.
func (c *client) read(t *testing.T, p proto.Packet) {
	t.Helper()
	frame := c.frame(t)
	require.Equal(t, p.ID(), frame.ID, "expected %T", p)
	require.NoError(t, p.Decode(nil, bytes.NewReader(frame.Payload)))
}

func (c *client) handshake(t *testing.T, intent packet.Intent) {
	c.write(t, &packet.Handshake{
		ProtocolVersion: packet.Protocol,
		ServerAddress:   "localhost",
		Port:            25565,
		Intent:          intent,
	})
}

func startServer(t *testing.T, modify func(c *Config)) (*Server, context.CancelFunc, <-chan error) {
	t.Helper()
	c := defaultConfig(t)
	c.Bind = "127.0.0.1:0"
	c.KeepAliveInterval = 0
	c.World.ViewDistance = 1
	if modify != nil {
		modify(c)
	}
	s, err := New(Options{Config: c, Logger: logr.Discard()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	require.Eventually(t, func() bool { return s.Addr() != nil }, 5*time.Second, 10*time.Millisecond)
	return s, cancel, done
}

func TestServer_Status(t *testing.T) {
	s, cancel, done := startServer(t, nil)

	c := dial(t, s.Addr())
	c.handshake(t, packet.StatusIntent)
	c.write(t, &packet.StatusRequest{})
	var res packet.StatusResponse
	c.read(t, &res)
	var pong ping.ServerPing
	require.NoError(t, json.Unmarshal([]byte(res.Status), &pong))
	assert.Equal(t, packet.Protocol, pong.Version.Protocol)
	assert.Equal(t, "Kasumi "+packet.MinecraftVersion, pong.Version.Name)
	require.NotNil(t, pong.Players)
	assert.Equal(t, 20, pong.Players.Max)
	assert.Contains(t, res.Status, "A Kasumi Server")

	c.write(t, &packet.StatusPing{RandomID: 99})
	var echo packet.StatusPing
	c.read(t, &echo)
	assert.Equal(t, int64(99), echo.RandomID)

	// The server closes the connection after the ping.
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err := c.dec.ReadFrame()
	assert.True(t, errors.Is(err, io.EOF) || errs.IsConnClosedErr(err), "%v", err)

	cancel()
	assert.NoError(t, <-done)
	assert.ErrorIs(t, s.Start(context.Background()), ErrServerAlreadyRun)
}

func TestServer_JoinWorld(t *testing.T) {
	s, cancel, done := startServer(t, nil)
	var connected, disconnected, shutdown atomic.Int64
	event.Subscribe(s.Event(), 0, func(*ConnectionEvent) { connected.Inc() })
	event.Subscribe(s.Event(), 0, func(*DisconnectEvent) { disconnected.Inc() })
	event.Subscribe(s.Event(), 0, func(*ShutdownEvent) { shutdown.Inc() })

	c := dial(t, s.Addr())
	c.handshake(t, packet.LoginIntent)
	c.write(t, &packet.LoginStart{Username: "Steve", PlayerID: uuid.New()})
	var success packet.LoginSuccess
	c.read(t, &success)
	assert.Equal(t, "Steve", success.Username)
	assert.Equal(t, uuid.OfflinePlayerUUID("Steve"), success.PlayerID)

	c.write(t, &packet.LoginAcknowledged{})
	c.write(t, &packet.ClientInformation{Locale: "en_us", ViewDistance: 8, MainHand: packet.RightHand})
	var packs packet.ClientboundKnownPacks
	c.read(t, &packs)
	assert.Equal(t, []packet.KnownPack{packet.CorePack}, packs.Packs)

	c.write(t, &packet.ServerboundKnownPacks{Packs: packs.Packs})
	var registries int
	for {
		frame := c.frame(t)
		if frame.ID == (&packet.FinishConfiguration{}).ID() {
			break
		}
		require.Equal(t, (&packet.RegistryData{}).ID(), frame.ID)
		registries++
	}
	assert.Equal(t, 11, registries)

	c.write(t, &packet.AcknowledgeFinishConfiguration{})
	var login packet.Login
	c.read(t, &login)
	assert.Equal(t, packet.Creative, login.GameMode)
	var sync packet.SynchronizePlayerPosition
	c.read(t, &sync)
	assert.Equal(t, -60.0, sync.Y)

	c.write(t, &packet.ConfirmTeleportation{TeleportID: sync.TeleportID})
	var ev packet.GameEvent
	c.read(t, &ev)
	assert.Equal(t, packet.StartWaitingForChunksEvent, ev.Event)
	for i := 0; i < 9; i++ {
		require.Equal(t, (&packet.ChunkDataAndLight{}).ID(), c.frame(t).ID)
	}
	assert.Equal(t, 1, s.PlayerCount())
	assert.Equal(t, int64(1), connected.Load())

	cancel()
	var kick packet.PlayDisconnect
	c.read(t, &kick)
	assert.Equal(t, "Server closed", kick.Reason)
	assert.NoError(t, <-done)
	assert.Equal(t, int64(1), shutdown.Load())
	assert.Eventually(t, func() bool { return disconnected.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestServer_Quota(t *testing.T) {
	s, _, _ := startServer(t, func(c *Config) {
		c.Quota.Connections = QuotaSettings{Enabled: true, OPS: 0.001, Burst: 1, MaxEntries: 10}
	})

	first := dial(t, s.Addr())
	first.handshake(t, packet.StatusIntent)
	first.write(t, &packet.StatusRequest{})
	first.read(t, &packet.StatusResponse{})

	second := dial(t, s.Addr())
	_ = second.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err := second.dec.ReadFrame()
	assert.Error(t, err)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, errs.ErrMissingConfig)

	c := defaultConfig(t)
	c.Status.Motd = `{"text":`
	_, err = New(Options{Config: c})
	assert.ErrorContains(t, err, "motd")

	c = defaultConfig(t)
	c.GameData = "does-not-exist.yml"
	_, err = New(Options{Config: c})
	assert.ErrorContains(t, err, "game data")
}
