// Package kasumi runs the server accepting Minecraft clients into a flat world.
package kasumi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/pires/go-proxyproto"
	"github.com/robinbraemer/event"
	"github.com/rs/xid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"go.minekube.com/kasumi/pkg/gamedata"
	"go.minekube.com/kasumi/pkg/internal/addrquota"
	"go.minekube.com/kasumi/pkg/netmc"
	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/state"
	"go.minekube.com/kasumi/pkg/proto/util"
	"go.minekube.com/kasumi/pkg/session"
	"go.minekube.com/kasumi/pkg/util/componentutil"
	"go.minekube.com/kasumi/pkg/util/errs"
	"go.minekube.com/kasumi/pkg/util/favicon"
)

// Options are Server options.
type Options struct {
	// Config requires a valid configuration.
	Config *Config
	// Logger is the logger used by the server and its connections.
	// If not set, the logger of the Start context is used.
	Logger logr.Logger
	// Event is the event manager lifecycle events are fired to.
	// If not set, a new one is created.
	Event event.Manager
}

// Server accepts client connections and serves them with the session handlers.
type Server struct {
	config   *Config
	log      logr.Logger
	event    event.Manager
	registry *state.Registry
	connOpts netmc.Options

	connectionsQuota *addrquota.Quota

	runOnce atomic.Bool
	addr    atomic.Value // net.Addr once listening

	mu    sync.RWMutex // Protects following field
	conns map[xid.ID]netmc.MinecraftConn
}

// ErrServerAlreadyRun is returned by Server.Start if the server was already run.
var ErrServerAlreadyRun = errors.New("server was already run, create a new one")

// New takes a config that should have been validated by
// Config.Validate and returns a new Server ready to start.
func New(options Options) (*Server, error) {
	c := options.Config
	if c == nil {
		return nil, errs.ErrMissingConfig
	}
	s := &Server{
		config: c,
		log:    options.Logger,
		event:  options.Event,
		conns:  map[xid.ID]netmc.MinecraftConn{},
		connOpts: netmc.Options{
			ReadTimeout:       millis(c.ReadTimeout),
			WriteTimeout:      millis(c.WriteTimeout),
			KeepAliveInterval: millis(c.KeepAliveInterval),
			MaxFrameLength:    c.MaxFrameSize,
		},
	}
	if s.event == nil {
		s.event = event.New()
	}
	if quota := c.Quota.Connections; quota.Enabled {
		s.connectionsQuota = addrquota.NewQuota(quota.OPS, quota.Burst, quota.MaxEntries)
	}

	opts, err := s.sessionOptions()
	if err != nil {
		return nil, err
	}
	handlers, err := session.New(opts)
	if err != nil {
		return nil, fmt.Errorf("error setting up session handlers: %w", err)
	}
	s.registry, err = handlers.Register(state.NewBuilder()).Build()
	if err != nil {
		return nil, fmt.Errorf("error building packet registry: %w", err)
	}
	return s, nil
}

func (s *Server) sessionOptions() (opts session.Options, err error) {
	c := s.config
	opts = session.Options{
		VersionName:        c.Status.VersionName,
		MaxPlayers:         c.Status.ShowMaxPlayers,
		ShowMaxPlayers:     c.Status.ShowMaxPlayers > 0,
		StatusCacheTTL:     millis(c.Status.CacheTTL),
		Online:             s.PlayerCount,
		OfflineUUIDs:       c.Login.OfflineUUIDs,
		ViewDistance:       c.World.ViewDistance,
		SimulationDistance: c.World.SimulationDistance,
		Layers:             c.World.Layers,
		GameMode:           GameModes[c.World.GameMode],
		Hardcore:           c.World.Hardcore,
		SeaLevel:           c.World.SeaLevel,
	}
	if len(c.Status.Motd) != 0 {
		if opts.Motd, err = componentutil.ParseTextComponent(c.Status.Motd); err != nil {
			return opts, fmt.Errorf("error loading status motd: %w", err)
		}
	}
	if opts.Favicon, err = loadFavicon(c.Status.Favicon); err != nil {
		return opts, fmt.Errorf("error loading favicon: %w", err)
	}
	if opts.Biome, err = util.ParseKey(c.World.Biome); err != nil {
		return opts, fmt.Errorf("error loading biome: %w", err)
	}
	if opts.GameData, err = gamedata.Load(c.GameData); err != nil {
		return opts, fmt.Errorf("error loading game data: %w", err)
	}
	return opts, nil
}

// loadFavicon takes a data uri or reads an image file.
func loadFavicon(s string) (favicon.Favicon, error) {
	if len(s) == 0 || strings.HasPrefix(s, "data:image/") {
		return favicon.Parse(s)
	}
	f, err := favicon.FromFile(s)
	if err != nil {
		return "", fmt.Errorf("error reading favicon file %q: %w", s, err)
	}
	return f, nil
}

// Event returns the Server's event manager.
func (s *Server) Event() event.Manager { return s.event }

// Addr returns the address the server listens on, or nil if it is not listening yet.
func (s *Server) Addr() net.Addr {
	addr, _ := s.addr.Load().(net.Addr)
	return addr
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// PlayerCount returns the number of connections in the play state.
func (s *Server) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, c := range s.conns {
		if c.State() == proto.PlayState {
			n++
		}
	}
	return n
}

// Start runs the Server and blocks until ctx is canceled or the listener failed.
// All connections are closed on method return.
// A Server can only be run once or ErrServerAlreadyRun is returned.
func (s *Server) Start(ctx context.Context) error {
	if !s.runOnce.CompareAndSwap(false, true) {
		return ErrServerAlreadyRun
	}
	if s.log.GetSink() == nil {
		s.log = logr.FromContextOrDiscard(ctx)
	}
	ctx = logr.NewContext(ctx, s.log)

	gauge, err := meter.Int64ObservableGauge("kasumi.connections.open",
		metric.WithDescription("Number of open client connections"), metric.WithUnit("1"))
	if err != nil {
		return fmt.Errorf("error creating connections gauge: %w", err)
	}
	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(s.ConnectionCount()))
		return nil
	}, gauge)
	if err != nil {
		return fmt.Errorf("error registering connections gauge: %w", err)
	}
	defer func() { _ = reg.Unregister() }()

	ln, err := net.Listen("tcp", s.config.Bind)
	if err != nil {
		return err
	}
	if s.config.ProxyProtocol {
		ln = &proxyproto.Listener{Listener: ln}
	}

	// Connections outlive the listener until shutdown disconnected them.
	connCtx, closeConns := context.WithCancel(context.WithoutCancel(ctx))
	defer func() {
		s.shutdown()
		closeConns()
	}()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		_ = ln.Close()
		return nil
	})
	eg.Go(func() error {
		defer ln.Close()
		return s.serve(ctx, connCtx, ln)
	})
	return eg.Wait()
}

// serve accepts connections on ln until it is closed.
func (s *Server) serve(ctx, connCtx context.Context, ln net.Listener) error {
	s.addr.Store(ln.Addr())
	s.log.Info("listening for connections", "addr", ln.Addr().String())
	s.event.Fire(&ReadyEvent{addr: ln.Addr()})

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				// Listener was closed
				return nil
			}
			return fmt.Errorf("error accepting new connection: %w", err)
		}
		go s.handleRawConn(connCtx, conn)
	}
}

// handleRawConn handles a just-accepted connection that
// has not had any I/O performed on it yet.
func (s *Server) handleRawConn(ctx context.Context, raw net.Conn) {
	if s.connectionsQuota != nil && s.connectionsQuota.Blocked(raw.RemoteAddr()) {
		_ = raw.Close()
		s.log.Info("connection exceeded rate limit, closed", "remoteAddr", raw.RemoteAddr().String())
		return
	}

	conn, serve := netmc.NewMinecraftConn(ctx, raw, s.registry, s.connOpts)
	s.mu.Lock()
	s.conns[conn.ID()] = conn
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn.ID())
		s.mu.Unlock()
	}()

	s.event.Fire(&ConnectionEvent{conn: conn})
	err := serve()
	log := logr.FromContextOrDiscard(conn.Context())
	switch {
	case err == nil:
		log.V(1).Info("connection closed")
	case errs.IsSilent(err):
		log.V(1).Info("connection closed", "reason", err.Error())
	default:
		log.Info("connection closed with error", "error", err.Error())
	}
	if p, ok := session.PlayerOf(conn); ok {
		log.Info("player disconnected", "username", p.Name, "uuid", p.ID.String())
	}
	s.event.Fire(&DisconnectEvent{conn: conn, err: err})
}

// shutdown disconnects all connections and waits for event handlers.
func (s *Server) shutdown() {
	s.log.Info("shutting down server")
	s.mu.RLock()
	conns := make([]netmc.MinecraftConn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.RUnlock()
	for _, c := range conns {
		_ = netmc.Disconnect(c, "Server closed")
	}
	s.event.Fire(&ShutdownEvent{})
	s.event.Wait()
	s.log.Info("finished shutdown")
}
