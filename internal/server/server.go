// Package server exposes the automation engine as Model Context Protocol
// tools so agents can drive a device without shell round-trips.
package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/logging"
	"github.com/tas33n/DroidWright/internal/netfetch"
	"github.com/tas33n/DroidWright/internal/planner"
	"github.com/tas33n/DroidWright/internal/platform"
	"github.com/tas33n/DroidWright/internal/script"
	"github.com/tas33n/DroidWright/internal/storage"
	"github.com/tas33n/DroidWright/internal/version"
	"github.com/tas33n/DroidWright/internal/wait"
)

// Transports accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "streamable-http"
)

// Deps are the collaborators the tools are wired to. Only Provider is
// required.
type Deps struct {
	Provider *platform.Provider
	Planner  planner.Source
	Fetcher  netfetch.Fetcher
	// Storage returns the key-value namespace for a script run.
	Storage func(script string) storage.Store
	Device  string
}

// Config holds server settings.
type Config struct {
	Run      script.Config
	CacheTTL time.Duration // Snapshot reuse window for read-only tools
}

// Server wraps the MCP server with the device session. Tool calls are
// serialized on providerMu: a device takes one gesture at a time.
type Server struct {
	deps       Deps
	cfg        Config
	cache      *SnapshotCache
	engine     *wait.Engine
	dispatcher *action.Dispatcher
	providerMu sync.Mutex
	mcp        *mcpserver.MCPServer
	log        zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces the wall clock and sleep function used by waits,
// settle delays and script runs.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Server) {
		s.now = now
		s.sleep = sleep
	}
}

// New creates a server with every tool registered.
func New(deps Deps, cfg Config, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		deps:  deps,
		cfg:   cfg,
		log:   logging.Component(log, "mcp"),
		now:   time.Now,
		sleep: wait.Sleep,
	}
	for _, o := range opts {
		o(s)
	}

	p := deps.Provider
	s.cache = NewSnapshotCache(p.Snapshotter, cfg.CacheTTL)
	s.engine = wait.New(p.Snapshotter, p.Gesturer, p.Device, cfg.Run.Wait,
		logging.Component(log, "engine"), wait.WithClock(s.now, s.sleep))
	s.dispatcher = action.NewDispatcher(p, s.engine, cfg.Run.Dispatch,
		logging.Component(log, "dispatch"), action.WithSleep(s.sleep))

	s.mcp = mcpserver.NewMCPServer("droidwright", version.Version)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve blocks serving the given transport. addr is the listen address
// for streamable-http.
func (s *Server) Serve(transport, addr string) error {
	s.log.Info().Str("transport", transport).Str("addr", addr).Str("device", s.deps.Device).Msg("serving")
	switch transport {
	case TransportStdio:
		return mcpserver.ServeStdio(s.mcp)
	case TransportHTTP:
		return mcpserver.NewStreamableHTTPServer(s.mcp).Start(addr)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}
