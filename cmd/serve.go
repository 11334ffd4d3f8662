package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/server"
	"github.com/tas33n/DroidWright/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing device tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes the automation
engine as tools: dump, find, tap, set_text, wait_for, do, plan, run_script and
more. Agents call tools directly without shell overhead.

Supported transports:
  stdio             Standard I/O (default, for local MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  droidwright serve
  droidwright serve --transport streamable-http --addr :8080
  droidwright serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().String("addr", ":8080", "Listen address for streamable-http transport")
	serveCmd.Flags().Int("port", 0, "HTTP port for streamable-http (shorthand for --addr :PORT)")
	serveCmd.Flags().Duration("cache-ttl", 500*time.Millisecond, "Snapshot cache TTL for read-only tools (0 to disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	sc := appConfig.Serve
	if cmd.Flags().Changed("transport") {
		sc.Transport, _ = cmd.Flags().GetString("transport")
	}
	if cmd.Flags().Changed("addr") {
		sc.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		sc.Addr = fmt.Sprintf(":%d", port)
	}
	if cmd.Flags().Changed("cache-ttl") {
		sc.CacheTTL, _ = cmd.Flags().GetDuration("cache-ttl")
	}

	srv, closeFn, err := newMCPServer(cmd, sc.CacheTTL)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer closeFn()
	return srv.Serve(sc.Transport, sc.Addr)
}

// newMCPServer wires a server over a fresh session, the script database and
// the configured planner.
func newMCPServer(cmd *cobra.Command, cacheTTL time.Duration) (*server.Server, func(), error) {
	ctx := cmd.Context()
	s, err := newSession("")
	if err != nil {
		return nil, nil, err
	}
	db, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	src, err := newPlanner(ctx)
	if err != nil {
		db.Close() //nolint:errcheck
		return nil, nil, err
	}
	deps := server.Deps{
		Provider: s.provider,
		Planner:  src,
		Fetcher:  newFetcher(),
		Storage:  func(script string) storage.Store { return db.Namespace(script) },
		Device:   s.serial,
	}
	srv := server.New(deps, server.Config{Run: appConfig.Runner(), CacheTTL: cacheTTL}, appLog)
	closeFn := func() {
		db.Close() //nolint:errcheck
	}
	return srv, closeFn, nil
}
