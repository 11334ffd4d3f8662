// Package adb implements the platform capabilities by shelling out to the
// Android Debug Bridge.
package adb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tas33n/DroidWright/internal/platform"
)

// RunFunc executes a command and returns its stdout.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Client talks to one device through the adb binary.
type Client struct {
	path   string
	serial string
	run    RunFunc
	log    zerolog.Logger

	dumpRetryDelay time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithRunner replaces command execution, mainly for tests.
func WithRunner(run RunFunc) Option {
	return func(c *Client) { c.run = run }
}

// WithLogger sets the client's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client. An empty adb path means "adb" from PATH; an empty
// serial addresses the only attached device.
func New(opts platform.Options, options ...Option) *Client {
	c := &Client{
		path:   opts.ADBPath,
		serial: opts.Serial,
		run:    execRun,
		log:    opts.Log,

		dumpRetryDelay: 500 * time.Millisecond,
	}
	if c.path == "" {
		c.path = "adb"
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Provider exposes the client as every platform capability.
func (c *Client) Provider() *platform.Provider {
	return &platform.Provider{Snapshotter: c, Gesturer: c, Device: c, Apps: c}
}

// Serial returns the device serial the client addresses.
func (c *Client) Serial() string { return c.serial }

func (c *Client) adb(ctx context.Context, args ...string) ([]byte, error) {
	full := args
	if c.serial != "" {
		full = append([]string{"-s", c.serial}, args...)
	}
	c.log.Trace().Strs("args", full).Msg("adb")
	out, err := c.run(ctx, c.path, full...)
	if err != nil {
		return out, fmt.Errorf("adb %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

func (c *Client) shell(ctx context.Context, args ...string) ([]byte, error) {
	return c.adb(ctx, append([]string{"shell"}, args...)...)
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%w: %s", err, msg)
		}
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}
