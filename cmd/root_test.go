package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/output"
	"github.com/tas33n/DroidWright/internal/platform"
	"github.com/tas33n/DroidWright/internal/platform/fake"
	"github.com/tas33n/DroidWright/internal/script"
)

// cli runs the root command against a fake device.
type cli struct {
	dev   *fake.Device
	stdin string

	mu   sync.Mutex
	opts []platform.Options
}

func newCLI(t *testing.T, frames ...[]model.Element) *cli {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DROIDWRIGHT_STORAGE_PATH", filepath.Join(home, "kv.db"))
	t.Setenv("DROIDWRIGHT_LOG_LEVEL", "error")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DROIDWRIGHT_PLANNER_API_KEY", "")
	for _, key := range []string{"DISPATCH_TAP_SETTLE", "DISPATCH_SWIPE_SETTLE", "DISPATCH_SLEEP_DURATION", "WAIT_POLL_INTERVAL", "WAIT_SETTLE"} {
		t.Setenv("DROIDWRIGHT_"+key, "1ms")
	}

	c := &cli{dev: fake.New(frames...)}
	origProvider, origRun, origStdin := newProvider, runOptions, stdin
	newProvider = func(opts platform.Options) (*platform.Provider, error) {
		c.mu.Lock()
		c.opts = append(c.opts, opts)
		c.mu.Unlock()
		return c.dev.Provider(), nil
	}
	runOptions = []script.Option{script.WithClock(
		func() time.Time { return time.UnixMilli(1700000000000) },
		func(ctx context.Context, d time.Duration) error { return ctx.Err() },
	)}
	t.Cleanup(func() { newProvider, runOptions, stdin = origProvider, origRun, origStdin })
	return c
}

// run executes args and returns what the command printed.
func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	stdin = strings.NewReader(c.stdin)

	var buf bytes.Buffer
	origWriter := output.Writer
	output.Writer = &buf
	defer func() { output.Writer = origWriter }()

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// runJSON executes args with --format json and decodes the output into v.
func (c *cli) runJSON(t *testing.T, v any, args ...string) error {
	t.Helper()
	out, err := c.run(t, append(args, "--format", "json")...)
	if out != "" {
		if derr := json.Unmarshal([]byte(out), v); derr != nil {
			t.Fatalf("decode %q: %v", out, derr)
		}
	}
	return err
}

// resetFlags restores every flag to its default; cobra keeps flag state
// between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func screen(children ...model.Element) []model.Element {
	return []model.Element{{Class: "android.widget.FrameLayout", Bounds: model.Rect{0, 0, 1080, 2400}, Children: children}}
}

func button(text string, top int) model.Element {
	return model.Element{Class: "android.widget.Button", Text: text, Clickable: true, Enabled: true, Bounds: model.Rect{0, top, 1080, top + 100}}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{
		"run", "do", "plan", "find", "exists", "wait", "tap", "swipe", "scroll", "type", "press",
		"launch", "dump", "storage", "screenshot", "serve", "scripts", "devices", "assert", "watch",
	}
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestRoot_BadFormat(t *testing.T) {
	c := newCLI(t, screen())
	_, err := c.run(t, "dump", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "unsupported output format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestRoot_SerialFlagOverridesConfig(t *testing.T) {
	c := newCLI(t, screen())
	cfgPath := filepath.Join(t.TempDir(), "droidwright.yaml")
	if err := os.WriteFile(cfgPath, []byte("adb:\n  serial: from-file\n  path: /opt/adb\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := c.run(t, "dump", "--config", cfgPath); err != nil {
		t.Fatal(err)
	}
	if _, err := c.run(t, "dump", "--config", cfgPath, "--serial", "emulator-5556"); err != nil {
		t.Fatal(err)
	}
	if len(c.opts) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(c.opts))
	}
	if c.opts[0].Serial != "from-file" || c.opts[0].ADBPath != "/opt/adb" {
		t.Errorf("config file not applied: %+v", c.opts[0])
	}
	if c.opts[1].Serial != "emulator-5556" {
		t.Errorf("--serial should override the config file, got %q", c.opts[1].Serial)
	}
}

func TestRoot_InvalidConfig(t *testing.T) {
	c := newCLI(t, screen())
	t.Setenv("DROIDWRIGHT_WAIT_POLL_INTERVAL", "-1s")
	_, err := c.run(t, "dump")
	if err == nil || !strings.Contains(err.Error(), "wait.poll_interval") {
		t.Fatalf("expected validation error, got %v", err)
	}
}
