package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/output"
	"github.com/tas33n/DroidWright/internal/platform"
	"github.com/tas33n/DroidWright/internal/script"
	"github.com/tas33n/DroidWright/internal/server"
	"github.com/tas33n/DroidWright/internal/storage"
)

func TestFind(t *testing.T) {
	c := newCLI(t, screen(button("Login", 100), button("Login", 300), button("Cancel", 500)))

	var res server.FindResult
	if err := c.runJSON(t, &res, "find", "--text", "Login"); err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Count != 2 || len(res.Matches) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Matches[0].Tap != (model.Point{X: 540, Y: 150}) {
		t.Errorf("first match tap point = %s", res.Matches[0].Tap)
	}
	if res.Matches[0].Depth != 1 || res.Matches[0].Index != 1 {
		t.Errorf("first match position = index %d depth %d", res.Matches[0].Index, res.Matches[0].Depth)
	}

	res = server.FindResult{}
	if err := c.runJSON(t, &res, "find", "--text", "Login", "--limit", "1"); err != nil {
		t.Fatal(err)
	}
	if res.Count != 2 || len(res.Matches) != 1 {
		t.Errorf("--limit should cap matches but not count: %+v", res)
	}
}

func TestFind_RequiresSelector(t *testing.T) {
	c := newCLI(t, screen())
	if _, err := c.run(t, "find"); err == nil {
		t.Fatal("expected an error without a selector")
	}
}

func TestExists(t *testing.T) {
	c := newCLI(t, screen(button("Login", 100)))

	var res server.FindResult
	if err := c.runJSON(t, &res, "exists", "--text", "Logout"); err != nil {
		t.Fatalf("a missing element is not an error: %v", err)
	}
	if res.Found || res.Count != 0 {
		t.Errorf("unexpected result: %+v", res)
	}

	res = server.FindResult{}
	if err := c.runJSON(t, &res, "exists", "--selector", "{text: Login, clickable: true}"); err != nil {
		t.Fatal(err)
	}
	if !res.Found || len(res.Matches) != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestTap(t *testing.T) {
	c := newCLI(t, screen(button("Login", 100)))

	var rep action.Report
	if err := c.runJSON(t, &rep, "tap", "--text", "Login"); err != nil {
		t.Fatal(err)
	}
	if !rep.OK || rep.Results[0].Point == nil || *rep.Results[0].Point != (model.Point{X: 540, Y: 150}) {
		t.Errorf("unexpected report: %+v", rep)
	}

	if _, err := c.run(t, "tap", "--x", "100", "--y", "200", "--hold", "1s"); err != nil {
		t.Fatal(err)
	}
	g := c.dev.Recorded()
	if len(g) != 2 {
		t.Fatalf("expected 2 gestures, got %+v", g)
	}
	if g[0].Kind != "tap" {
		t.Errorf("first gesture = %s", g[0].Kind)
	}
	if g[1].Kind != "longtap" || g[1].From != (model.Point{X: 100, Y: 200}) || g[1].Duration != time.Second {
		t.Errorf("long tap = %+v", g[1])
	}
}

func TestTap_Errors(t *testing.T) {
	c := newCLI(t, screen(button("Login", 100)))

	_, err := c.run(t, "tap", "--x", "100")
	if err == nil || !strings.Contains(err.Error(), "both --x and --y") {
		t.Errorf("expected target error, got %v", err)
	}

	var rep action.Report
	err = c.runJSON(t, &rep, "tap", "--text", "Logout")
	if err == nil || !strings.Contains(err.Error(), "element not found") {
		t.Errorf("expected not found error, got %v", err)
	}
	if rep.OK || len(rep.Results) != 1 || rep.Results[0].Status != action.StatusError {
		t.Errorf("report should carry the failure: %+v", rep)
	}
	if n := len(c.dev.Recorded()); n != 0 {
		t.Errorf("no gesture expected, got %d", n)
	}
}

func TestSwipe(t *testing.T) {
	c := newCLI(t, screen())
	if _, err := c.run(t, "swipe", "540", "1800", "540", "600", "--duration", "300ms"); err != nil {
		t.Fatal(err)
	}
	g := c.dev.Recorded()
	if len(g) != 1 || g[0].Kind != "swipe" || g[0].Duration != 300*time.Millisecond {
		t.Fatalf("gestures = %+v", g)
	}
	if g[0].From != (model.Point{X: 540, Y: 1800}) || g[0].To != (model.Point{X: 540, Y: 600}) {
		t.Errorf("swipe path = %s -> %s", g[0].From, g[0].To)
	}

	if _, err := c.run(t, "swipe", "0", "0", "2000", "100"); err == nil {
		t.Error("expected an error for a point outside the screen")
	}
	if _, err := c.run(t, "swipe", "a", "0", "1", "1"); err == nil {
		t.Error("expected an error for a non-numeric coordinate")
	}
}

func TestScroll(t *testing.T) {
	c := newCLI(t, screen())
	if _, err := c.run(t, "scroll"); err != nil {
		t.Fatal(err)
	}
	if n := c.dev.Count("swipe"); n != 1 {
		t.Errorf("expected one swipe, got %d", n)
	}
	if _, err := c.run(t, "scroll", "--direction", "sideways"); err == nil {
		t.Error("expected an error for an unknown direction")
	}
}

func TestType(t *testing.T) {
	c := newCLI(t, loginScreen())
	if _, err := c.run(t, "type", "--id", "username", "jane@example.com"); err != nil {
		t.Fatal(err)
	}
	g := c.dev.Recorded()
	if len(g) != 2 || g[0].Kind != "tap" || g[1].Kind != "text" || g[1].Text != "jane@example.com" {
		t.Errorf("gestures = %+v", g)
	}

	if _, err := c.run(t, "type", "--id", "username"); err == nil {
		t.Error("expected an error without text")
	}
}

func TestPress(t *testing.T) {
	c := newCLI(t, screen())
	if _, err := c.run(t, "press", "back"); err != nil {
		t.Fatal(err)
	}
	if g := c.dev.Recorded(); len(g) != 1 || g[0].Key != platform.KeyBack {
		t.Errorf("gestures = %+v", g)
	}
	if _, err := c.run(t, "press", "bogus"); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestLaunch(t *testing.T) {
	c := newCLI(t, screen())

	var res LaunchResult
	if err := c.runJSON(t, &res, "launch", "com.android.settings"); err != nil {
		t.Fatal(err)
	}
	if !res.Launched || res.Package != "com.android.settings" {
		t.Errorf("unexpected result: %+v", res)
	}

	c.dev.LaunchOK = false
	res = LaunchResult{}
	if err := c.runJSON(t, &res, "launch", "com.example.missing"); err == nil {
		t.Error("expected an error when the app does not start")
	}
	if res.Launched {
		t.Errorf("unexpected result: %+v", res)
	}
	if got := strings.Join(c.dev.Launched, ","); got != "com.android.settings,com.example.missing" {
		t.Errorf("launched = %s", got)
	}
}

func TestWait(t *testing.T) {
	c := newCLI(t, screen(), screen(button("Done", 100)))
	c.dev.AdvanceOnSnapshot = true

	var rep action.Report
	if err := c.runJSON(t, &rep, "wait", "--text", "Done", "--timeout", "5s"); err != nil {
		t.Fatal(err)
	}
	if !rep.OK || rep.Results[0].Found == nil || !*rep.Results[0].Found {
		t.Errorf("unexpected report: %+v", rep)
	}
}

func TestWait_NotFoundIsNotAnError(t *testing.T) {
	c := newCLI(t, screen(button("Login", 100)))

	var rep action.Report
	if err := c.runJSON(t, &rep, "wait", "--text", "Done", "--timeout", "0"); err != nil {
		t.Fatal(err)
	}
	if !rep.OK || rep.Results[0].Found == nil || *rep.Results[0].Found {
		t.Errorf("unexpected report: %+v", rep)
	}
	if n := c.dev.SnapshotCount(); n != 1 {
		t.Errorf("a zero timeout checks once, took %d snapshots", n)
	}
}

func TestDump(t *testing.T) {
	c := newCLI(t, screen(button("Login", 100), button("Cancel", 500)))

	var res output.DumpResult
	if err := c.runJSON(t, &res, "dump", "--serial", "emulator-5554"); err != nil {
		t.Fatal(err)
	}
	if res.Device != "emulator-5554" || res.Hash == "" || len(res.Elements) != 1 || len(res.Elements[0].Children) != 2 {
		t.Errorf("unexpected dump: %+v", res)
	}

	var flat output.DumpFlatResult
	if err := c.runJSON(t, &flat, "dump", "--flat"); err != nil {
		t.Fatal(err)
	}
	if len(flat.Elements) != 3 || flat.Elements[1].Text != "Login" {
		t.Errorf("unexpected flat dump: %+v", flat.Elements)
	}

	flat = output.DumpFlatResult{}
	if err := c.runJSON(t, &flat, "dump", "--flat", "--bbox", "[0,0][1080,150]"); err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, el := range flat.Elements {
		if el.Text != "" {
			texts = append(texts, el.Text)
		}
	}
	if strings.Join(texts, ",") != "Login" {
		t.Errorf("bbox should keep only Login, got %v", texts)
	}

	if _, err := c.run(t, "dump", "--bbox", "nonsense"); err == nil {
		t.Error("expected an error for malformed bounds")
	}
}

func TestScreenshot(t *testing.T) {
	c := newCLI(t, screen(button("Login", 100)))

	file := filepath.Join(t.TempDir(), "shot.png")
	if _, err := c.run(t, "screenshot", "-o", file); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 540 || cfg.Height != 1200 {
		t.Errorf("scaled size = %dx%d", cfg.Width, cfg.Height)
	}

	out, err := c.run(t, "screenshot", "--annotate", "--labels", "index")
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("stdout is not base64: %v", err)
	}
	if _, err := png.DecodeConfig(bytes.NewReader(raw)); err != nil {
		t.Errorf("decoded stdout is not a png: %v", err)
	}

	if _, err := c.run(t, "screenshot", "--labels", "names"); err == nil {
		t.Error("expected an error for unknown labels")
	}
}

func TestStorage(t *testing.T) {
	c := newCLI(t)

	var val StorageValue
	if err := c.runJSON(t, &val, "storage", "get", "app", "token"); err != nil {
		t.Fatal(err)
	}
	if val.Found {
		t.Errorf("unexpected value: %+v", val)
	}

	if _, err := c.run(t, "storage", "put", "app", "token", "abc"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.run(t, "storage", "put", "app", "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	val = StorageValue{}
	if err := c.runJSON(t, &val, "storage", "get", "app", "token"); err != nil {
		t.Fatal(err)
	}
	if !val.Found || val.Value != "abc" {
		t.Errorf("unexpected value: %+v", val)
	}

	var entries []storage.Entry
	if err := c.runJSON(t, &entries, "storage", "list", "app"); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Key != "theme" || entries[1].Key != "token" {
		t.Errorf("entries = %+v", entries)
	}

	entries = nil
	if err := c.runJSON(t, &entries, "storage", "list", "other"); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("namespaces should be isolated, got %+v", entries)
	}
}

func TestRun_StorageScript(t *testing.T) {
	c := newCLI(t, screen())

	var recs []script.Record
	if err := c.runJSON(t, &recs, "run", "storage"); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Script != "storage" || recs[0].Failed() || recs[0].ID == "" {
		t.Fatalf("unexpected records: %+v", recs)
	}

	var val StorageValue
	if err := c.runJSON(t, &val, "storage", "get", "storage", "lastRunTime"); err != nil {
		t.Fatal(err)
	}
	if val.Value != "1700000000000" {
		t.Errorf("lastRunTime = %q", val.Value)
	}
	if got := strings.Join(c.dev.Launched, ","); got != "com.example.app" {
		t.Errorf("launched = %s", got)
	}
}

func TestRun_Ephemeral(t *testing.T) {
	c := newCLI(t, screen())

	var recs []script.Record
	if err := c.runJSON(t, &recs, "run", "storage", "--ephemeral"); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Failed() {
		t.Fatalf("unexpected records: %+v", recs)
	}

	var val StorageValue
	if err := c.runJSON(t, &val, "storage", "get", "storage", "lastRunTime"); err != nil {
		t.Fatal(err)
	}
	if val.Found {
		t.Errorf("an ephemeral run must not persist, got %+v", val)
	}
}

func TestRun_Failures(t *testing.T) {
	c := newCLI(t, screen())
	c.dev.LaunchOK = false

	var recs []script.Record
	err := c.runJSON(t, &recs, "run", "error-handling")
	if err == nil || !strings.Contains(err.Error(), "1 of 1 runs failed") {
		t.Errorf("expected run failure, got %v", err)
	}
	if len(recs) != 1 || recs[0].Note != "Failed to launch app" {
		t.Errorf("unexpected records: %+v", recs)
	}

	_, err = c.run(t, "run", "no-such-script")
	if err == nil || !strings.Contains(err.Error(), "like-posts") {
		t.Errorf("expected unknown script error listing scripts, got %v", err)
	}

	_, err = c.run(t, "run", "form-fill", "--param", "novalue")
	if err == nil {
		t.Error("expected an error for a malformed --param")
	}
}

func TestRun_MultipleDevices(t *testing.T) {
	c := newCLI(t, screen())

	var recs []script.Record
	if err := c.runJSON(t, &recs, "run", "storage", "--devices", "b,a"); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Device != "a" || recs[1].Device != "b" {
		t.Fatalf("records should be sorted by device: %+v", recs)
	}
	if recs[0].ID == recs[1].ID {
		t.Error("each run needs its own id")
	}
	if len(c.opts) != 2 {
		t.Errorf("expected one session per device, got %d", len(c.opts))
	}
}

func TestRun_UnreachableDeviceDoesNotStopOthers(t *testing.T) {
	c := newCLI(t, screen())
	healthy := newProvider
	newProvider = func(opts platform.Options) (*platform.Provider, error) {
		if opts.Serial == "bad" {
			return nil, errors.New("device bad not found")
		}
		return healthy(opts)
	}

	var recs []script.Record
	err := c.runJSON(t, &recs, "run", "storage", "--devices", "good,bad")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 runs failed") {
		t.Errorf("expected one failed run, got %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("every device needs a record: %+v", recs)
	}
	bad, good := recs[0], recs[1]
	if bad.Device != "bad" || !bad.Failed() || !strings.Contains(bad.Note, "connect: device bad not found") || bad.ID == "" {
		t.Errorf("unreachable device record = %+v", bad)
	}
	if good.Device != "good" || good.Failed() {
		t.Errorf("healthy device record = %+v", good)
	}

	var val StorageValue
	if err := c.runJSON(t, &val, "storage", "get", "storage", "lastRunTime"); err != nil {
		t.Fatal(err)
	}
	if val.Value != "1700000000000" {
		t.Errorf("healthy run should finish, lastRunTime = %q", val.Value)
	}
}

func TestScripts(t *testing.T) {
	c := newCLI(t)

	var infos []server.ScriptInfo
	if err := c.runJSON(t, &infos, "scripts"); err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, info := range infos {
		names[info.Name] = true
	}
	for _, want := range []string{
		"like-posts", "form-fill", "scroll-find", "storage",
		"error-handling", "ai-automation", "dynamic-selectors", "retry-loop",
	} {
		if !names[want] {
			t.Errorf("script %q not listed", want)
		}
	}
	if len(infos) != 8 {
		t.Errorf("expected 8 scripts, got %d", len(infos))
	}
}

func TestDevices(t *testing.T) {
	c := newCLI(t)
	orig := listDevices
	t.Cleanup(func() { listDevices = orig })
	listDevices = func(ctx context.Context, opts platform.Options) ([]platform.DeviceInfo, error) {
		return []platform.DeviceInfo{
			{Serial: "emulator-5554", State: "device", Model: "sdk_gphone64"},
			{Serial: "R58M", State: "unauthorized"},
		}, nil
	}

	var all []platform.DeviceInfo
	if err := c.runJSON(t, &all, "devices"); err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("devices = %+v", all)
	}

	var ready []platform.DeviceInfo
	if err := c.runJSON(t, &ready, "devices", "--ready"); err != nil {
		t.Fatal(err)
	}
	if len(ready) != 1 || ready[0].Serial != "emulator-5554" {
		t.Errorf("ready devices = %+v", ready)
	}

	listDevices = func(ctx context.Context, opts platform.Options) ([]platform.DeviceInfo, error) {
		return nil, errors.New("adb not found")
	}
	if _, err := c.run(t, "devices"); err == nil {
		t.Error("expected the backend error")
	}
}

func TestPlan(t *testing.T) {
	var (
		mu    sync.Mutex
		tasks []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		mu.Lock()
		tasks = append(tasks, buf.String())
		mu.Unlock()
		_, _ = w.Write([]byte("Here you go:\n[{\"action\":\"ui.tap\",\"selector\":{\"text\":\"Login\"}}]"))
	}))
	defer srv.Close()

	c := newCLI(t, screen(button("Login", 100)))
	t.Setenv("DROIDWRIGHT_PLANNER_PROVIDER", "http")
	t.Setenv("DROIDWRIGHT_PLANNER_URL", srv.URL)

	var res server.PlanResult
	if err := c.runJSON(t, &res, "plan", "log", "in", "--dry-run"); err != nil {
		t.Fatal(err)
	}
	if res.Task != "log in" || len(res.Actions) != 1 || res.Actions[0]["action"] != "ui.tap" || res.Report != nil {
		t.Errorf("unexpected dry run: %+v", res)
	}
	if n := len(c.dev.Recorded()); n != 0 {
		t.Errorf("dry run should not touch the device, got %d gestures", n)
	}

	res = server.PlanResult{}
	if err := c.runJSON(t, &res, "plan", "log in"); err != nil {
		t.Fatal(err)
	}
	if res.Report == nil || !res.Report.OK || res.Report.Completed != 1 {
		t.Errorf("unexpected report: %+v", res.Report)
	}
	if n := c.dev.Count("tap"); n != 1 {
		t.Errorf("expected one tap, got %d", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(tasks) != 2 || !strings.Contains(tasks[0], `"task":"log in"`) {
		t.Errorf("plan requests = %v", tasks)
	}
}

func TestPlan_NoPlanner(t *testing.T) {
	c := newCLI(t, screen())
	_, err := c.run(t, "plan", "do something")
	if !errors.Is(err, script.ErrNoPlanner) {
		t.Errorf("expected ErrNoPlanner, got %v", err)
	}
}

func TestAssert(t *testing.T) {
	sw := model.Element{Class: "android.widget.Switch", ResourceID: "com.android.settings:id/dark_mode", Checkable: true, Enabled: true, Bounds: model.Rect{0, 800, 1080, 900}}
	c := newCLI(t, screen(button("Login", 100), sw))

	var res AssertResult
	if err := c.runJSON(t, &res, "assert", "--text", "Login", "--enabled"); err != nil {
		t.Fatal(err)
	}
	if !res.Pass || res.Element == nil || res.Element.Text != "Login" {
		t.Errorf("unexpected result: %+v", res)
	}

	res = AssertResult{}
	if err := c.runJSON(t, &res, "assert", "--text", "Login", "--gone"); err == nil {
		t.Error("--gone should fail while the element is on screen")
	}
	if res.Pass || !strings.Contains(res.Error, "expected no element") {
		t.Errorf("unexpected result: %+v", res)
	}

	res = AssertResult{}
	if err := c.runJSON(t, &res, "assert", "--text", "Logout", "--gone"); err != nil {
		t.Errorf("--gone should pass for a missing element: %v", err)
	}

	res = AssertResult{}
	err := c.runJSON(t, &res, "assert", "--id", "dark_mode", "--checked")
	if err == nil || !strings.Contains(err.Error(), "assert failed") {
		t.Errorf("expected assert failure, got %v", err)
	}
	if !strings.Contains(res.Error, "not in the expected state") || res.Element == nil {
		t.Errorf("failure should explain the state mismatch: %+v", res)
	}

	if err := c.runJSON(t, &res, "assert", "--id", "dark_mode", "--unchecked"); err != nil {
		t.Errorf("unchecked switch: %v", err)
	}

	_, err = c.run(t, "assert", "--id", "dark_mode", "--checked", "--unchecked")
	if err == nil || !strings.Contains(err.Error(), "contradicts") {
		t.Errorf("expected contradiction error, got %v", err)
	}
}

func TestAssert_PollsUntilTimeout(t *testing.T) {
	c := newCLI(t, screen(), screen(), screen(button("Done", 100)))
	c.dev.AdvanceOnSnapshot = true

	var res AssertResult
	if err := c.runJSON(t, &res, "assert", "--text", "Done", "--timeout", "5s"); err != nil {
		t.Fatal(err)
	}
	if !res.Pass {
		t.Errorf("unexpected result: %+v", res)
	}
	if n := c.dev.SnapshotCount(); n != 3 {
		t.Errorf("expected 3 polls, got %d", n)
	}
}

func TestWatch(t *testing.T) {
	c := newCLI(t, screen(button("Login", 100)), screen(button("Home", 100)))
	c.dev.AdvanceOnSnapshot = true

	out, err := c.run(t, "watch", "--interval", "1ms", "--polls", "2")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected snapshot, changed and done events, got:\n%s", out)
	}
	for i, typ := range []string{`"type":"snapshot"`, `"type":"changed"`, `"type":"done"`} {
		if !strings.Contains(lines[i], typ) {
			t.Errorf("line %d = %s, want %s", i, lines[i], typ)
		}
	}
	if !strings.Contains(lines[1], ":Home") || !strings.Contains(lines[1], ":Login") {
		t.Errorf("change should name added and removed elements: %s", lines[1])
	}
	if !strings.Contains(lines[2], `"events":1`) {
		t.Errorf("done event = %s", lines[2])
	}
}

func TestDiffLabels(t *testing.T) {
	el := func(role, text string) model.FlatElement { return model.FlatElement{Role: role, Text: text} }
	prev := []model.FlatElement{el("button", "OK"), el("button", "OK"), el("text", "Title"), {Role: "group"}}
	curr := []model.FlatElement{el("button", "OK"), el("text", "Title"), el("text", "Done"), {Role: "image", ResourceID: "logo"}}

	added, removed := diffLabels(prev, curr)
	if strings.Join(added, ",") != "text:Done,image#logo" {
		t.Errorf("added = %v", added)
	}
	if strings.Join(removed, ",") != "button:OK" {
		t.Errorf("removed = %v", removed)
	}

	added, removed = diffLabels(curr, curr)
	if added != nil || removed != nil {
		t.Errorf("identical lists should not differ: %v %v", added, removed)
	}
}

func TestServe_UnknownTransport(t *testing.T) {
	c := newCLI(t, screen())
	_, err := c.run(t, "serve", "--transport", "carrier-pigeon")
	if err == nil || !strings.Contains(err.Error(), "unsupported transport") {
		t.Errorf("expected transport error, got %v", err)
	}
}
