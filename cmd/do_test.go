package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tas33n/DroidWright/internal/action"
	"github.com/tas33n/DroidWright/internal/model"
)

func loginScreen() []model.Element {
	user := model.Element{Class: "android.widget.EditText", ResourceID: "com.example.app:id/username", Bounds: model.Rect{0, 300, 1080, 400}}
	return screen(user, button("Login", 600))
}

func TestDo_RunsStepsInOrder(t *testing.T) {
	c := newCLI(t, loginScreen())
	c.stdin = `
- action: ui.waitFor
  selector: { text: Login }
  timeout: 1000
- action: ui.setText
  selector: { id: username }
  text: jane
- action: ui.tap
  selector: { text: Login, clickable: true }
- action: device.press
  key: back
`
	var rep action.Report
	if err := c.runJSON(t, &rep, "do"); err != nil {
		t.Fatal(err)
	}
	if !rep.OK || rep.Steps != 4 || rep.Completed != 4 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if got := rep.Results[0].Found; got == nil || !*got {
		t.Errorf("waitFor should report found: %+v", rep.Results[0])
	}

	var kinds []string
	for _, g := range c.dev.Recorded() {
		kinds = append(kinds, g.Kind)
	}
	if got := strings.Join(kinds, ","); got != "tap,text,tap,key" {
		t.Errorf("gestures = %s", got)
	}
	if g := c.dev.Recorded()[2]; g.From != (model.Point{X: 540, Y: 650}) {
		t.Errorf("login tapped at %s", g.From)
	}
}

func TestDo_SkipsUnknownActions(t *testing.T) {
	c := newCLI(t, loginScreen())
	c.stdin = `[{"action":"ui.hover","x":1},{"action":"log","message":"hi"}]`

	var rep action.Report
	if err := c.runJSON(t, &rep, "do"); err != nil {
		t.Fatal(err)
	}
	if !rep.OK || rep.Skipped != 1 || rep.Completed != 1 {
		t.Errorf("unexpected report: %+v", rep)
	}
	if rep.Results[0].Status != action.StatusSkipped {
		t.Errorf("unknown action status = %s", rep.Results[0].Status)
	}
}

func TestDo_StopOnError(t *testing.T) {
	steps := `
- action: ui.tap
  selector: { text: Missing }
- action: device.press
  key: home
`
	c := newCLI(t, loginScreen())
	c.stdin = steps
	var rep action.Report
	if err := c.runJSON(t, &rep, "do"); err == nil {
		t.Fatal("expected the failed step to fail the command")
	}
	if rep.OK || len(rep.Results) != 1 || rep.Results[0].Status != action.StatusError {
		t.Errorf("stop-on-error should halt after step 1: %+v", rep)
	}
	if n := c.dev.Count("key"); n != 0 {
		t.Errorf("step 2 should not run, got %d key presses", n)
	}

	c = newCLI(t, loginScreen())
	c.stdin = steps
	rep = action.Report{}
	if err := c.runJSON(t, &rep, "do", "--stop-on-error=false"); err == nil {
		t.Fatal("a failed step still fails the command")
	}
	if len(rep.Results) != 2 || rep.Completed != 1 {
		t.Errorf("continue-on-error should run both steps: %+v", rep)
	}
	if n := c.dev.Count("key"); n != 1 {
		t.Errorf("step 2 should run, got %d key presses", n)
	}
}

func TestDo_FromFile(t *testing.T) {
	c := newCLI(t, loginScreen())
	file := filepath.Join(t.TempDir(), "steps.json")
	if err := os.WriteFile(file, []byte(`[{"action":"ui.tap","x":10,"y":20}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.run(t, "do", file); err != nil {
		t.Fatal(err)
	}
	if g := c.dev.Recorded(); len(g) != 1 || g[0].From != (model.Point{X: 10, Y: 20}) {
		t.Errorf("gestures = %+v", g)
	}
}

func TestDo_BadInput(t *testing.T) {
	for name, in := range map[string]string{
		"empty":      "",
		"not a list": "action: ui.tap",
		"no tag":     `[{"x":1}]`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newCLI(t, loginScreen())
			c.stdin = in
			_, err := c.run(t, "do")
			if err == nil || !strings.Contains(err.Error(), "failed to parse actions") {
				t.Errorf("expected parse error, got %v", err)
			}
			if len(c.opts) != 0 {
				t.Error("no device session should be opened for bad input")
			}
		})
	}
}
