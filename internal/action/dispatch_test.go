package action

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/platform"
	"github.com/tas33n/DroidWright/internal/platform/fake"
	"github.com/tas33n/DroidWright/internal/wait"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.slept = append(s.slept, d)
	return nil
}

func feed() []model.Element {
	return []model.Element{{
		Class:  "android.widget.FrameLayout",
		Bounds: model.Rect{0, 0, 1080, 2400},
		Children: []model.Element{
			{
				Class:       "android.widget.ImageView",
				ResourceID:  "com.instagram.android:id/row_feed_button_like",
				Description: "Like",
				Clickable:   true,
				Bounds:      model.Rect{10, 900, 110, 1000},
			},
			{Class: "android.widget.EditText", ResourceID: "com.example:id/name_input", Bounds: model.Rect{100, 300, 900, 400}},
			{Class: "androidx.recyclerview.widget.RecyclerView", ResourceID: "com.example:id/list_container", Bounds: model.Rect{0, 1000, 1080, 2000}},
		},
	}}
}

type harness struct {
	dev   *fake.Device
	sleep *sleepRecorder
	logs  *bytes.Buffer
	d     *Dispatcher
}

func newHarness(frames ...[]model.Element) *harness {
	if len(frames) == 0 {
		frames = [][]model.Element{feed()}
	}
	h := &harness{dev: fake.New(frames...), sleep: &sleepRecorder{}, logs: &bytes.Buffer{}}
	log := zerolog.New(h.logs)
	engine := wait.New(h.dev, h.dev, h.dev, wait.DefaultConfig(), log, wait.WithClock(time.Now, h.sleep.sleep))
	h.d = NewDispatcher(h.dev.Provider(), engine, DefaultConfig(), log, WithSleep(h.sleep.sleep))
	return h
}

func TestRun_ExternalSequenceSkipsUnknown(t *testing.T) {
	h := newHarness()
	actions, err := ParseSequence([]byte(`[
		{"action":"ui.tap","selector":{"desc":"Like"}},
		{"action":"device.sleep","ms":500},
		{"action":"unknown.op"},
		{"action":"ui.swipe","x1":1,"y1":2,"x2":3,"y2":4,"duration":300}
	]`))
	require.NoError(t, err)

	rep := h.d.Run(context.Background(), actions, Policy{})
	assert.True(t, rep.OK)
	assert.Equal(t, 4, rep.Steps)
	assert.Equal(t, 3, rep.Completed)
	assert.Equal(t, 1, rep.Skipped)
	require.Len(t, rep.Results, 4)

	var statuses, kinds []string
	for _, r := range rep.Results {
		statuses = append(statuses, r.Status)
		kinds = append(kinds, r.Action)
	}
	assert.Equal(t, []string{StatusOK, StatusOK, StatusSkipped, StatusOK}, statuses)
	assert.Equal(t, []string{"ui.tap", "device.sleep", "unknown.op", "ui.swipe"}, kinds)

	gestures := h.dev.Recorded()
	require.Len(t, gestures, 2)
	assert.Equal(t, fake.Gesture{Kind: "tap", From: model.Point{X: 60, Y: 950}, To: model.Point{X: 60, Y: 950}}, gestures[0])
	assert.Equal(t, fake.Gesture{Kind: "swipe", From: model.Point{X: 1, Y: 2}, To: model.Point{X: 3, Y: 4}, Duration: 300 * time.Millisecond}, gestures[1])

	// Tap settle, explicit sleep, swipe settle.
	assert.Equal(t, []time.Duration{time.Second, 500 * time.Millisecond, 2 * time.Second}, h.sleep.slept)
	assert.Contains(t, h.logs.String(), "skipping unrecognized action")
	assert.Contains(t, h.logs.String(), "unknown.op")
}

func TestRun_ContinuesPastFailureByDefault(t *testing.T) {
	h := newHarness()
	actions := []Action{
		Tap{Target: Target{Selector: sel(map[string]string{"text": "Missing"})}},
		Log{Message: "after"},
	}

	rep := h.d.Run(context.Background(), actions, Policy{})
	assert.False(t, rep.OK)
	require.Len(t, rep.Results, 2)
	assert.Equal(t, StatusError, rep.Results[0].Status)
	assert.Contains(t, rep.Results[0].Error, "step 1 (ui.tap)")
	assert.Contains(t, rep.Results[0].Error, "element not found")
	assert.Equal(t, StatusOK, rep.Results[1].Status)
	assert.Equal(t, 1, rep.Completed)
	assert.Empty(t, rep.Error)
}

func TestRun_StopOnError(t *testing.T) {
	h := newHarness()
	actions := []Action{
		Log{Message: "before"},
		Swipe{From: model.Point{X: -5, Y: 0}, To: model.Point{X: 10, Y: 10}},
		Log{Message: "after"},
	}

	rep := h.d.Run(context.Background(), actions, Policy{StopOnError: true})
	assert.False(t, rep.OK)
	require.Len(t, rep.Results, 2)
	assert.Equal(t, 1, rep.Completed)
	assert.Contains(t, rep.Error, "step 2 (ui.swipe)")
	assert.Empty(t, h.dev.Recorded())
	assert.NotContains(t, h.logs.String(), `"message":"after"`)
}

func TestRun_CancelledContextStops(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := h.d.Run(ctx, []Action{Log{Message: "never"}}, Policy{})
	assert.False(t, rep.OK)
	assert.Empty(t, rep.Results)
	assert.Equal(t, context.Canceled.Error(), rep.Error)
}

func TestExecute_UnknownMakesNoDeviceCall(t *testing.T) {
	h := newHarness()
	out, err := h.d.Execute(context.Background(), Unknown{Name: "unknown.op"})
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Empty(t, h.dev.Recorded())
	assert.Zero(t, h.dev.SnapshotCount())
	assert.Contains(t, h.logs.String(), `"level":"warn"`)
}

func TestExecute_InvalidParams(t *testing.T) {
	h := newHarness()
	for name, a := range map[string]Action{
		"decoded invalid":  Invalid{Name: KindSwipe, Reason: "x1: expected a number, got string"},
		"tap no target":    Tap{},
		"tap off screen":   Tap{Target: Target{Point: &model.Point{X: 2000, Y: 10}}},
		"negative swipe":   Swipe{From: model.Point{X: 1, Y: 1}, To: model.Point{X: 2, Y: 2}, Duration: -time.Second},
		"swipe off screen": Swipe{From: model.Point{X: 1, Y: 1}, To: model.Point{X: 2, Y: 2400}},
		"negative sleep":   Sleep{Duration: -time.Millisecond},
		"negative longtap": LongTap{Target: Target{Point: &model.Point{X: 1, Y: 1}}, Duration: -1},
		"settext no sel":   SetText{Text: "x"},
		"wait no sel":      WaitFor{Timeout: time.Second},
		"wait negative":    WaitFor{Selector: sel(map[string]string{"text": "x"}), MaxScrolls: -1},
		"bad key":          PressKey{},
		"bad direction":    Scroll{Direction: "sideways"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.d.Execute(context.Background(), a)
			require.ErrorIs(t, err, ErrInvalidParams)
			var se *StepError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, a.Kind(), se.Kind)
		})
	}
	assert.Empty(t, h.dev.Recorded())
}

func TestExecute_ResolvesAgainstFreshSnapshot(t *testing.T) {
	moved := feed()
	moved[0].Children[0].Bounds = model.Rect{10, 100, 110, 200}
	h := newHarness(feed(), moved)
	tap := Tap{Target: Target{Selector: sel(map[string]string{"id": "row_feed_button_like"})}}

	out, err := h.d.Execute(context.Background(), tap)
	require.NoError(t, err)
	assert.Equal(t, &model.Point{X: 60, Y: 950}, out.Point)

	// The tap advanced the UI; the second tap must land on the new position.
	out, err = h.d.Execute(context.Background(), tap)
	require.NoError(t, err)
	assert.Equal(t, &model.Point{X: 60, Y: 150}, out.Point)
	assert.Equal(t, 2, h.dev.SnapshotCount())
}

func TestExecute_SetTextFocusesThenTypes(t *testing.T) {
	h := newHarness()
	_, err := h.d.Execute(context.Background(), SetText{Selector: sel(map[string]string{"id": "name_input"}), Text: "John Doe"})
	require.NoError(t, err)

	g := h.dev.Recorded()
	require.Len(t, g, 2)
	assert.Equal(t, "tap", g[0].Kind)
	assert.Equal(t, model.Point{X: 500, Y: 350}, g[0].From)
	assert.Equal(t, fake.Gesture{Kind: "text", Text: "John Doe"}, g[1])
}

func TestExecute_NotFound(t *testing.T) {
	h := newHarness()
	_, err := h.d.Execute(context.Background(), LongTap{Target: Target{Selector: sel(map[string]string{"text": "Nope"})}})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, h.dev.Recorded())
}

func TestExecute_LongTapDefaultDuration(t *testing.T) {
	h := newHarness()
	_, err := h.d.Execute(context.Background(), LongTap{Target: Target{Point: &model.Point{X: 5, Y: 5}}})
	require.NoError(t, err)
	g := h.dev.Recorded()
	require.Len(t, g, 1)
	assert.Equal(t, 800*time.Millisecond, g[0].Duration)
}

func TestExecute_ScrollDirections(t *testing.T) {
	h := newHarness()
	container := sel(map[string]string{"id": "list_container"})

	_, err := h.d.Execute(context.Background(), Scroll{Container: container})
	require.NoError(t, err)
	_, err = h.d.Execute(context.Background(), Scroll{Container: container, Direction: DirectionUp})
	require.NoError(t, err)
	_, err = h.d.Execute(context.Background(), Scroll{})
	require.NoError(t, err)

	g := h.dev.Recorded()
	require.Len(t, g, 3)
	assert.Equal(t, model.Point{X: 540, Y: 1800}, g[0].From)
	assert.Equal(t, model.Point{X: 540, Y: 1200}, g[0].To)
	assert.Equal(t, g[0].From, g[1].To)
	assert.Equal(t, g[0].To, g[1].From)
	assert.Equal(t, model.Point{X: 540, Y: 1920}, g[2].From)
}

func TestExecute_WaitForReportsFound(t *testing.T) {
	h := newHarness()
	out, err := h.d.Execute(context.Background(), WaitFor{Selector: sel(map[string]string{"desc": "Like"}), Timeout: time.Second})
	require.NoError(t, err)
	require.NotNil(t, out.Found)
	assert.True(t, *out.Found)

	out, err = h.d.Execute(context.Background(), WaitFor{Selector: sel(map[string]string{"desc": "Share"})})
	require.NoError(t, err, "not found is not an error")
	require.NotNil(t, out.Found)
	assert.False(t, *out.Found)
}

func TestExecute_PressKeyAndLog(t *testing.T) {
	h := newHarness()
	_, err := h.d.Execute(context.Background(), PressKey{Key: platform.KeyBack})
	require.NoError(t, err)
	_, err = h.d.Execute(context.Background(), Log{Message: "checkpoint"})
	require.NoError(t, err)

	assert.Equal(t, []fake.Gesture{{Kind: "key", Key: platform.KeyBack}}, h.dev.Recorded())
	assert.Contains(t, h.logs.String(), "checkpoint")
}

func TestExecute_DeviceErrorIsStepError(t *testing.T) {
	h := newHarness()
	h.dev.GestureErr = errors.New("adb: device offline")
	_, err := h.d.Execute(context.Background(), Tap{Target: Target{Point: &model.Point{X: 1, Y: 1}}})
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindTap, se.Kind)
	assert.Contains(t, err.Error(), "device offline")
}
