// Package fake provides an in-memory device for exercising the engine
// without hardware. It serves a scripted sequence of UI frames and records
// every gesture it receives.
package fake

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"
	"time"

	"github.com/tas33n/DroidWright/internal/model"
	"github.com/tas33n/DroidWright/internal/platform"
)

// Gesture is one recorded input event.
type Gesture struct {
	Kind     string // "tap", "longtap", "swipe", "text", "key"
	From     model.Point
	To       model.Point
	Duration time.Duration
	Text     string
	Key      platform.Key
}

// Device is a scripted fake implementing every platform capability.
//
// Frames are served in order: the current frame advances after each
// gesture (taps, swipes and text input mutate the UI) and, when
// AdvanceOnSnapshot is set, after each snapshot as well. Once the last
// frame is reached it keeps being served.
type Device struct {
	mu sync.Mutex

	Frames            [][]model.Element
	AdvanceOnSnapshot bool
	Size              model.Size

	Package   string
	LaunchOK  bool
	Launched  []string
	Gestures  []Gesture
	Snapshots int

	SnapshotErr error
	GestureErr  error

	frame int
}

// New returns a 1080x2400 device serving frames.
func New(frames ...[]model.Element) *Device {
	return &Device{
		Frames:   frames,
		Size:     model.Size{Width: 1080, Height: 2400},
		LaunchOK: true,
	}
}

// Provider wraps the device in a platform.Provider.
func (d *Device) Provider() *platform.Provider {
	return &platform.Provider{Snapshotter: d, Gesturer: d, Device: d, Apps: d}
}

// Snapshot implements platform.Snapshotter.
func (d *Device) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Snapshots++
	if d.SnapshotErr != nil {
		return nil, d.SnapshotErr
	}
	var roots []model.Element
	if len(d.Frames) > 0 {
		roots = d.Frames[d.frame]
	}
	if d.AdvanceOnSnapshot {
		d.advance()
	}
	return model.NewSnapshot(roots, time.Now()), nil
}

// Tap implements platform.Gesturer.
func (d *Device) Tap(ctx context.Context, p model.Point) error {
	return d.record(Gesture{Kind: "tap", From: p, To: p})
}

// LongTap implements platform.Gesturer.
func (d *Device) LongTap(ctx context.Context, p model.Point, dur time.Duration) error {
	return d.record(Gesture{Kind: "longtap", From: p, To: p, Duration: dur})
}

// Swipe implements platform.Gesturer.
func (d *Device) Swipe(ctx context.Context, from, to model.Point, dur time.Duration) error {
	return d.record(Gesture{Kind: "swipe", From: from, To: to, Duration: dur})
}

// InputText implements platform.Gesturer.
func (d *Device) InputText(ctx context.Context, text string) error {
	return d.record(Gesture{Kind: "text", Text: text})
}

// ScreenSize implements platform.Device.
func (d *Device) ScreenSize(ctx context.Context) (model.Size, error) {
	return d.Size, nil
}

// PressKey implements platform.Device.
func (d *Device) PressKey(ctx context.Context, key platform.Key) error {
	return d.record(Gesture{Kind: "key", Key: key})
}

// Screenshot implements platform.Device with a solid image of the
// device's screen size.
func (d *Device) Screenshot(ctx context.Context) ([]byte, error) {
	return solidPNG(d.Size.Width, d.Size.Height), nil
}

// Launch implements platform.AppManager.
func (d *Device) Launch(ctx context.Context, pkg string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Launched = append(d.Launched, pkg)
	if d.LaunchOK {
		d.Package = pkg
	}
	return d.LaunchOK, nil
}

// CurrentPackage implements platform.AppManager.
func (d *Device) CurrentPackage(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Package, nil
}

// Recorded returns a copy of the gestures received so far.
func (d *Device) Recorded() []Gesture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Gesture(nil), d.Gestures...)
}

// Count returns how many gestures of the given kind were received.
func (d *Device) Count(kind string) int {
	n := 0
	for _, g := range d.Recorded() {
		if g.Kind == kind {
			n++
		}
	}
	return n
}

// SnapshotCount returns how many snapshots were taken.
func (d *Device) SnapshotCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Snapshots
}

func (d *Device) record(g Gesture) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.GestureErr != nil {
		return d.GestureErr
	}
	d.Gestures = append(d.Gestures, g)
	d.advance()
	return nil
}

func (d *Device) advance() {
	if d.frame < len(d.Frames)-1 {
		d.frame++
	}
}

func solidPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
